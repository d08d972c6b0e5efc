// internal/account/implementation.go
package account

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"coursemarket/internal/logger"
)

// service implements the Service interface.
type service struct {
	repo   Repository
	log    *logger.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewService creates a new account service instance.
func NewService(repo Repository, log *logger.Logger) Service {
	return &service{
		repo:   repo,
		log:    log.With("service", "account"),
		tracer: otel.Tracer("coursemarket/account"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Open creates an account with an initial balance and no ownership.
func (s *service) Open(ctx context.Context, balance decimal.Decimal) (*Account, error) {
	ctx, span := s.tracer.Start(ctx, "account.open")
	defer span.End()

	if err := CheckBalance(balance); err != nil {
		return nil, err
	}
	now := s.now()
	a := &Account{
		ID:        uuid.New(),
		Wallet:    Wallet{Balance: balance},
		Ownership: NewOwnership(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	span.SetAttributes(attribute.String("account.id", a.ID.String()))
	s.log.Info("account opened", "account_id", a.ID, "balance", balance.String())
	return a, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	ctx, span := s.tracer.Start(ctx, "account.get", trace.WithAttributes(attribute.String("account.id", id.String())))
	defer span.End()
	return s.repo.Get(ctx, id)
}
