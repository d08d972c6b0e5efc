// internal/purchase/implementation.go
package purchase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"coursemarket/internal/account"
	"coursemarket/internal/catalog"
	"coursemarket/internal/eventstore"
	"coursemarket/internal/logger"
	"coursemarket/internal/upsell"
)

const (
	aggregateType  = "account"
	appendAttempts = 3
)

// service implements the Service interface.
type service struct {
	catalog  upsell.IndexSource
	accounts account.Repository
	events   eventstore.Store
	listener Listener
	limiter  *rate.Limiter

	log       *logger.Logger
	tracer    trace.Tracer
	completed metric.Int64Counter
	rejected  metric.Int64Counter
}

// NewService creates a new purchase service instance. A nil listener or
// limiter disables that concern.
func NewService(source upsell.IndexSource, accounts account.Repository, events eventstore.Store, listener Listener, limiter *rate.Limiter, log *logger.Logger) (Service, error) {
	meter := otel.Meter("coursemarket/purchase")
	completed, err := meter.Int64Counter("purchases.completed", metric.WithDescription("Completed purchases"))
	if err != nil {
		return nil, fmt.Errorf("create completed counter: %w", err)
	}
	rejected, err := meter.Int64Counter("purchases.rejected", metric.WithDescription("Purchases rejected for insufficient funds"))
	if err != nil {
		return nil, fmt.Errorf("create rejected counter: %w", err)
	}
	if listener == nil {
		listener = ListenerFuncs{}
	}
	return &service{
		catalog:   source,
		accounts:  accounts,
		events:    events,
		listener:  listener,
		limiter:   limiter,
		log:       log.With("service", "purchase"),
		tracer:    otel.Tracer("coursemarket/purchase"),
		completed: completed,
		rejected:  rejected,
	}, nil
}

// Purchase buys req.ItemID for the account at its catalog tier price.
func (s *service) Purchase(ctx context.Context, accountID uuid.UUID, req Request) (*Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "purchase.execute",
		trace.WithAttributes(
			attribute.String("account.id", accountID.String()),
			attribute.String("item.type", string(req.Tier)),
			attribute.String("item.id", req.ItemID),
		),
	)
	defer span.End()

	if s.limiter != nil && !s.limiter.Allow() {
		return nil, ErrRateLimited
	}

	// Step 1: Resolve the item and price it
	opt, err := s.resolve(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// Step 2: Apply the transaction under the account lock
	updated, err := s.accounts.Update(ctx, accountID, func(a *account.Account) error {
		res, err := Purchase(opt, a.Wallet, a.Ownership)
		if err != nil {
			return err
		}
		a.Wallet = res.Wallet
		a.Ownership = res.Ownership
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientFunds) {
			s.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("item.type", string(opt.Tier))))
			s.log.Info("purchase rejected", "account_id", accountID, "item_id", opt.ItemID, "error", err)
		}
		span.RecordError(err)
		return nil, err
	}

	// Step 3: Record it
	s.record(ctx, updated, opt)

	// Step 4: Notify
	s.notify(ctx, updated, opt)

	s.completed.Add(ctx, 1, metric.WithAttributes(attribute.String("item.type", string(opt.Tier))))
	s.log.Info("purchase completed", "account_id", accountID, "type", opt.Tier, "item_id", opt.ItemID,
		"price", opt.Price.String(), "balance", updated.Wallet.Balance.String())
	return &Receipt{Account: updated, Option: opt}, nil
}

func (s *service) resolve(ctx context.Context, req Request) (upsell.Option, error) {
	idx, err := s.catalog.Index(ctx)
	if err != nil {
		return upsell.Option{}, fmt.Errorf("failed to load catalog: %w", err)
	}
	item, err := idx.Item(req.ItemID)
	if err != nil {
		return upsell.Option{}, err
	}
	if item.Kind() != req.Tier {
		return upsell.Option{}, fmt.Errorf("%w: %q is a %s, not a %s", ErrTypeMismatch, req.ItemID, item.Kind(), req.Tier)
	}
	if catalog.IsExternal(item) {
		return upsell.Option{}, fmt.Errorf("%s %q: %w", item.Kind(), item.ItemID(), upsell.ErrExternalItem)
	}
	return upsell.OptionFor(item, idx), nil
}

// record appends the purchase to the account's event stream. The purchase is
// already committed, so a failure is only logged.
func (s *service) record(ctx context.Context, a *account.Account, opt upsell.Option) {
	event, err := eventstore.NewEvent(EventPurchaseCompleted, PurchaseCompletedEvent{
		AccountID: a.ID,
		Tier:      opt.Tier,
		ItemID:    opt.ItemID,
		Title:     opt.Title,
		Price:     opt.Price,
		Balance:   a.Wallet.Balance,
		CourseIDs: opt.CourseIDs,
	})
	if err == nil {
		err = eventstore.AppendNext(ctx, s.events, a.ID, aggregateType, appendAttempts, event)
	}
	if err != nil {
		s.log.Error("failed to record purchase event", "account_id", a.ID, "item_id", opt.ItemID, "error", err)
	}
}

func (s *service) notify(ctx context.Context, a *account.Account, opt upsell.Option) {
	errs := []error{s.listener.BalanceChanged(ctx, a.ID, a.Wallet.Balance)}
	switch opt.Tier {
	case catalog.KindLesson:
		errs = append(errs, s.listener.LessonUnlocked(ctx, a.ID, opt.ItemID))
	case catalog.KindCourse:
		errs = append(errs, s.listener.CourseUnlocked(ctx, a.ID, opt.ItemID))
	case catalog.KindPack:
		errs = append(errs, s.listener.PackUnlocked(ctx, a.ID, opt.ItemID, opt.CourseIDs))
	}
	if err := errors.Join(errs...); err != nil {
		s.log.Warn("purchase listener failed", "account_id", a.ID, "item_id", opt.ItemID, "error", err)
	}
}

// History returns the account's purchases, oldest first.
func (s *service) History(ctx context.Context, accountID uuid.UUID) ([]Record, error) {
	ctx, span := s.tracer.Start(ctx, "purchase.history", trace.WithAttributes(attribute.String("account.id", accountID.String())))
	defer span.End()

	if _, err := s.accounts.Get(ctx, accountID); err != nil {
		return nil, err
	}
	events, err := s.events.LoadByType(ctx, accountID, EventPurchaseCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase history: %w", err)
	}

	records := make([]Record, 0, len(events))
	for _, e := range events {
		var data PurchaseCompletedEvent
		if err := json.Unmarshal(e.EventData, &data); err != nil {
			return nil, fmt.Errorf("failed to decode event %d: %w", e.ID, err)
		}
		records = append(records, Record{PurchaseCompletedEvent: data, Sequence: e.Version, PurchasedAt: e.CreatedAt})
	}
	return records, nil
}
