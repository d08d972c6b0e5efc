// internal/account/service.go
package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service defines the interface for the account service.
type Service interface {
	Open(ctx context.Context, balance decimal.Decimal) (*Account, error)
	Get(ctx context.Context, id uuid.UUID) (*Account, error)
}
