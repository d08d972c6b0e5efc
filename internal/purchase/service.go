// internal/purchase/service.go
package purchase

import (
	"context"

	"github.com/google/uuid"

	"coursemarket/internal/account"
	"coursemarket/internal/upsell"
)

// Receipt is the outcome of a completed purchase.
type Receipt struct {
	Account *account.Account `json:"account"`
	Option  upsell.Option    `json:"option"`
}

// Service defines the interface for the purchase service.
type Service interface {
	Purchase(ctx context.Context, accountID uuid.UUID, req Request) (*Receipt, error)
	History(ctx context.Context, accountID uuid.UUID) ([]Record, error)
}
