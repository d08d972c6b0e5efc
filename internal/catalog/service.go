// internal/catalog/service.go
package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// Service defines the interface for the catalog service.
type Service interface {
	Browse(ctx context.Context, q Query, balance decimal.Decimal) ([]Entry, error)
	GetItem(ctx context.Context, id string) (Item, error)
	Index(ctx context.Context) (*Index, error)
	Reload(ctx context.Context) error
}
