// internal/catalog/refresh.go
package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"coursemarket/internal/logger"
)

// Refreshing wraps a Service whose provider lives elsewhere and reloads it
// when the cached index is older than ttl. A ttl of zero reloads on every
// Index call. A failed reload keeps serving the previous index.
type Refreshing struct {
	Service
	ttl time.Duration
	log *logger.Logger
	now func() time.Time

	mu       sync.Mutex
	loadedAt time.Time
}

func NewRefreshing(svc Service, ttl time.Duration, log *logger.Logger) *Refreshing {
	r := &Refreshing{
		Service: svc,
		ttl:     ttl,
		log:     log.With("component", "catalog_refresh"),
		now:     time.Now,
	}
	r.loadedAt = r.now()
	return r
}

// Index returns the current index, reloading first when it has gone stale.
func (r *Refreshing) Index(ctx context.Context) (*Index, error) {
	r.mu.Lock()
	stale := r.now().Sub(r.loadedAt) >= r.ttl
	if stale {
		if err := r.Service.Reload(ctx); err != nil {
			r.log.Warn("catalog refresh failed, serving cached index", "error", err)
		}
		// failed attempts also wait a full ttl before retrying
		r.loadedAt = r.now()
	}
	r.mu.Unlock()
	return r.Service.Index(ctx)
}

func (r *Refreshing) Browse(ctx context.Context, q Query, balance decimal.Decimal) ([]Entry, error) {
	if _, err := r.Index(ctx); err != nil {
		return nil, err
	}
	return r.Service.Browse(ctx, q, balance)
}

func (r *Refreshing) GetItem(ctx context.Context, id string) (Item, error) {
	idx, err := r.Index(ctx)
	if err != nil {
		return nil, err
	}
	return idx.Item(id)
}

// Reload forces a reload and restarts the ttl.
func (r *Refreshing) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Service.Reload(ctx); err != nil {
		return err
	}
	r.loadedAt = r.now()
	return nil
}
