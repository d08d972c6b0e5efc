// internal/account/repository.go
package account

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository persists accounts. Update runs fn against the stored account under
// exclusive access and saves the result only when fn returns nil.
type Repository interface {
	Create(ctx context.Context, a *Account) error
	Get(ctx context.Context, id uuid.UUID) (*Account, error)
	Update(ctx context.Context, id uuid.UUID, fn func(*Account) error) (*Account, error)
}

// MemoryRepository keeps accounts in process memory.
type MemoryRepository struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*Account
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{accounts: make(map[uuid.UUID]*Account)}
}

func (r *MemoryRepository) Create(_ context.Context, a *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[a.ID]; ok {
		return fmt.Errorf("account %s already exists", a.ID)
	}
	r.accounts[a.ID] = a.Clone()
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id uuid.UUID) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, ErrAccountNotFound)
	}
	return a.Clone(), nil
}

func (r *MemoryRepository) Update(_ context.Context, id uuid.UUID, fn func(*Account) error) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, ErrAccountNotFound)
	}
	working := stored.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.Version = stored.Version + 1
	working.UpdatedAt = time.Now().UTC()
	r.accounts[id] = working
	return working.Clone(), nil
}
