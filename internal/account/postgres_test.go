package account

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursemarket/internal/pgtest"
)

func TestPostgresRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresRepository(pgtest.Open(t, Schema))

	now := time.Now().UTC().Truncate(time.Second)
	a := &Account{
		ID:        uuid.New(),
		Wallet:    Wallet{Balance: decimal.NewFromInt(1500)},
		Ownership: NewOwnership(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, a))

	updated, err := repo.Update(ctx, a.ID, func(acc *Account) error {
		acc.Wallet.Balance = acc.Wallet.Balance.Sub(decimal.NewFromInt(1200))
		acc.Ownership.Packs.Add("P1")
		acc.Ownership.Courses.Add("C2")
		acc.Ownership.Courses.Add("C1")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Version)

	got, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Wallet.Balance.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, []string{"C1", "C2"}, got.Ownership.Courses.Sorted())
	assert.Equal(t, []string{"P1"}, got.Ownership.Packs.Sorted())

	_, err = repo.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
