package purchase

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"coursemarket/internal/account"
	"coursemarket/internal/catalog"
	"coursemarket/internal/upsell"
)

func TestPurchaseScenario(t *testing.T) {
	wallet := account.Wallet{Balance: decimal.NewFromInt(800)}
	owned := account.NewOwnership()

	pack := upsell.Option{Tier: catalog.KindPack, ItemID: "P1", Price: catalog.PackPrice, CourseIDs: []string{"C1"}}
	_, err := Purchase(pack, wallet, owned)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	var funds *InsufficientFundsError
	require.True(t, errors.As(err, &funds))
	assert.Equal(t, "400", funds.Shortfall.String())
	assert.Equal(t, "800", wallet.Balance.String())
	assert.Empty(t, owned.Courses)
	assert.Empty(t, owned.Packs)

	course := upsell.Option{Tier: catalog.KindCourse, ItemID: "C1", Price: catalog.CoursePrice}
	res, err := Purchase(course, wallet, owned)
	require.NoError(t, err)
	assert.Equal(t, "100", res.Wallet.Balance.String())
	assert.Equal(t, []string{"C1"}, res.Ownership.Courses.Sorted())
	assert.Empty(t, res.Ownership.Packs)
	assert.Empty(t, owned.Courses, "input ownership must be left alone")
}

func TestPurchaseLessonRecordsNoOwnership(t *testing.T) {
	res, err := Purchase(
		upsell.Option{Tier: catalog.KindLesson, ItemID: "L1", Price: catalog.LessonPrice},
		account.Wallet{Balance: decimal.NewFromInt(70)},
		account.NewOwnership(),
	)
	require.NoError(t, err)
	assert.True(t, res.Wallet.Balance.IsZero())
	assert.Empty(t, res.Ownership.Courses)
	assert.Empty(t, res.Ownership.Packs)
}

func genOwnership(t *rapid.T, pool []string) account.Ownership {
	o := account.NewOwnership()
	for _, id := range rapid.SliceOfDistinct(rapid.SampledFrom(pool), rapid.ID[string]).Draw(t, "owned_courses") {
		o.Courses.Add(id)
	}
	return o
}

func TestPurchaseProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pool := []string{"c0", "c1", "c2", "c3", "c4"}
		tier := rapid.SampledFrom([]catalog.Kind{catalog.KindLesson, catalog.KindCourse, catalog.KindPack}).Draw(t, "tier")
		opt := upsell.Option{Tier: tier, ItemID: fmt.Sprintf("%s-x", tier), Price: tier.Price()}
		if tier == catalog.KindPack {
			opt.CourseIDs = rapid.SliceOfNDistinct(rapid.SampledFrom(pool), 1, 3, rapid.ID[string]).Draw(t, "contained")
		}
		balance := decimal.New(rapid.Int64Range(0, 200_000).Draw(t, "balance_cents"), -2)
		wallet := account.Wallet{Balance: balance}
		owned := genOwnership(t, pool)
		before := owned.Clone()

		res, err := Purchase(opt, wallet, owned)

		if !wallet.Balance.Equal(balance) || fmt.Sprint(owned.Courses.Sorted()) != fmt.Sprint(before.Courses.Sorted()) {
			t.Fatal("inputs were mutated")
		}
		if balance.LessThan(opt.Price) {
			if !errors.Is(err, ErrInsufficientFunds) {
				t.Fatalf("balance %s < price %s but err = %v", balance, opt.Price, err)
			}
			return
		}
		if err != nil {
			t.Fatalf("affordable purchase failed: %v", err)
		}
		if !res.Wallet.Balance.Equal(balance.Sub(opt.Price)) {
			t.Fatalf("new balance %s, want %s", res.Wallet.Balance, balance.Sub(opt.Price))
		}
		for _, id := range before.Courses.Sorted() {
			if !res.Ownership.Courses.Has(id) {
				t.Fatalf("lost ownership of %s", id)
			}
		}
		if tier == catalog.KindPack {
			if !res.Ownership.Packs.Has(opt.ItemID) {
				t.Fatal("pack not owned after purchase")
			}
			for _, id := range opt.CourseIDs {
				if !res.Ownership.Courses.Has(id) {
					t.Fatalf("pack course %s not granted", id)
				}
			}
		}
	})
}
