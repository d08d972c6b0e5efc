// internal/purchase/transaction.go
package purchase

import (
	"coursemarket/internal/account"
	"coursemarket/internal/catalog"
	"coursemarket/internal/upsell"
)

// Purchase applies opt to the wallet and ownership. The inputs are never
// modified; on error nothing changes. Buying a pack also grants every course
// it contains. Lessons are paid for but not recorded as owned.
func Purchase(opt upsell.Option, w account.Wallet, o account.Ownership) (Result, error) {
	if !account.CanAfford(opt.Price, w.Balance) {
		return Result{}, &InsufficientFundsError{
			Price:     opt.Price,
			Balance:   w.Balance,
			Shortfall: account.Shortfall(opt.Price, w.Balance),
		}
	}

	owned := o.Clone()
	switch opt.Tier {
	case catalog.KindCourse:
		owned.Courses.Add(opt.ItemID)
	case catalog.KindPack:
		owned.Packs.Add(opt.ItemID)
		for _, id := range opt.CourseIDs {
			owned.Courses.Add(id)
		}
	}

	return Result{
		Wallet:    account.Wallet{Balance: w.Balance.Sub(opt.Price)},
		Ownership: owned,
	}, nil
}
