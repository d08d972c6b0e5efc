// internal/account/gate.go
package account

import "github.com/shopspring/decimal"

// CanAfford reports whether balance covers price.
func CanAfford(price, balance decimal.Decimal) bool {
	return balance.GreaterThanOrEqual(price)
}

// Shortfall is how much balance is missing to pay price; zero when affordable.
func Shortfall(price, balance decimal.Decimal) decimal.Decimal {
	if CanAfford(price, balance) {
		return decimal.Zero
	}
	return price.Sub(balance)
}
