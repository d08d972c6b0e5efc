// internal/purchase/domain.go
package purchase

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"coursemarket/internal/account"
	"coursemarket/internal/catalog"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrTypeMismatch      = errors.New("item is not of the requested type")
	ErrRateLimited       = errors.New("rate limit exceeded")
)

// InsufficientFundsError is returned when the balance does not cover the price.
// It matches ErrInsufficientFunds with errors.Is.
type InsufficientFundsError struct {
	Price     decimal.Decimal
	Balance   decimal.Decimal
	Shortfall decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: price %s, balance %s, missing %s", e.Price, e.Balance, e.Shortfall)
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// Result is the wallet and ownership after a purchase.
type Result struct {
	Wallet    account.Wallet
	Ownership account.Ownership
}

// Request names what to buy. The price always comes from the catalog.
type Request struct {
	Tier   catalog.Kind `json:"type" validate:"required,oneof=lesson course pack"`
	ItemID string       `json:"item_id" validate:"required"`
}

const EventPurchaseCompleted = "PurchaseCompleted"

// PurchaseCompletedEvent is appended to the account's stream after each purchase.
type PurchaseCompletedEvent struct {
	AccountID uuid.UUID       `json:"account_id"`
	Tier      catalog.Kind    `json:"type"`
	ItemID    string          `json:"item_id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Balance   decimal.Decimal `json:"balance_after"`
	CourseIDs []string        `json:"course_ids,omitempty"`
}

// Record is one entry of an account's purchase history.
type Record struct {
	PurchaseCompletedEvent
	Sequence    int       `json:"sequence"`
	PurchasedAt time.Time `json:"purchased_at"`
}
