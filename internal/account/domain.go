// internal/account/domain.go
package account

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrNegativeBalance = errors.New("balance must not be negative")
	ErrInvalidBalance  = errors.New("balance out of range")
)

// Balances are stored as NUMERIC(12, 2).
const balanceScale = 2

var MaxBalance = decimal.New(1, 10).Sub(decimal.New(1, -balanceScale))

// CheckBalance reports whether d can be held in a wallet as is, with no
// rounding by the storage layer.
func CheckBalance(d decimal.Decimal) error {
	switch {
	case d.IsNegative():
		return ErrNegativeBalance
	case !d.Equal(d.Truncate(balanceScale)):
		return fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidBalance, d, balanceScale)
	case d.GreaterThan(MaxBalance):
		return fmt.Errorf("%w: %s exceeds %s", ErrInvalidBalance, d, MaxBalance.StringFixed(balanceScale))
	}
	return nil
}

// IDSet is a set of catalog ids. It serializes as a sorted JSON array.
type IDSet map[string]struct{}

func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s IDSet) Add(id string) {
	s[id] = struct{}{}
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Sorted returns the ids in ascending order. Never nil.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *IDSet) UnmarshalJSON(b []byte) error {
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}

// Wallet holds the spendable balance. The balance is never negative.
type Wallet struct {
	Balance decimal.Decimal `json:"balance"`
}

// Ownership records which courses and packs an account holds. Lessons are not
// tracked.
type Ownership struct {
	Courses IDSet `json:"owned_course_ids"`
	Packs   IDSet `json:"owned_pack_ids"`
}

func NewOwnership() Ownership {
	return Ownership{Courses: NewIDSet(), Packs: NewIDSet()}
}

// Clone returns a deep copy; nil sets come back empty.
func (o Ownership) Clone() Ownership {
	return Ownership{Courses: o.Courses.Clone(), Packs: o.Packs.Clone()}
}

// Account is one learner's wallet and ownership.
type Account struct {
	ID        uuid.UUID `json:"id"`
	Wallet    Wallet    `json:"wallet"`
	Ownership Ownership `json:"ownership"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a copy that shares no sets with a.
func (a *Account) Clone() *Account {
	c := *a
	c.Ownership = a.Ownership.Clone()
	return &c
}
