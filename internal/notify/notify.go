// internal/notify/notify.go

// Package notify forwards purchase effects outside the account service.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"coursemarket/internal/logger"
	"coursemarket/internal/purchase"
)

const (
	TypeBalanceChanged = "balance_changed"
	TypeCourseUnlocked = "course_unlocked"
	TypePackUnlocked   = "pack_unlocked"
	TypeLessonUnlocked = "lesson_unlocked"
)

// Notification is the wire form of one listener callback.
type Notification struct {
	Type      string           `json:"type"`
	AccountID uuid.UUID        `json:"account_id"`
	Balance   *decimal.Decimal `json:"balance,omitempty"`
	ItemID    string           `json:"item_id,omitempty"`
	CourseIDs []string         `json:"course_ids,omitempty"`
	At        time.Time        `json:"at"`
}

func balanceChanged(accountID uuid.UUID, balance decimal.Decimal) Notification {
	return Notification{Type: TypeBalanceChanged, AccountID: accountID, Balance: &balance, At: time.Now().UTC()}
}

func unlocked(kind string, accountID uuid.UUID, itemID string, courseIDs []string) Notification {
	return Notification{Type: kind, AccountID: accountID, ItemID: itemID, CourseIDs: courseIDs, At: time.Now().UTC()}
}

// Log writes every callback to the logger.
type Log struct {
	log *logger.Logger
}

var _ purchase.Listener = (*Log)(nil)

func NewLog(log *logger.Logger) *Log {
	return &Log{log: log.With("listener", "log")}
}

func (l *Log) BalanceChanged(_ context.Context, accountID uuid.UUID, balance decimal.Decimal) error {
	l.log.Info("balance changed", "account_id", accountID, "balance", balance.String())
	return nil
}

func (l *Log) CourseUnlocked(_ context.Context, accountID uuid.UUID, courseID string) error {
	l.log.Info("course unlocked", "account_id", accountID, "course_id", courseID)
	return nil
}

func (l *Log) PackUnlocked(_ context.Context, accountID uuid.UUID, packID string, courseIDs []string) error {
	l.log.Info("pack unlocked", "account_id", accountID, "pack_id", packID, "course_ids", courseIDs)
	return nil
}

func (l *Log) LessonUnlocked(_ context.Context, accountID uuid.UUID, lessonID string) error {
	l.log.Info("lesson unlocked", "account_id", accountID, "lesson_id", lessonID)
	return nil
}
