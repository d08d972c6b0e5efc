// internal/purchase/listener.go
package purchase

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Listener is told about the effects of each completed purchase so hosts can
// re-render or persist them elsewhere.
type Listener interface {
	BalanceChanged(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error
	CourseUnlocked(ctx context.Context, accountID uuid.UUID, courseID string) error
	PackUnlocked(ctx context.Context, accountID uuid.UUID, packID string, courseIDs []string) error
	// LessonUnlocked is the only trace a lesson purchase leaves besides the
	// event log.
	LessonUnlocked(ctx context.Context, accountID uuid.UUID, lessonID string) error
}

// ListenerFuncs adapts optional functions to Listener; nil fields are no-ops.
type ListenerFuncs struct {
	OnBalanceChanged func(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error
	OnCourseUnlocked func(ctx context.Context, accountID uuid.UUID, courseID string) error
	OnPackUnlocked   func(ctx context.Context, accountID uuid.UUID, packID string, courseIDs []string) error
	OnLessonUnlocked func(ctx context.Context, accountID uuid.UUID, lessonID string) error
}

func (f ListenerFuncs) BalanceChanged(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error {
	if f.OnBalanceChanged == nil {
		return nil
	}
	return f.OnBalanceChanged(ctx, accountID, balance)
}

func (f ListenerFuncs) CourseUnlocked(ctx context.Context, accountID uuid.UUID, courseID string) error {
	if f.OnCourseUnlocked == nil {
		return nil
	}
	return f.OnCourseUnlocked(ctx, accountID, courseID)
}

func (f ListenerFuncs) PackUnlocked(ctx context.Context, accountID uuid.UUID, packID string, courseIDs []string) error {
	if f.OnPackUnlocked == nil {
		return nil
	}
	return f.OnPackUnlocked(ctx, accountID, packID, courseIDs)
}

func (f ListenerFuncs) LessonUnlocked(ctx context.Context, accountID uuid.UUID, lessonID string) error {
	if f.OnLessonUnlocked == nil {
		return nil
	}
	return f.OnLessonUnlocked(ctx, accountID, lessonID)
}

// Multi fans each callback out to every listener and joins their errors.
type Multi []Listener

func (m Multi) BalanceChanged(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error {
	var errs []error
	for _, l := range m {
		errs = append(errs, l.BalanceChanged(ctx, accountID, balance))
	}
	return errors.Join(errs...)
}

func (m Multi) CourseUnlocked(ctx context.Context, accountID uuid.UUID, courseID string) error {
	var errs []error
	for _, l := range m {
		errs = append(errs, l.CourseUnlocked(ctx, accountID, courseID))
	}
	return errors.Join(errs...)
}

func (m Multi) PackUnlocked(ctx context.Context, accountID uuid.UUID, packID string, courseIDs []string) error {
	var errs []error
	for _, l := range m {
		errs = append(errs, l.PackUnlocked(ctx, accountID, packID, courseIDs))
	}
	return errors.Join(errs...)
}

func (m Multi) LessonUnlocked(ctx context.Context, accountID uuid.UUID, lessonID string) error {
	var errs []error
	for _, l := range m {
		errs = append(errs, l.LessonUnlocked(ctx, accountID, lessonID))
	}
	return errors.Join(errs...)
}
