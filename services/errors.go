package services

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is an expected, user-facing rejection. It is always returned before
// anything is written, so the caller's snapshot is untouched.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// Is matches on Code so that errors carrying a more specific message still
// compare equal to their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func (e *Error) withf(format string, args ...interface{}) *Error {
	c := *e
	c.Message = fmt.Sprintf(format, args...)
	return &c
}

// KindOf returns the kind of a service error, or 0 for anything else.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

var (
	ErrInvalidAmount        = &Error{KindValidation, "invalid_amount", "amount must be greater than zero"}
	ErrInvalidType          = &Error{KindValidation, "invalid_type", "unknown type"}
	ErrInvalidIncrement     = &Error{KindValidation, "invalid_increment", "increment must be greater than zero"}
	ErrInvalidInput         = &Error{KindValidation, "invalid_input", "invalid input"}
	ErrCategoryNotFound     = &Error{KindNotFound, "category_not_found", "category not found"}
	ErrProfileNotFound      = &Error{KindNotFound, "profile_not_found", "profile not found"}
	ErrLogNotFound          = &Error{KindNotFound, "log_not_found", "xp log not found"}
	ErrHabitNotFound        = &Error{KindNotFound, "habit_not_found", "habit not found"}
	ErrCompletionNotFound   = &Error{KindNotFound, "completion_not_found", "completion not found"}
	ErrGoalNotFound         = &Error{KindNotFound, "goal_not_found", "goal not found"}
	ErrItemNotFound         = &Error{KindNotFound, "item_not_found", "shop item not found"}
	ErrNotificationNotFound = &Error{KindNotFound, "notification_not_found", "notification not found"}
	ErrGoalNotActive        = &Error{KindConflict, "goal_not_active", "goal is not active"}
	ErrAlreadyOwned         = &Error{KindConflict, "already_owned", "item is already owned"}
	ErrInsufficientXP       = &Error{KindConflict, "insufficient_xp", "not enough XP"}
	ErrNotOwned             = &Error{KindConflict, "not_owned", "item is not owned"}
	ErrNotRefundable        = &Error{KindConflict, "not_refundable", "item is not refundable"}
	ErrHabitInactive        = &Error{KindConflict, "habit_inactive", "habit is not active"}
	ErrProfileExists        = &Error{KindConflict, "profile_exists", "profile already exists"}
	ErrManualModeRequired   = &Error{KindConflict, "manual_mode_required", "manual overrides require the rulebook to be in MANUAL mode"}
	ErrDuplicateName        = &Error{KindConflict, "duplicate_name", "an entry with this name already exists"}
)
