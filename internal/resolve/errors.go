package resolve

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes resolution errors.
type ErrorCode string

const (
	// ErrCodeUnknownPredicate indicates a field paired with a value shape no
	// rule accepts.
	ErrCodeUnknownPredicate ErrorCode = "UNKNOWN_PREDICATE"

	// ErrCodeLookupFailed indicates an identifier lookup missed or failed.
	ErrCodeLookupFailed ErrorCode = "LOOKUP_FAILED"
)

// ErrNoTags is returned when a tag search matches no tags at all.
var ErrNoTags = errors.New("no matching tags")

// Error is a fatal resolution error for one leaf.
type Error struct {
	Code ErrorCode

	// Field is the registry name of the offending leaf.
	Field string

	// Text is the value that failed to resolve. Empty for UNKNOWN_PREDICATE.
	Text string

	// Err is the lookup's own error, if any.
	Err error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeUnknownPredicate:
		return "Couldn't find ItemData: " + e.Field
	case ErrCodeLookupFailed:
		if e.Err != nil {
			return fmt.Sprintf("%s: %s %q could not be resolved: %v", e.Code, e.Field, e.Text, e.Err)
		}
		return fmt.Sprintf("%s: %s %q could not be resolved", e.Code, e.Field, e.Text)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Field)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// IsUnknownPredicate reports whether err is an UNKNOWN_PREDICATE error.
// Uses errors.As to handle wrapped errors.
func IsUnknownPredicate(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Code == ErrCodeUnknownPredicate
	}
	return false
}

// IsLookupFailed reports whether err is a LOOKUP_FAILED error.
func IsLookupFailed(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Code == ErrCodeLookupFailed
	}
	return false
}
