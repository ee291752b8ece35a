// Package precondition reports cohort data that violates an assumption the
// mapping logic relies on. Such a violation means the participant cannot be
// transformed. Callers usually skip that participant and carry on with the
// rest.
package precondition

import (
	"errors"
	"fmt"
)

// ErrViolation matches every *Error via errors.Is.
var ErrViolation = errors.New("precondition violated")

// Error is a precondition violation raised by mapping logic.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return "unexpected input: " + e.Message
}

func (e *Error) Is(target error) bool {
	return target == ErrViolation
}

// Fail returns a violation with a formatted message.
func Fail(format string, args ...any) error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// Require returns the value v points at, or a violation when v is nil.
func Require(v *string, format string, args ...any) (string, error) {
	if v == nil {
		return "", Fail(format, args...)
	}
	return *v, nil
}
