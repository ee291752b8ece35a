package store

import (
	"errors"
	"fmt"
)

// ErrStructuralAbsence is the kind shared by every "key does not exist" failure.
var ErrStructuralAbsence = errors.New("structural absence")

var (
	// ErrUndefinedVariable is returned when a variable is not part of the table.
	ErrUndefinedVariable = fmt.Errorf("%w: undefined variable", ErrStructuralAbsence)
	// ErrUndefinedAssessment is returned when a variable has no key for a wave.
	ErrUndefinedAssessment = fmt.Errorf("%w: undefined assessment", ErrStructuralAbsence)
)

var (
	ErrMissingIdentifierConfiguration = errors.New("participant unique identifier has not been configured")
	ErrMissingIdentifierValue         = errors.New("participant unique identifier has no value")
)
