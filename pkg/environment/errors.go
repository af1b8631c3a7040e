package environment

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrHomeNotConfigured is returned when neither the home property nor the
	// home environment variable is set.
	ErrHomeNotConfigured = errors.New("home directory is not configured")

	// ErrUnresolvedVariable matches every *UnresolvedVariableError.
	ErrUnresolvedVariable = errors.New("unresolved variable")
)

// UnresolvedVariableError reports a ${name} placeholder whose value is absent or empty.
type UnresolvedVariableError struct {
	Name string
	// Cause is set when a secret resolver failed rather than the value being absent.
	Cause error
}

func (e *UnresolvedVariableError) Error() string {
	msg := fmt.Sprintf("system property %s is not specified", e.Name)
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the resolver failure, if any.
func (e *UnresolvedVariableError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, ErrUnresolvedVariable) hold.
func (e *UnresolvedVariableError) Is(target error) bool {
	return target == ErrUnresolvedVariable
}
