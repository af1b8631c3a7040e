// Package snapshot hands out deep copies of values owned by long-lived components
// (property stores, loaded configuration sections) so callers cannot mutate them.
package snapshot

import (
	"github.com/pkg/errors"
	"github.com/tiendc/go-deepcopy"
)

// Copy returns a deep copy of src. Slices, maps and nested pointers are copied
// recursively. A nil src yields (nil, nil).
func Copy[T any](src *T) (*T, error) {
	if src == nil {
		return nil, nil
	}

	var dst T
	if err := deepcopy.Copy(&dst, src); err != nil {
		return nil, errors.Wrapf(err, "failed to deep copy type %T", src)
	}
	return &dst, nil
}

// MustCopy is Copy for values whose shape is known to be copyable.
// It panics if the copy fails.
func MustCopy[T any](src *T) *T {
	if src == nil {
		return nil
	}

	result, err := Copy(src)
	if err != nil {
		panic("failed to create snapshot: " + err.Error())
	}
	return result
}

// Strings copies a string map. The result is never nil.
func Strings(src map[string]string) map[string]string {
	if len(src) == 0 {
		return map[string]string{}
	}
	return *MustCopy(&src)
}
