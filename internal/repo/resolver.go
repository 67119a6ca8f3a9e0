// Package repo locates the repository that monofmt formats.
package repo

import (
	"fmt"
)

// EnvironmentResolutionError is returned when the repository root cannot be determined.
type EnvironmentResolutionError struct {
	Dir string
	Err error
}

func (e *EnvironmentResolutionError) Error() string {
	return fmt.Sprintf("could not resolve repository root from %s: %v", e.Dir, e.Err)
}

func (e *EnvironmentResolutionError) Unwrap() error {
	return e.Err
}

// RootResolver defines how the shared repository root is found.
type RootResolver interface {
	// Root returns the absolute, canonical top-level directory of the repository.
	Root() (string, error)
}
