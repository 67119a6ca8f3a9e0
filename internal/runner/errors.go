package runner

import (
	"errors"
	"fmt"
)

// GenericFailureCode is the exit code used whenever a failure has no exit code of its own:
// launch errors, guard failures, signal-terminated children and configuration errors.
const GenericFailureCode = 1

// StepExecutionError is returned when a step's tool ran and reported failure.
type StepExecutionError struct {
	Step string
	Code int
}

func (e *StepExecutionError) Error() string {
	return fmt.Sprintf("step %q exited with status %d", e.Step, e.Code)
}

// ExitCode propagates the failing tool's own status.
func (e *StepExecutionError) ExitCode() int {
	return e.Code
}

// StepLaunchError is returned when a step's process could not be started at all.
type StepLaunchError struct {
	Step string
	Err  error
}

func (e *StepLaunchError) Error() string {
	return fmt.Sprintf("step %q could not be started: %v", e.Step, e.Err)
}

func (e *StepLaunchError) Unwrap() error {
	return e.Err
}

// EmptyStepTableError is returned when the table holds no enabled steps.
type EmptyStepTableError struct {
	Total int
}

func (e *EmptyStepTableError) Error() string {
	if e.Total == 0 {
		return "the step table is empty"
	}
	return fmt.Sprintf("all %d steps in the step table are disabled", e.Total)
}

// ExitCode maps the error returned from a run to a process exit code: 0 for nil,
// the tool's own status for a *StepExecutionError, GenericFailureCode otherwise.
// Other errors that happen to carry an exit code (a failed git call, say) still
// map to GenericFailureCode.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var execErr *StepExecutionError
	if errors.As(err, &execErr) && execErr.Code != 0 {
		return execErr.Code
	}
	return GenericFailureCode
}
