package runner

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// Executor launches one child process and waits for it.
type Executor interface {
	// Execute runs argv with dir as its working directory and returns its exit code.
	// A non-nil error means the process could not be started; a started process that
	// fails is reported only through the exit code.
	Execute(ctx context.Context, dir string, argv []string) (int, error)
}

// ExecExecutor runs steps with os/exec, passing the child's output straight through.
type ExecExecutor struct {
	stdout io.Writer
	stderr io.Writer
}

// NewExecExecutor creates an ExecExecutor that forwards child output to stdout and stderr.
// Nil writers default to the process's own streams.
func NewExecExecutor(stdout, stderr io.Writer) *ExecExecutor {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &ExecExecutor{stdout: stdout, stderr: stderr}
}

// Execute implements Executor.
func (e *ExecExecutor) Execute(ctx context.Context, dir string, argv []string) (int, error) {
	if len(argv) == 0 {
		return GenericFailureCode, errors.New("empty command")
	}

	//nolint:gosec // argv comes from the step table, which is trusted configuration
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	// *os.File writers are handed to the child directly, so output is not buffered or reordered.
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code <= 0 {
			// terminated by a signal
			code = GenericFailureCode
		}
		return code, nil
	}

	return GenericFailureCode, err
}
