package repo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/andyballingall/monofmt/internal/fs"
)

// getwd is a variable for os.Getwd to allow mocking in tests.
var getwd = os.Getwd

// CLIResolver is the concrete implementation of RootResolver using the git CLI.
type CLIResolver struct {
	dir          string
	pathResolver fs.PathResolver
}

// NewCLIResolver creates a CLIResolver that starts from dir.
// An empty dir means the process working directory.
func NewCLIResolver(dir string, pathResolver fs.PathResolver) *CLIResolver {
	if pathResolver == nil {
		pathResolver = fs.NewPathResolver()
	}
	return &CLIResolver{dir: dir, pathResolver: pathResolver}
}

// Root finds the top-level directory of the git repository containing the start directory.
func (r *CLIResolver) Root() (string, error) {
	dir := r.dir
	if dir == "" {
		wd, err := getwd()
		if err != nil {
			return "", &EnvironmentResolutionError{Dir: "<unknown>", Err: err}
		}
		dir = wd
	}

	cmd := exec.CommandContext(context.Background(), "git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = errors.New(msg)
		} else if errors.As(err, &exitErr) {
			// git's own status must not leak out as monofmt's exit code
			err = fmt.Errorf("git rev-parse --show-toplevel: %s", exitErr)
		}
		return "", &EnvironmentResolutionError{Dir: dir, Err: err}
	}

	top := strings.TrimSpace(string(out))
	if top == "" {
		return "", &EnvironmentResolutionError{Dir: dir, Err: errors.New("git reported an empty top-level directory")}
	}

	root, err := r.pathResolver.CanonicalPath(top)
	if err != nil {
		return "", &EnvironmentResolutionError{Dir: dir, Err: err}
	}
	return root, nil
}

// StaticResolver returns a root that is already known.
type StaticResolver string

// Root returns the stored path.
func (s StaticResolver) Root() (string, error) {
	return string(s), nil
}
