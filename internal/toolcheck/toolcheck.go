// Package toolcheck reports whether the tools named by a step table are installed.
package toolcheck

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/andyballingall/monofmt/internal/fs"
	"github.com/andyballingall/monofmt/internal/runner"
)

// maxConcurrentLookups bounds how many PATH lookups run at once.
const maxConcurrentLookups = 8

// Status is the availability of one step's executable.
type Status struct {
	Step       string
	Executable string
	// Path is where the executable was found; empty when missing.
	Path string
}

// Found reports whether the executable was located.
func (s Status) Found() bool {
	return s.Path != ""
}

// MissingToolsError lists the steps whose executables could not be found.
type MissingToolsError struct {
	Missing []Status
}

func (e *MissingToolsError) Error() string {
	parts := make([]string, 0, len(e.Missing))
	for _, s := range e.Missing {
		parts = append(parts, fmt.Sprintf("%s (step %s)", s.Executable, s.Step))
	}
	return fmt.Sprintf("%d tool(s) not found: %s", len(e.Missing), strings.Join(parts, ", "))
}

// Checker looks up executables on PATH, falling back to $GOPATH/bin.
type Checker struct {
	envProvider fs.EnvProvider
	lookPath    func(string) (string, error)
}

// NewChecker creates a Checker.
func NewChecker(envProvider fs.EnvProvider) *Checker {
	if envProvider == nil {
		envProvider = fs.NewEnvProvider()
	}
	return &Checker{envProvider: envProvider, lookPath: exec.LookPath}
}

// Check looks up the executable of every enabled step. Results are in table order.
// The returned error is a *MissingToolsError when any executable is missing.
func (c *Checker) Check(ctx context.Context, steps []runner.Step) ([]Status, error) {
	enabled := runner.Enabled(steps)
	statuses := make([]Status, len(enabled))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)
	for i, s := range enabled {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			statuses[i] = Status{
				Step:       s.Name,
				Executable: s.Executable(),
				Path:       c.find(s.Executable()),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var missing []Status
	for _, s := range statuses {
		if !s.Found() {
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		return statuses, &MissingToolsError{Missing: missing}
	}
	return statuses, nil
}

// find returns the path of name, or "" if it is not installed.
func (c *Checker) find(name string) string {
	if p, err := c.lookPath(name); err == nil {
		return p
	}
	// explicit paths are not searched for anywhere else
	if strings.ContainsRune(name, filepath.Separator) {
		return ""
	}

	// Also check GOPATH/bin
	goPath := c.envProvider.Get("GOPATH")
	if goPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		goPath = filepath.Join(home, "go")
	}
	binName := filepath.Base(name)
	if runtime.GOOS == "windows" {
		binName += ".exe"
	}
	candidate := filepath.Join(goPath, "bin", binName)
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate
	}
	return ""
}
