package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/andyballingall/monofmt/internal/repo"
)

type fakeGuard struct {
	err   error
	calls int
}

func (g *fakeGuard) Check() error {
	g.calls++
	return g.err
}

type fakeResolver struct {
	root string
	err  error
}

func (r *fakeResolver) Root() (string, error) {
	return r.root, r.err
}

// call records one Execute invocation.
type call struct {
	Dir  string
	Argv []string
}

// fakeExecutor maps an executable name to an exit code or launch error.
type fakeExecutor struct {
	mu        sync.Mutex
	codes     map[string]int
	launchErr map[string]error
	before    func(exe string)
	calls     []call
}

func (e *fakeExecutor) Execute(_ context.Context, dir string, argv []string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, call{Dir: dir, Argv: argv})
	if e.before != nil {
		e.before(argv[0])
	}
	if err, ok := e.launchErr[argv[0]]; ok {
		return GenericFailureCode, err
	}
	return e.codes[argv[0]], nil
}

func (e *fakeExecutor) executed() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, 0, len(e.calls))
	for _, c := range e.calls {
		names = append(names, c.Argv[0])
	}
	return names
}

func steps(names ...string) []Step {
	out := make([]Step, 0, len(names))
	for _, n := range names {
		out = append(out, Step{Name: n, Dir: ".", Command: []string{n}, Enabled: true})
	}
	return out
}

func static(s []Step) StepLoader {
	return func(string) ([]Step, error) { return s, nil }
}

func newTestRunner(t *testing.T, exec Executor) (*Runner, string) {
	t.Helper()
	root := t.TempDir()
	return New(&fakeGuard{}, repo.StaticResolver(root), exec, nil), root
}

func mkdir(t *testing.T, parts ...string) string {
	t.Helper()
	p := filepath.Join(parts...)
	if err := os.MkdirAll(p, 0o755); err != nil {
		t.Fatal(err)
	}
	return p
}

var errBoom = errors.New("boom")
