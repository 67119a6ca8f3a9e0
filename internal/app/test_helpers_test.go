package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/andyballingall/monofmt/internal/config"
	"github.com/andyballingall/monofmt/internal/fs"
	"github.com/andyballingall/monofmt/internal/guard"
	"github.com/andyballingall/monofmt/internal/repo"
	"github.com/andyballingall/monofmt/internal/runner"
	"github.com/andyballingall/monofmt/internal/toolcheck"
)

type MockManager struct {
	mock.Mock
}

func (m *MockManager) Format(ctx context.Context, opts OutputOptions) error {
	args := m.Called(ctx, opts)
	return args.Error(0)
}

func (m *MockManager) Watch(ctx context.Context, opts OutputOptions, readyChan chan<- struct{}) error {
	args := m.Called(ctx, opts, readyChan)
	return args.Error(0)
}

func (m *MockManager) List(ctx context.Context, opts OutputOptions) error {
	args := m.Called(ctx, opts)
	return args.Error(0)
}

func (m *MockManager) Check(ctx context.Context, opts OutputOptions) error {
	args := m.Called(ctx, opts)
	return args.Error(0)
}

func (m *MockManager) Init(ctx context.Context, force bool) (string, error) {
	args := m.Called(ctx, force)
	return args.String(0), args.Error(1)
}

// safeBuffer is a thread-safe wrapper around bytes.Buffer for use in concurrent tests.
type safeBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// testEnv lets tests run inside containers whose only user is root, and keeps
// the log file out of the user's cache directory.
func testEnv(t *testing.T) fs.MapEnvProvider {
	t.Helper()
	return fs.MapEnvProvider{
		guard.AllowRootEnvVar: "1",
		LogEnvVar:             filepath.Join(t.TempDir(), LogFile),
	}
}

// toolBox creates fake formatter scripts. Every invocation appends
// "<name> <working dir>" to a shared log so tests can check order and directory.
type toolBox struct {
	dir string
	log string
}

func newToolBox(t *testing.T) *toolBox {
	t.Helper()
	dir := t.TempDir()
	return &toolBox{dir: dir, log: filepath.Join(dir, "calls.log")}
}

// tool writes an executable that records its call and exits with code.
func (tb *toolBox) tool(t *testing.T, name string, code int) string {
	t.Helper()
	path := filepath.Join(tb.dir, name)
	script := fmt.Sprintf("#!/bin/sh\necho \"%s $(pwd)\" >> '%s'\nexit %d\n", name, tb.log, code)
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755)) //nolint:gosec // test executable
	return path
}

// calls returns the names of the tools invoked so far, in order.
func (tb *toolBox) calls(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(tb.log)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)

	var names []string
	for line := range strings.Lines(string(data)) {
		name, _, _ := strings.Cut(strings.TrimSpace(line), " ")
		names = append(names, name)
	}
	return names
}

// writeStepTable writes a .monofmt.yml to root running the given commands in order.
func writeStepTable(t *testing.T, root string, commands map[string]string, order ...string) {
	t.Helper()
	var b strings.Builder
	b.WriteString("steps:\n")
	for _, name := range order {
		fmt.Fprintf(&b, "  - name: %s\n    command: [%q]\n", name, commands[name])
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, config.DefaultConfigFile), []byte(b.String()), 0o600))
}

// newTestRepo creates a git repository and returns its canonical root.
func newTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	root, err := fs.CanonicalPath(t.TempDir())
	require.NoError(t, err)

	cmd := exec.CommandContext(context.Background(), "git", "init", "-q")
	cmd.Dir = root
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
	return root
}

// newTestManager wires a real CLIManager for a known repository root.
func newTestManager(t *testing.T, root string, stdout *safeBuffer) *CLIManager {
	t.Helper()
	env := testEnv(t)
	g := guard.NewEUIDGuard(nil, env, nil)
	resolver := repo.StaticResolver(root)
	r := runner.New(g, resolver, runner.NewExecExecutor(stdout, stdout), nil)

	m := NewCLIManager(nil, g, resolver, r, config.NewLoader("", env, nil), toolcheck.NewChecker(env))
	m.reporterWriter = stdout
	return m
}
