package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/andyballingall/monofmt/internal/config"
	"github.com/andyballingall/monofmt/internal/guard"
	"github.com/andyballingall/monofmt/internal/repo"
	"github.com/andyballingall/monofmt/internal/report"
	"github.com/andyballingall/monofmt/internal/runner"
	"github.com/andyballingall/monofmt/internal/toolcheck"
)

// OutputOptions controls how results are rendered.
type OutputOptions struct {
	Format    string
	UseColour bool
}

// Manager defines the operations behind the monofmt commands.
type Manager interface {
	Format(ctx context.Context, opts OutputOptions) error
	Watch(ctx context.Context, opts OutputOptions, readyChan chan<- struct{}) error
	List(ctx context.Context, opts OutputOptions) error
	Check(ctx context.Context, opts OutputOptions) error
	Init(ctx context.Context, force bool) (string, error)
}

// Ensure the interface is satisfied.
var _ Manager = (*LazyManager)(nil)

// LazyManager acts as a placeholder for a real Manager implementation, allowing
// for deferred initialization of dependencies.
type LazyManager struct {
	inner Manager
}

func (l *LazyManager) SetInner(m Manager) {
	l.inner = m
}

// HasInner returns true if the inner manager has been set.
// This is used by PersistentPreRunE to skip initialization if already configured (e.g., in tests).
func (l *LazyManager) HasInner() bool {
	return l.inner != nil
}

func (l *LazyManager) check() Manager {
	if l.inner == nil {
		panic("LazyManager accessed before initialization; check command wiring.")
	}
	return l.inner
}

func (l *LazyManager) Format(ctx context.Context, opts OutputOptions) error {
	return l.check().Format(ctx, opts)
}

func (l *LazyManager) Watch(ctx context.Context, opts OutputOptions, readyChan chan<- struct{}) error {
	return l.check().Watch(ctx, opts, readyChan)
}

func (l *LazyManager) List(ctx context.Context, opts OutputOptions) error {
	return l.check().List(ctx, opts)
}

func (l *LazyManager) Check(ctx context.Context, opts OutputOptions) error {
	return l.check().Check(ctx, opts)
}

func (l *LazyManager) Init(ctx context.Context, force bool) (string, error) {
	return l.check().Init(ctx, force)
}

// Ensure the interface is satisfied.
var _ Manager = (*CLIManager)(nil)

// CLIManager is the concrete implementation of the Manager interface.
type CLIManager struct {
	logger         *slog.Logger
	guard          guard.Guard
	resolver       repo.RootResolver
	runner         *runner.Runner
	loader         *config.Loader
	checker        *toolcheck.Checker
	reporterWriter io.Writer
}

func NewCLIManager(
	l *slog.Logger,
	g guard.Guard,
	rr repo.RootResolver,
	r *runner.Runner,
	cl *config.Loader,
	tc *toolcheck.Checker,
) *CLIManager {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	return &CLIManager{
		logger:         l,
		guard:          g,
		resolver:       rr,
		runner:         r,
		loader:         cl,
		checker:        tc,
		reporterWriter: os.Stdout,
	}
}

// outputReporter renders everything a command prints to stdout.
type outputReporter interface {
	runner.Reporter
	WriteSteps(w io.Writer, source string, steps []runner.Step) error
	WriteTools(w io.Writer, statuses []toolcheck.Status) error
}

func newReporter(opts OutputOptions) outputReporter {
	if opts.Format == "json" {
		return &report.JSONReporter{}
	}
	return &report.TextReporter{UseColour: opts.UseColour}
}

// Format runs the step table once. The report is written for every run that
// got as far as executing steps, failed or not.
func (m *CLIManager) Format(ctx context.Context, opts OutputOptions) error {
	m.logger.Debug("formatting", "format", opts.Format, "useColour", opts.UseColour)

	o, err := m.runner.Run(ctx, m.loader.Steps)
	if o != nil {
		if rErr := newReporter(opts).Write(m.reporterWriter, o); rErr != nil {
			m.logger.Error("Failed to write report", "error", rErr)
		}
	}
	return err
}

// Watch runs the step table, then re-runs it whenever files under the repository
// root change. Errors that stop a run before any step executes are returned; step
// failures are reported and watching continues.
// If you want to know when the watcher is ready to start listening to changes,
// pass a non-nil readyChan to be notified.
func (m *CLIManager) Watch(ctx context.Context, opts OutputOptions, readyChan chan<- struct{}) error {
	m.logger.Debug("watching", "format", opts.Format, "useColour", opts.UseColour)

	reporter := newReporter(opts)
	runOnce := func(ctx context.Context) (*runner.Outcome, error) {
		o, err := m.runner.Run(ctx, m.loader.Steps)
		if o != nil {
			if rErr := reporter.Write(m.reporterWriter, o); rErr != nil {
				m.logger.Error("Failed to write report", "error", rErr)
			}
		}
		if err != nil && ctx.Err() == nil {
			m.logger.Error("Format run failed", "error", err)
		}
		return o, err
	}

	o, err := runOnce(ctx)
	if o == nil {
		return err
	}

	watcher := runner.NewWatcher(m.logger)

	// Forward watcher Ready signal if caller wants notification
	if readyChan != nil {
		go func() {
			select {
			case <-watcher.Ready:
				readyChan <- struct{}{}
			case <-ctx.Done():
			}
		}()
	}

	err = watcher.Watch(ctx, o.Root, func(ctx context.Context) {
		m.logger.Info("Change detected, formatting")
		_, _ = runOnce(ctx)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// List prints the step table that a run would use, including disabled steps.
func (m *CLIManager) List(_ context.Context, opts OutputOptions) error {
	root, err := m.resolver.Root()
	if err != nil {
		return err
	}

	t, err := m.loader.Load(root)
	if err != nil {
		return err
	}

	return newReporter(opts).WriteSteps(m.reporterWriter, t.Source, t.Steps)
}

// Check reports whether the executable of every enabled step can be found.
func (m *CLIManager) Check(ctx context.Context, opts OutputOptions) error {
	root, err := m.resolver.Root()
	if err != nil {
		return err
	}

	t, err := m.loader.Load(root)
	if err != nil {
		return err
	}

	statuses, checkErr := m.checker.Check(ctx, t.Steps)
	if statuses != nil {
		if err := newReporter(opts).WriteTools(m.reporterWriter, statuses); err != nil {
			return err
		}
	}
	return checkErr
}

// Init writes the built-in step table to the repository root.
func (m *CLIManager) Init(_ context.Context, force bool) (string, error) {
	if err := m.guard.Check(); err != nil {
		return "", err
	}

	root, err := m.resolver.Root()
	if err != nil {
		return "", err
	}

	path, err := config.WriteDefault(root, force)
	if err != nil {
		return "", err
	}

	m.logger.Debug("wrote step table", "path", path)
	return path, nil
}
