package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/andyballingall/monofmt/internal/fs"
	"github.com/andyballingall/monofmt/internal/guard"
	"github.com/andyballingall/monofmt/internal/repo"
)

// StepLoader returns the step table for a repository root.
type StepLoader func(root string) ([]Step, error)

// Reporter renders a finished Outcome.
type Reporter interface {
	Write(w io.Writer, o *Outcome) error
}

// Runner is the orchestration runner.
type Runner struct {
	guard        guard.Guard
	resolver     repo.RootResolver
	executor     Executor
	pathResolver fs.PathResolver
	logger       *slog.Logger
	now          func() time.Time
}

// New creates a Runner. All collaborators are required except logger.
func New(g guard.Guard, resolver repo.RootResolver, executor Executor, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{
		guard:        g,
		resolver:     resolver,
		executor:     executor,
		pathResolver: fs.NewPathResolver(),
		logger:       logger.With("component", "runner"),
		now:          time.Now,
	}
}

// Run performs one complete run. Guard and root-resolution failures return a nil
// Outcome and execute nothing. Otherwise the returned Outcome holds one RunResult
// per attempted step, and the error is nil exactly when the Outcome succeeded.
func (r *Runner) Run(ctx context.Context, load StepLoader) (*Outcome, error) {
	if err := r.guard.Check(); err != nil {
		return nil, err
	}

	root, err := r.resolver.Root()
	if err != nil {
		return nil, err
	}

	table, err := load(root)
	if err != nil {
		return nil, err
	}

	steps := Enabled(table)
	if len(steps) == 0 {
		return nil, &EmptyStepTableError{Total: len(table)}
	}
	if skipped := len(table) - len(steps); skipped > 0 {
		r.logger.Debug("skipping disabled steps", "count", skipped)
	}

	o := newOutcome(root, r.now())
	r.logger.Debug("starting run", "runId", o.RunID, "root", root, "steps", len(steps))

	for _, s := range steps {
		res, err := r.runStep(ctx, root, s)
		o.append(res)
		if err != nil {
			o.failAt(s.Name, res.ExitCode, r.now())
			r.logger.Debug("run failed", "runId", o.RunID, "step", s.Name, "exitCode", res.ExitCode)
			return o, err
		}
	}

	o.succeed(r.now())
	r.logger.Debug("run succeeded", "runId", o.RunID, "duration", o.Duration())
	return o, nil
}

// runStep launches a single step. The returned error is a *StepLaunchError or a
// *StepExecutionError; the RunResult is always populated.
func (r *Runner) runStep(ctx context.Context, root string, s Step) (RunResult, error) {
	start := r.now()
	res := RunResult{StepName: s.Name, ExitCode: GenericFailureCode}
	finish := func() RunResult {
		res.Duration = r.now().Sub(start)
		return res
	}

	if err := ctx.Err(); err != nil {
		return finish(), &StepLaunchError{Step: s.Name, Err: err}
	}

	// Checked now rather than up front: an earlier step may create the directory.
	dir, err := r.pathResolver.StepDir(root, s.Dir)
	if err != nil {
		return finish(), &StepLaunchError{Step: s.Name, Err: err}
	}

	r.logger.Info(fmt.Sprintf("Running %s", s.Name), "dir", s.Dir, "command", s.CommandLine())

	code, err := r.executor.Execute(ctx, dir, s.Argv())
	res.ExitCode = code
	if err != nil {
		res.ExitCode = GenericFailureCode
		return finish(), &StepLaunchError{Step: s.Name, Err: err}
	}

	res = finish()
	r.logger.Debug("step finished", "step", s.Name, "exitCode", code, "duration", res.Duration)
	if code != 0 {
		return res, &StepExecutionError{Step: s.Name, Code: code}
	}
	return res, nil
}
