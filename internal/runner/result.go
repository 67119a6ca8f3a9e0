package runner

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// RunResult records how one executed step ended.
type RunResult struct {
	StepName string
	ExitCode int
	Duration time.Duration
}

// Success reports whether the step exited zero.
func (r RunResult) Success() bool {
	return r.ExitCode == 0
}

// Status is the terminal status of a run.
type Status string

const (
	// StatusRunning is the status of an Outcome whose run has not finished.
	StatusRunning Status = "running"
	// StatusSuccess means every enabled step exited zero.
	StatusSuccess Status = "success"
	// StatusFailed means the run stopped at FailedStep.
	StatusFailed Status = "failed"
)

// Outcome accumulates the results of a single run.
type Outcome struct {
	RunID     string
	Root      string
	StartTime time.Time
	EndTime   time.Time
	Status    Status

	// FailedStep and FailedCode are set when Status is StatusFailed.
	FailedStep string
	FailedCode int

	results []RunResult
}

func newOutcome(root string, start time.Time) *Outcome {
	return &Outcome{
		RunID:     uuid.NewString(),
		Root:      root,
		StartTime: start,
		Status:    StatusRunning,
	}
}

// Results returns a copy of the results gathered so far, in execution order.
func (o *Outcome) Results() []RunResult {
	return slices.Clone(o.results)
}

// Duration is the wall time of the whole run.
func (o *Outcome) Duration() time.Duration {
	if o.EndTime.IsZero() {
		return 0
	}
	return o.EndTime.Sub(o.StartTime)
}

// ExitCode translates the terminal status into a process exit code.
func (o *Outcome) ExitCode() int {
	switch o.Status {
	case StatusSuccess:
		return 0
	case StatusFailed:
		if o.FailedCode != 0 {
			return o.FailedCode
		}
	}
	return GenericFailureCode
}

func (o *Outcome) append(r RunResult) {
	o.results = append(o.results, r)
}

func (o *Outcome) failAt(step string, code int, end time.Time) {
	o.Status = StatusFailed
	o.FailedStep = step
	o.FailedCode = code
	o.EndTime = end
}

func (o *Outcome) succeed(end time.Time) {
	o.Status = StatusSuccess
	o.EndTime = end
}
