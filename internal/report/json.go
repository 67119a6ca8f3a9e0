// Package report renders run outcomes, step tables and tool checks for monofmt.
package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/andyballingall/monofmt/internal/runner"
	"github.com/andyballingall/monofmt/internal/toolcheck"
)

// JSONReporter implements runner.Reporter for JSON output.
type JSONReporter struct{}

type jsonResult struct {
	Step     string `json:"step"`
	ExitCode int    `json:"exitCode"`
	Duration string `json:"duration"`
}

type jsonOutput struct {
	RunID      string       `json:"runId"`
	Root       string       `json:"root"`
	Status     string       `json:"status"`
	FailedStep string       `json:"failedStep,omitempty"`
	ExitCode   int          `json:"exitCode"`
	StartTime  string       `json:"startTime"`
	EndTime    string       `json:"endTime"`
	Duration   string       `json:"duration"`
	Results    []jsonResult `json:"results"`
}

type jsonStep struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Dir         string   `json:"dir"`
	Command     []string `json:"command"`
	Args        []string `json:"args"`
	Enabled     bool     `json:"enabled"`
}

type jsonStepTable struct {
	Source string     `json:"source"`
	Steps  []jsonStep `json:"steps"`
}

type jsonTool struct {
	Step       string `json:"step"`
	Executable string `json:"executable"`
	Path       string `json:"path,omitempty"`
	Found      bool   `json:"found"`
}

func (jr *JSONReporter) Write(w io.Writer, o *runner.Outcome) error {
	out := jsonOutput{
		RunID:      o.RunID,
		Root:       o.Root,
		Status:     string(o.Status),
		FailedStep: o.FailedStep,
		ExitCode:   o.ExitCode(),
		StartTime:  o.StartTime.Format(time.RFC3339),
		EndTime:    o.EndTime.Format(time.RFC3339),
		Duration:   o.Duration().String(),
		Results:    []jsonResult{},
	}

	for _, r := range o.Results() {
		out.Results = append(out.Results, jsonResult{
			Step:     r.StepName,
			ExitCode: r.ExitCode,
			Duration: r.Duration.String(),
		})
	}

	return encode(w, out)
}

// WriteSteps emits a step table, including disabled steps.
func (jr *JSONReporter) WriteSteps(w io.Writer, source string, steps []runner.Step) error {
	out := jsonStepTable{Source: source, Steps: make([]jsonStep, 0, len(steps))}
	for _, s := range steps {
		args := s.Args
		if args == nil {
			args = []string{}
		}
		out.Steps = append(out.Steps, jsonStep{
			Name:        s.Name,
			Description: s.Description,
			Dir:         s.Dir,
			Command:     s.Command,
			Args:        args,
			Enabled:     s.Enabled,
		})
	}
	return encode(w, out)
}

// WriteTools emits the result of a tool check.
func (jr *JSONReporter) WriteTools(w io.Writer, statuses []toolcheck.Status) error {
	out := make([]jsonTool, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, jsonTool{Step: s.Step, Executable: s.Executable, Path: s.Path, Found: s.Found()})
	}
	return encode(w, out)
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
