package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/andyballingall/monofmt/internal/runner"
	"github.com/andyballingall/monofmt/internal/toolcheck"
)

// TextReporter implements runner.Reporter for plain text output.
type TextReporter struct {
	UseColour bool
}

var (
	styleOK      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleFail    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleTitle   = lipgloss.NewStyle().Bold(true)
	styleOKBold  = styleOK.Bold(true)
	styleBadBold = styleFail.Bold(true)
)

// cs renders s with the given style if colourisation is enabled.
func (tr *TextReporter) cs(style lipgloss.Style, s string) string {
	if !tr.UseColour {
		return s
	}
	return style.Render(s)
}

// Write prints one line per executed step followed by a summary.
func (tr *TextReporter) Write(w io.Writer, o *runner.Outcome) error {
	divider := strings.Repeat("-", 40)

	fmt.Fprintf(w, "%s\n", divider)
	for _, r := range o.Results() {
		status := tr.cs(styleOK, "[ OK ]")
		if !r.Success() {
			status = tr.cs(styleFail, "[FAIL]")
		}
		fmt.Fprintf(w, "%s %-16s %s\n", status, r.StepName,
			tr.cs(styleMuted, fmt.Sprintf("exit %d, %s", r.ExitCode, r.Duration.Round(time.Millisecond))))
	}
	fmt.Fprintf(w, "%s\n", divider)

	label := tr.cs(styleTitle, "Format summary: ")
	if o.Status == runner.StatusSuccess {
		stats := fmt.Sprintf("%d steps succeeded in %s", len(o.Results()), o.Duration().Round(time.Millisecond))
		fmt.Fprintf(w, "%s%s\n", label, tr.cs(styleOKBold, stats))
	} else {
		stats := fmt.Sprintf("stopped at %s (exit %d)", o.FailedStep, o.ExitCode())
		fmt.Fprintf(w, "%s%s\n", label, tr.cs(styleBadBold, stats))
	}
	fmt.Fprintf(w, "%s\n", divider)

	return nil
}

// WriteSteps prints a step table, including disabled steps.
func (tr *TextReporter) WriteSteps(w io.Writer, source string, steps []runner.Step) error {
	fmt.Fprintf(w, "%s %s\n", tr.cs(styleTitle, "Step table:"), tr.cs(styleMuted, source))
	for i, s := range steps {
		name := s.Name
		if !s.Enabled {
			name += " (disabled)"
		}
		fmt.Fprintf(w, "%2d. %s\n", i+1, tr.cs(styleTitle, name))
		if s.Description != "" {
			fmt.Fprintf(w, "    %s\n", s.Description)
		}
		fmt.Fprintf(w, "    %s %s\n", tr.cs(styleMuted, "dir:"), s.Dir)
		fmt.Fprintf(w, "    %s %s\n", tr.cs(styleMuted, "run:"), s.CommandLine())
	}
	return nil
}

// WriteTools prints where each step's tool was found.
func (tr *TextReporter) WriteTools(w io.Writer, statuses []toolcheck.Status) error {
	for _, s := range statuses {
		if s.Found() {
			fmt.Fprintf(w, "%s %-16s %s\n", tr.cs(styleOK, "✓"), s.Step, tr.cs(styleMuted, s.Path))
		} else {
			fmt.Fprintf(w, "%s %-16s %s\n", tr.cs(styleFail, "✗"), s.Step, s.Executable+" not found")
		}
	}
	return nil
}
