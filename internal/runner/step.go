package runner

import (
	"slices"
	"strings"
)

// Step is one formatting task delegated to an external tool.
type Step struct {
	// Name identifies the step in logs, reports and errors.
	Name string
	// Description is free text shown by `monofmt list`.
	Description string
	// Dir is the working directory, relative to the repository root.
	Dir string
	// Command is the executable followed by any fixed sub-command words. Never empty.
	Command []string
	// Args are appended to Command.
	Args []string
	// Enabled steps run; disabled steps stay in the table but are skipped.
	Enabled bool
}

// Argv returns the full argument vector, Command followed by Args.
func (s Step) Argv() []string {
	argv := make([]string, 0, len(s.Command)+len(s.Args))
	argv = append(argv, s.Command...)
	return append(argv, s.Args...)
}

// Executable returns the program the step launches.
func (s Step) Executable() string {
	if len(s.Command) == 0 {
		return ""
	}
	return s.Command[0]
}

// CommandLine renders Argv for humans.
func (s Step) CommandLine() string {
	return strings.Join(s.Argv(), " ")
}

// Enabled returns the enabled steps of a table in their declared order.
func Enabled(steps []Step) []Step {
	return slices.DeleteFunc(slices.Clone(steps), func(s Step) bool {
		return !s.Enabled
	})
}
