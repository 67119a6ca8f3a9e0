// Package runner executes an ordered table of external formatting steps.
//
// A run evaluates the privilege guard, resolves the repository root once, loads
// the step table for that root and then launches each enabled step in declared
// order, waiting for it to exit before considering the next. The first step
// that cannot be launched or exits non-zero ends the run; later steps are never
// started. The resulting Outcome reduces to the process exit code via ExitCode.
package runner
