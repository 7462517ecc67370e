// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging and timeouts via ShellExecutor, exposes
// OSCommandRunner for default process execution, and normalizes exits,
// timeouts, and launch failures into a single CommandResult shape so callers
// running git and assistant CLIs never handle process outcomes as errors.
package execshell
