package execshell

import (
	"errors"
	"fmt"
	"time"
)

const (
	gitCommandNameConstant                   = "git"
	timedOutExitCodeConstant                 = -1
	commandNameMissingMessageConstant        = "command name not provided"
	loggerNotConfiguredMessageConstant       = "shell executor requires a logger"
	runnerNotConfiguredMessageConstant       = "shell executor requires a command runner"
	commandLaunchFailureTemplateConstant     = "%s could not be executed: %s"
	defaultCommandTimeoutDurationConstant    = 5 * time.Minute
	commandTimeoutMessageTemplateConstant    = "Command timed out after %s"
	unknownLaunchFailureCauseMessageConstant = "unknown error"
)

// CommandName identifies an external executable invoked through the shell executor.
type CommandName string

// CommandGit names the version-control binary used for repository operations.
const CommandGit CommandName = CommandName(gitCommandNameConstant)

// TimedOutExitCode is the reserved exit code reported when a process never ran
// to completion, either because it could not be launched or because it
// exceeded its timeout.
const TimedOutExitCode = timedOutExitCodeConstant

// DefaultCommandTimeout bounds command execution when no explicit timeout is configured.
const DefaultCommandTimeout = defaultCommandTimeoutDurationConstant

// CommandDetails describes the invocation parameters for a shell command.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
	Timeout              time.Duration
}

// ShellCommand pairs an executable name with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the raw outcome reported by a CommandRunner.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandResult is the normalized outcome produced for every command
// invocation. Timeouts and launch failures are folded into the same shape as
// a normal exit so callers never need a second error channel for process
// outcomes.
type CommandResult struct {
	Success        bool   `json:"success"`
	StandardOutput string `json:"stdout"`
	StandardError  string `json:"stderr"`
	ExitCode       int    `json:"exit_code"`
}

// Exported sentinel errors describing executor misconfiguration.
var (
	ErrLoggerNotConfigured        = errors.New(loggerNotConfiguredMessageConstant)
	ErrCommandRunnerNotConfigured = errors.New(runnerNotConfiguredMessageConstant)
	ErrCommandNameMissing         = errors.New(commandNameMissingMessageConstant)
)

// CommandExecutionError reports a command that could not be launched at all.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the launch failure.
func (failure CommandExecutionError) Error() string {
	causeMessage := unknownLaunchFailureCauseMessageConstant
	if failure.Cause != nil {
		causeMessage = failure.Cause.Error()
	}
	return fmt.Sprintf(commandLaunchFailureTemplateConstant, failure.Command.Name, causeMessage)
}

// Unwrap exposes the underlying launch failure.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// TimeoutMessage renders the stderr text reported for a timed-out command.
func TimeoutMessage(timeout time.Duration) string {
	return fmt.Sprintf(commandTimeoutMessageTemplateConstant, timeout)
}
