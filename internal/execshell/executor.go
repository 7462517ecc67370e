package execshell

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	commandStartedMessageConstant   = "command started"
	commandCompletedMessageConstant = "command completed"
	commandFailedMessageConstant    = "command failed"
	commandNotRunMessageConstant    = "command did not run"
	logFieldCommandConstant         = "command"
	logFieldArgumentsConstant       = "arguments"
	logFieldWorkingDirectoryField   = "working_directory"
	logFieldExitCodeConstant        = "exit_code"
	logFieldTimeoutConstant         = "timeout"
	logFieldStandardErrorConstant   = "stderr"
	logFieldDurationConstant        = "duration"
)

// CommandRunner executes a prepared shell command and reports its raw outcome.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// ShellExecutor runs external commands through a CommandRunner, applying a
// per-command timeout and normalizing every process outcome into a
// CommandResult. Exit code TimedOutExitCode is reserved for commands that
// never ran to completion: timeouts and launch failures both report it, with
// the cause captured in the result's standard error text.
type ShellExecutor struct {
	logger   *zap.Logger
	runner   CommandRunner
	observer CommandEventObserver
}

// NewShellExecutor constructs a ShellExecutor with the supplied collaborators.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	return &ShellExecutor{logger: logger, runner: runner, observer: noopCommandEventObserver{}}, nil
}

// SetCommandEventObserver replaces the observer notified about command lifecycle events.
func (executor *ShellExecutor) SetCommandEventObserver(observer CommandEventObserver) {
	if observer == nil {
		executor.observer = noopCommandEventObserver{}
		return
	}
	executor.observer = observer
}

// ExecuteGit runs the version-control binary with the supplied details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (CommandResult, error) {
	return executor.ExecuteCommand(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// ExecuteCommand runs an arbitrary command and normalizes its outcome.
//
// The returned error only reports executor misuse (a missing command name);
// process failures of every kind are expressed through the CommandResult.
func (executor *ShellExecutor) ExecuteCommand(executionContext context.Context, command ShellCommand) (CommandResult, error) {
	if len(strings.TrimSpace(string(command.Name))) == 0 {
		return CommandResult{}, ErrCommandNameMissing
	}

	commandTimeout := command.Details.Timeout
	if commandTimeout <= 0 {
		commandTimeout = DefaultCommandTimeout
	}

	timeoutContext, cancelTimeout := context.WithTimeout(executionContext, commandTimeout)
	defer cancelTimeout()

	executor.observer.CommandStarted(command)
	executor.logger.Debug(
		commandStartedMessageConstant,
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryField, command.Details.WorkingDirectory),
		zap.Duration(logFieldTimeoutConstant, commandTimeout),
	)

	executionStart := time.Now()
	executionResult, runError := executor.runner.Run(timeoutContext, command)
	executionDuration := time.Since(executionStart)

	if errors.Is(timeoutContext.Err(), context.DeadlineExceeded) {
		timeoutResult := CommandResult{
			Success:       false,
			StandardError: TimeoutMessage(commandTimeout),
			ExitCode:      TimedOutExitCode,
		}
		executor.observer.CommandExecutionFailed(command, context.DeadlineExceeded)
		executor.logger.Warn(
			commandNotRunMessageConstant,
			zap.String(logFieldCommandConstant, string(command.Name)),
			zap.Duration(logFieldTimeoutConstant, commandTimeout),
			zap.String(logFieldStandardErrorConstant, timeoutResult.StandardError),
		)
		return timeoutResult, nil
	}

	if runError != nil {
		launchFailure := CommandExecutionError{Command: command, Cause: runError}
		launchResult := CommandResult{
			Success:       false,
			StandardError: runError.Error(),
			ExitCode:      TimedOutExitCode,
		}
		executor.observer.CommandExecutionFailed(command, launchFailure)
		executor.logger.Warn(
			commandNotRunMessageConstant,
			zap.String(logFieldCommandConstant, string(command.Name)),
			zap.String(logFieldStandardErrorConstant, launchResult.StandardError),
		)
		return launchResult, nil
	}

	commandResult := CommandResult{
		Success:        executionResult.ExitCode == 0,
		StandardOutput: executionResult.StandardOutput,
		StandardError:  executionResult.StandardError,
		ExitCode:       executionResult.ExitCode,
	}

	executor.observer.CommandCompleted(command, commandResult)

	completionMessage := commandCompletedMessageConstant
	completionLevelLogger := executor.logger.Debug
	if !commandResult.Success {
		completionMessage = commandFailedMessageConstant
		completionLevelLogger = executor.logger.Warn
	}
	completionLevelLogger(
		completionMessage,
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Int(logFieldExitCodeConstant, commandResult.ExitCode),
		zap.Duration(logFieldDurationConstant, executionDuration),
	)

	return commandResult, nil
}
