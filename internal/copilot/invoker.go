package copilot

import (
	"context"
	"errors"
	"time"

	"github.com/temirov/copilot_server/internal/execshell"
)

const (
	executorNotConfiguredMessageConstant = "copilot executor not configured"
	builderNotConfiguredMessageConstant  = "copilot command builder not configured"
)

// Exported sentinel errors describing invoker misconfiguration.
var (
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	ErrBuilderNotConfigured  = errors.New(builderNotConfiguredMessageConstant)
)

// CommandExecutor is the minimal interface required from execshell.ShellExecutor.
type CommandExecutor interface {
	ExecuteCommand(executionContext context.Context, command execshell.ShellCommand) (execshell.CommandResult, error)
}

// Invoker runs the assistant CLI inside a repository checkout, bounding every
// generation with the configured timeout.
type Invoker struct {
	executor CommandExecutor
	builder  CommandBuilder
	timeout  time.Duration
}

// NewInvoker constructs an Invoker. A non-positive timeout falls back to the
// executor's default command timeout.
func NewInvoker(executor CommandExecutor, builder CommandBuilder, timeout time.Duration) (*Invoker, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if builder == nil {
		return nil, ErrBuilderNotConfigured
	}

	resolvedTimeout := timeout
	if resolvedTimeout <= 0 {
		resolvedTimeout = execshell.DefaultCommandTimeout
	}

	return &Invoker{executor: executor, builder: builder, timeout: resolvedTimeout}, nil
}

// Generate invokes the assistant CLI with the supplied prompt and optional
// file list, running inside the repository checkout.
func (invoker *Invoker) Generate(executionContext context.Context, repositoryPath string, prompt string, files []string) (execshell.CommandResult, error) {
	commandArguments, buildError := invoker.builder.BuildSuggestCommand(prompt, files)
	if buildError != nil {
		return execshell.CommandResult{}, buildError
	}

	assistantCommand := execshell.ShellCommand{
		Name: execshell.CommandName(commandArguments[0]),
		Details: execshell.CommandDetails{
			Arguments:        commandArguments[1:],
			WorkingDirectory: repositoryPath,
			Timeout:          invoker.timeout,
		},
	}

	return invoker.executor.ExecuteCommand(executionContext, assistantCommand)
}
