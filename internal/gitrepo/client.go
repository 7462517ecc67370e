package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/copilot_server/internal/execshell"
)

const (
	statusSubcommandConstant             = "status"
	statusPorcelainFlagConstant          = "--porcelain"
	addSubcommandConstant                = "add"
	addAllFlagConstant                   = "-A"
	commitSubcommandConstant             = "commit"
	commitMessageFlagConstant            = "-m"
	pushSubcommandConstant               = "push"
	checkoutSubcommandConstant           = "checkout"
	checkoutCreateFlagConstant           = "-b"
	defaultRemoteNameConstant            = "origin"
	executorNotConfiguredMessageConstant = "git executor not configured"
	commitMessageFieldNameConstant       = "commit_message"
	branchFieldNameConstant              = "branch"
	requiredValueMessageConstant         = "value required"
	invalidInputTemplateConstant         = "%s: %s"
)

// DefaultRemoteName is the remote targeted when a push names none.
const DefaultRemoteName = defaultRemoteNameConstant

// GitExecutor is the minimal interface required from execshell.ShellExecutor.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.CommandResult, error)
}

// ErrExecutorNotConfigured indicates the client was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputTemplateConstant, inputError.FieldName, inputError.Message)
}

// Client coordinates version-control invocations through execshell.
//
// Every operation runs inside the supplied working directory and returns the
// normalized CommandResult: a non-zero exit (for example committing with
// nothing staged) is reported through the result, not as an error.
type Client struct {
	executor GitExecutor
}

// NewClient constructs a Client using the supplied executor.
func NewClient(executor GitExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// Status reports pending changes in machine-readable porcelain form.
func (client *Client) Status(executionContext context.Context, repositoryPath string) (execshell.CommandResult, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{statusSubcommandConstant, statusPorcelainFlagConstant},
		WorkingDirectory: repositoryPath,
	}
	return client.executor.ExecuteGit(executionContext, commandDetails)
}

// Stage stages the named files, or every pending change when none are named.
func (client *Client) Stage(executionContext context.Context, repositoryPath string, files []string) (execshell.CommandResult, error) {
	stageArguments := []string{addSubcommandConstant}
	if len(files) > 0 {
		stageArguments = append(stageArguments, files...)
	} else {
		stageArguments = append(stageArguments, addAllFlagConstant)
	}

	commandDetails := execshell.CommandDetails{Arguments: stageArguments, WorkingDirectory: repositoryPath}
	return client.executor.ExecuteGit(executionContext, commandDetails)
}

// Commit records staged changes with the supplied message. Committing with
// nothing staged fails through the underlying tool's own exit code.
func (client *Client) Commit(executionContext context.Context, repositoryPath string, commitMessage string) (execshell.CommandResult, error) {
	if len(strings.TrimSpace(commitMessage)) == 0 {
		return execshell.CommandResult{}, InvalidInputError{FieldName: commitMessageFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        []string{commitSubcommandConstant, commitMessageFlagConstant, commitMessage},
		WorkingDirectory: repositoryPath,
	}
	return client.executor.ExecuteGit(executionContext, commandDetails)
}

// Push publishes commits to the named remote, defaulting to origin, and to
// the named branch when one is supplied.
func (client *Client) Push(executionContext context.Context, repositoryPath string, remoteName string, branchName string) (execshell.CommandResult, error) {
	resolvedRemoteName := strings.TrimSpace(remoteName)
	if len(resolvedRemoteName) == 0 {
		resolvedRemoteName = DefaultRemoteName
	}

	pushArguments := []string{pushSubcommandConstant, resolvedRemoteName}
	if len(strings.TrimSpace(branchName)) > 0 {
		pushArguments = append(pushArguments, branchName)
	}

	commandDetails := execshell.CommandDetails{Arguments: pushArguments, WorkingDirectory: repositoryPath}
	return client.executor.ExecuteGit(executionContext, commandDetails)
}

// CheckoutBranch switches the checkout to the named branch, creating it first
// when requested.
func (client *Client) CheckoutBranch(executionContext context.Context, repositoryPath string, branchName string, createBranch bool) (execshell.CommandResult, error) {
	if len(strings.TrimSpace(branchName)) == 0 {
		return execshell.CommandResult{}, InvalidInputError{FieldName: branchFieldNameConstant, Message: requiredValueMessageConstant}
	}

	checkoutArguments := []string{checkoutSubcommandConstant}
	if createBranch {
		checkoutArguments = append(checkoutArguments, checkoutCreateFlagConstant)
	}
	checkoutArguments = append(checkoutArguments, branchName)

	commandDetails := execshell.CommandDetails{Arguments: checkoutArguments, WorkingDirectory: repositoryPath}
	return client.executor.ExecuteGit(executionContext, commandDetails)
}
