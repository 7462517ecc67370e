package copilot

import (
	"fmt"
	"strings"
)

const (
	filesFlagConstant            = "--files"
	fileListSeparatorConstant    = ","
	promptFieldNameConstant      = "prompt"
	requiredValueMessageConstant = "value required"
	invalidInputTemplateConstant = "%s: %s"
)

// Default invocation of the assistant CLI. The calling convention is an
// assumption about the external tool's syntax rather than a verified
// contract, which is why command construction sits behind CommandBuilder and
// the prefix is configurable.
var defaultCommandPrefix = []string{"gh", "copilot", "suggest"}

// CommandBuilder produces the argument vector used to invoke the assistant CLI.
type CommandBuilder interface {
	// BuildSuggestCommand assembles the full argument vector, executable
	// first, for a generation request.
	BuildSuggestCommand(prompt string, files []string) ([]string, error)
}

// InvalidInputError surfaces validation issues for builder inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputTemplateConstant, inputError.FieldName, inputError.Message)
}

// SuggestCommandBuilder assembles assistant invocations from a configured
// command prefix, appending an optional comma-joined file list flag and the
// prompt as the final positional argument.
type SuggestCommandBuilder struct {
	commandPrefix []string
}

// NewSuggestCommandBuilder constructs a builder using the supplied command
// prefix, falling back to the default assistant invocation when none is given.
func NewSuggestCommandBuilder(commandPrefix []string) *SuggestCommandBuilder {
	resolvedPrefix := make([]string, 0, len(commandPrefix))
	for _, prefixElement := range commandPrefix {
		trimmedElement := strings.TrimSpace(prefixElement)
		if len(trimmedElement) > 0 {
			resolvedPrefix = append(resolvedPrefix, trimmedElement)
		}
	}
	if len(resolvedPrefix) == 0 {
		resolvedPrefix = append(resolvedPrefix, defaultCommandPrefix...)
	}

	return &SuggestCommandBuilder{commandPrefix: resolvedPrefix}
}

// BuildSuggestCommand implements CommandBuilder.
func (builder *SuggestCommandBuilder) BuildSuggestCommand(prompt string, files []string) ([]string, error) {
	if len(strings.TrimSpace(prompt)) == 0 {
		return nil, InvalidInputError{FieldName: promptFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandArguments := append([]string{}, builder.commandPrefix...)
	if len(files) > 0 {
		commandArguments = append(commandArguments, filesFlagConstant, strings.Join(files, fileListSeparatorConstant))
	}
	commandArguments = append(commandArguments, prompt)

	return commandArguments, nil
}
