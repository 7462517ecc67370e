package workflow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/temirov/copilot_server/internal/execshell"
)

const (
	stepCopilotNameConstant             = "copilot"
	stepAddNameConstant                 = "add"
	stepCommitNameConstant              = "commit"
	stepPushNameConstant                = "push"
	stepFailureMessageTemplateConstant  = "workflow step %s failed: %s"
	stepFailureExitCodeTemplateConstant = "exit code %d"
	resultsObjectOpenTokenConstant      = "{"
	resultsObjectCloseTokenConstant     = "}"
	resultsObjectSeparatorTokenConstant = ","
	resultsObjectKeyValueTokenConstant  = ":"
)

// StepName labels one workflow step in accumulated results and responses.
type StepName string

// Workflow step names in pipeline order.
const (
	StepCopilot StepName = StepName(stepCopilotNameConstant)
	StepAdd     StepName = StepName(stepAddNameConstant)
	StepCommit  StepName = StepName(stepCommitNameConstant)
	StepPush    StepName = StepName(stepPushNameConstant)
)

// Results accumulates per-step command results in execution order. The JSON
// encoding preserves that order so responses list steps as they ran.
type Results struct {
	stepOrder   []StepName
	stepResults map[StepName]execshell.CommandResult
}

// NewResults constructs an empty Results accumulator.
func NewResults() *Results {
	return &Results{stepResults: map[StepName]execshell.CommandResult{}}
}

// Append records the result of one completed step.
func (results *Results) Append(step StepName, result execshell.CommandResult) {
	if _, alreadyRecorded := results.stepResults[step]; !alreadyRecorded {
		results.stepOrder = append(results.stepOrder, step)
	}
	results.stepResults[step] = result
}

// Get returns the recorded result for the named step.
func (results *Results) Get(step StepName) (execshell.CommandResult, bool) {
	stepResult, recorded := results.stepResults[step]
	return stepResult, recorded
}

// Steps lists recorded steps in execution order.
func (results *Results) Steps() []StepName {
	return append([]StepName{}, results.stepOrder...)
}

// Len reports the number of recorded steps.
func (results *Results) Len() int {
	return len(results.stepOrder)
}

// MarshalJSON encodes the results as a JSON object keyed by step name,
// preserving execution order.
func (results *Results) MarshalJSON() ([]byte, error) {
	var encodedObject bytes.Buffer
	encodedObject.WriteString(resultsObjectOpenTokenConstant)

	for stepIndex, step := range results.stepOrder {
		if stepIndex > 0 {
			encodedObject.WriteString(resultsObjectSeparatorTokenConstant)
		}

		encodedKey, keyEncodingError := json.Marshal(string(step))
		if keyEncodingError != nil {
			return nil, keyEncodingError
		}
		encodedObject.Write(encodedKey)
		encodedObject.WriteString(resultsObjectKeyValueTokenConstant)

		encodedResult, resultEncodingError := json.Marshal(results.stepResults[step])
		if resultEncodingError != nil {
			return nil, resultEncodingError
		}
		encodedObject.Write(encodedResult)
	}

	encodedObject.WriteString(resultsObjectCloseTokenConstant)
	return encodedObject.Bytes(), nil
}

// StepFailureError marks the first failed step of a workflow alongside its
// captured result. The accumulated partial results travel separately so
// callers can report everything that ran before the failure.
type StepFailureError struct {
	Step   StepName
	Result execshell.CommandResult
}

// Error describes the failed step, preferring captured stderr over the exit code.
func (failure StepFailureError) Error() string {
	failureDetail := strings.TrimSpace(failure.Result.StandardError)
	if len(failureDetail) == 0 {
		failureDetail = fmt.Sprintf(stepFailureExitCodeTemplateConstant, failure.Result.ExitCode)
	}
	return fmt.Sprintf(stepFailureMessageTemplateConstant, failure.Step, failureDetail)
}
