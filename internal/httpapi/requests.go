package httpapi

import (
	"fmt"
	"strings"
)

const (
	repoNameRequiredMessageConstant      = "repo_name is required"
	promptRequiredMessageConstant        = "prompt is required"
	commitMessageRequiredMessageConstant = "commit_message is required"
	repositoryNotAllowedTemplateConstant = "Repository %s is not allowed"
)

// WorkflowRequest is the JSON body accepted by every workflow endpoint.
// Which fields are required depends on the endpoint handling the request.
type WorkflowRequest struct {
	RepoName      string   `json:"repo_name"`
	Prompt        string   `json:"prompt"`
	CommitMessage string   `json:"commit_message"`
	Branch        string   `json:"branch"`
	Files         []string `json:"files"`
}

// RequestValidationError reports a request rejected before any filesystem
// access or process launch.
type RequestValidationError struct {
	Message string
}

// Error returns the validation message.
func (validationError RequestValidationError) Error() string {
	return validationError.Message
}

// requestFieldRequirements selects which optional WorkflowRequest fields an
// endpoint treats as mandatory.
type requestFieldRequirements struct {
	prompt        bool
	commitMessage bool
}

// validateWorkflowRequest enforces required fields and the repository
// allow-list. It is a pure string check: nothing on the filesystem is
// consulted and no subprocess is spawned.
func validateWorkflowRequest(request WorkflowRequest, requirements requestFieldRequirements, allowedRepositories []string) error {
	if len(strings.TrimSpace(request.RepoName)) == 0 {
		return RequestValidationError{Message: repoNameRequiredMessageConstant}
	}

	if len(allowedRepositories) > 0 && !repositoryNameAllowed(request.RepoName, allowedRepositories) {
		return RequestValidationError{Message: fmt.Sprintf(repositoryNotAllowedTemplateConstant, request.RepoName)}
	}

	if requirements.prompt && len(strings.TrimSpace(request.Prompt)) == 0 {
		return RequestValidationError{Message: promptRequiredMessageConstant}
	}

	if requirements.commitMessage && len(strings.TrimSpace(request.CommitMessage)) == 0 {
		return RequestValidationError{Message: commitMessageRequiredMessageConstant}
	}

	return nil
}

func repositoryNameAllowed(repositoryName string, allowedRepositories []string) bool {
	for _, allowedName := range allowedRepositories {
		if strings.TrimSpace(allowedName) == repositoryName {
			return true
		}
	}
	return false
}
