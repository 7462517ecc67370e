package copilotclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	healthEndpointPathConstant        = "/health"
	executeEndpointPathConstant       = "/api/copilot/execute"
	commitAndPushEndpointPathConstant = "/api/git/commit-and-push"
	workflowEndpointPathConstant      = "/api/workflow/copilot-commit-push"
	apiKeyHeaderNameConstant          = "X-API-Key"
	contentTypeHeaderNameConstant     = "Content-Type"
	jsonContentTypeValueConstant      = "application/json"
	baseURLTrimCharactersConstant     = "/"
	baseURLRequiredMessageConstant    = "client requires a base URL"
	requestBuildErrorTemplateConstant = "unable to build request: %w"
	requestSendErrorTemplateConstant  = "request failed: %w"
	responseReadErrorTemplateConstant = "unable to read response: %w"
	responseParseErrorTemplateConst   = "unable to parse response: %w"
	apiErrorTemplateConstant          = "server returned status %d: %s"
)

// ErrBaseURLRequired reports a client constructed without a server address.
var ErrBaseURLRequired = errors.New(baseURLRequiredMessageConstant)

// ClientOptions carries optional settings for the client.
type ClientOptions struct {
	APIKey     string
	HTTPClient *http.Client
}

// Client calls the copilot-server JSON endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs a Client targeting the given base URL, for example
// http://localhost:5000. A nil HTTP client falls back to http.DefaultClient.
func NewClient(baseURL string, options ClientOptions) (*Client, error) {
	trimmedBaseURL := strings.TrimRight(strings.TrimSpace(baseURL), baseURLTrimCharactersConstant)
	if len(trimmedBaseURL) == 0 {
		return nil, ErrBaseURLRequired
	}

	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{baseURL: trimmedBaseURL, apiKey: options.APIKey, httpClient: httpClient}, nil
}

// StepResult mirrors a single command outcome reported by the server.
type StepResult struct {
	Success        bool   `json:"success"`
	StandardOutput string `json:"stdout"`
	StandardError  string `json:"stderr"`
	ExitCode       int    `json:"exit_code"`
}

// HealthStatus reports server liveness.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// GenerateRequest asks the server to run the assistant inside a repository.
type GenerateRequest struct {
	RepositoryName string   `json:"repo_name"`
	Prompt         string   `json:"prompt"`
	Files          []string `json:"files,omitempty"`
}

// GenerateResult reports an assistant execution together with the working
// tree status collected afterwards.
type GenerateResult struct {
	Success   bool   `json:"success"`
	Output    string `json:"output"`
	Error     string `json:"error"`
	GitStatus string `json:"git_status"`
	Timestamp string `json:"timestamp"`
}

// CommitAndPushRequest asks the server to stage, commit, and push changes.
type CommitAndPushRequest struct {
	RepositoryName string   `json:"repo_name"`
	CommitMessage  string   `json:"commit_message"`
	Branch         string   `json:"branch,omitempty"`
	Files          []string `json:"files,omitempty"`
}

// CommitAndPushStepOutputs echoes the captured stdout of each completed step.
type CommitAndPushStepOutputs struct {
	Add    string `json:"add"`
	Commit string `json:"commit"`
	Push   string `json:"push"`
}

// CommitAndPushResult reports a completed commit-and-push pipeline.
type CommitAndPushResult struct {
	Success   bool                     `json:"success"`
	Message   string                   `json:"message"`
	Results   CommitAndPushStepOutputs `json:"results"`
	Timestamp string                   `json:"timestamp"`
}

// WorkflowRequest asks the server to run the full generate, commit, and push
// pipeline.
type WorkflowRequest struct {
	RepositoryName string   `json:"repo_name"`
	Prompt         string   `json:"prompt"`
	CommitMessage  string   `json:"commit_message"`
	Branch         string   `json:"branch,omitempty"`
	Files          []string `json:"files,omitempty"`
}

// WorkflowResult reports a completed workflow with per-step outcomes.
type WorkflowResult struct {
	Success         bool                  `json:"success"`
	Message         string                `json:"message"`
	WorkflowResults map[string]StepResult `json:"workflow_results"`
	Timestamp       string                `json:"timestamp"`
}

// APIError reports a non-success HTTP status together with the error body the
// server returned.
type APIError struct {
	StatusCode      int
	Message         string                `json:"error"`
	Details         string                `json:"details"`
	Results         map[string]StepResult `json:"results"`
	WorkflowResults map[string]StepResult `json:"workflow_results"`
}

// Error describes the failure using the server's reported message.
func (apiError *APIError) Error() string {
	return fmt.Sprintf(apiErrorTemplateConstant, apiError.StatusCode, apiError.Message)
}

// HealthCheck verifies the server is reachable and healthy.
func (client *Client) HealthCheck(executionContext context.Context) (HealthStatus, error) {
	var healthStatus HealthStatus
	callError := client.call(executionContext, http.MethodGet, healthEndpointPathConstant, nil, &healthStatus)
	return healthStatus, callError
}

// ExecuteCopilot runs the assistant inside the named repository.
func (client *Client) ExecuteCopilot(executionContext context.Context, request GenerateRequest) (GenerateResult, error) {
	var generateResult GenerateResult
	callError := client.call(executionContext, http.MethodPost, executeEndpointPathConstant, request, &generateResult)
	return generateResult, callError
}

// CommitAndPush stages, commits, and pushes existing changes.
func (client *Client) CommitAndPush(executionContext context.Context, request CommitAndPushRequest) (CommitAndPushResult, error) {
	var commitAndPushResult CommitAndPushResult
	callError := client.call(executionContext, http.MethodPost, commitAndPushEndpointPathConstant, request, &commitAndPushResult)
	return commitAndPushResult, callError
}

// RunWorkflow executes the full generate, commit, and push pipeline.
func (client *Client) RunWorkflow(executionContext context.Context, request WorkflowRequest) (WorkflowResult, error) {
	var workflowResult WorkflowResult
	callError := client.call(executionContext, http.MethodPost, workflowEndpointPathConstant, request, &workflowResult)
	return workflowResult, callError
}

func (client *Client) call(executionContext context.Context, httpMethod string, endpointPath string, requestBody any, responseTarget any) error {
	var bodyReader io.Reader
	if requestBody != nil {
		encodedBody, encodingError := json.Marshal(requestBody)
		if encodingError != nil {
			return fmt.Errorf(requestBuildErrorTemplateConstant, encodingError)
		}
		bodyReader = bytes.NewReader(encodedBody)
	}

	httpRequest, requestError := http.NewRequestWithContext(executionContext, httpMethod, client.baseURL+endpointPath, bodyReader)
	if requestError != nil {
		return fmt.Errorf(requestBuildErrorTemplateConstant, requestError)
	}

	httpRequest.Header.Set(contentTypeHeaderNameConstant, jsonContentTypeValueConstant)
	if len(client.apiKey) > 0 {
		httpRequest.Header.Set(apiKeyHeaderNameConstant, client.apiKey)
	}

	httpResponse, sendError := client.httpClient.Do(httpRequest)
	if sendError != nil {
		return fmt.Errorf(requestSendErrorTemplateConstant, sendError)
	}
	defer httpResponse.Body.Close()

	responseBody, readError := io.ReadAll(httpResponse.Body)
	if readError != nil {
		return fmt.Errorf(responseReadErrorTemplateConstant, readError)
	}

	if httpResponse.StatusCode < http.StatusOK || httpResponse.StatusCode >= http.StatusMultipleChoices {
		apiError := &APIError{StatusCode: httpResponse.StatusCode}
		if unmarshalError := json.Unmarshal(responseBody, apiError); unmarshalError != nil {
			apiError.Message = strings.TrimSpace(string(responseBody))
		}
		return apiError
	}

	if responseTarget == nil {
		return nil
	}
	if unmarshalError := json.Unmarshal(responseBody, responseTarget); unmarshalError != nil {
		return fmt.Errorf(responseParseErrorTemplateConst, unmarshalError)
	}

	return nil
}
