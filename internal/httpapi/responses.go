package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/copilot_server/internal/workflow"
)

const (
	contentTypeHeaderNameConstant      = "Content-Type"
	jsonContentTypeValueConstant       = "application/json"
	healthyStatusValueConstant         = "healthy"
	responseEncodingFailedMessageConst = "failed to encode response"
)

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// GenerateResponse is the body returned by the assistant execution endpoint.
// Success mirrors the assistant invocation's own outcome; the request itself
// succeeds whenever validation passes.
type GenerateResponse struct {
	Success   bool   `json:"success"`
	Output    string `json:"output"`
	Error     string `json:"error"`
	GitStatus string `json:"git_status"`
	Timestamp string `json:"timestamp"`
}

// CommitAndPushStepOutputs echoes the captured stdout of each completed step.
type CommitAndPushStepOutputs struct {
	Add    string `json:"add"`
	Commit string `json:"commit"`
	Push   string `json:"push"`
}

// CommitAndPushResponse is the success body for the commit-and-push endpoint.
type CommitAndPushResponse struct {
	Success   bool                     `json:"success"`
	Message   string                   `json:"message"`
	Results   CommitAndPushStepOutputs `json:"results"`
	Timestamp string                   `json:"timestamp"`
}

// WorkflowResponse is the success body for the full workflow endpoint.
type WorkflowResponse struct {
	Success         bool              `json:"success"`
	Message         string            `json:"message"`
	WorkflowResults *workflow.Results `json:"workflow_results"`
	Timestamp       string            `json:"timestamp"`
}

// ErrorResponse is the failure body shared by every endpoint. Partial step
// results accompany workflow failures so callers can see everything that ran
// before the pipeline stopped.
type ErrorResponse struct {
	Success         bool              `json:"success"`
	Error           string            `json:"error"`
	Details         string            `json:"details,omitempty"`
	Results         *workflow.Results `json:"results,omitempty"`
	WorkflowResults *workflow.Results `json:"workflow_results,omitempty"`
}

func currentTimestamp() string {
	return time.Now().Format(time.RFC3339)
}

func (server *Server) writeJSONResponse(responseWriter http.ResponseWriter, statusCode int, responseBody any) {
	responseWriter.Header().Set(contentTypeHeaderNameConstant, jsonContentTypeValueConstant)
	responseWriter.WriteHeader(statusCode)
	if encodingError := json.NewEncoder(responseWriter).Encode(responseBody); encodingError != nil {
		server.logger.Error(responseEncodingFailedMessageConst, zap.Error(encodingError))
	}
}
