package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/temirov/copilot_server/internal/gitrepo"
	"github.com/temirov/copilot_server/internal/workflow"
)

const (
	invalidRequestBodyMessageConstant       = "invalid JSON request body"
	internalServerErrorMessageConstant      = "internal server error"
	commitAndPushSuccessMessageConstant     = "Changes committed and pushed successfully"
	workflowSuccessMessageConstant          = "Copilot workflow completed successfully"
	generationFailedErrorMessageConstant    = "Copilot execution failed"
	stageFailedErrorMessageConstant         = "Failed to stage files"
	commitFailedErrorMessageConstant        = "Failed to commit"
	pushFailedErrorMessageConstant          = "Failed to push"
	requestRejectedMessageConstant          = "request rejected"
	repositoryValidationFailedMsgConstant   = "repository validation failed"
	workflowFailedMessageConstant           = "workflow failed"
	unexpectedHandlerFailureMessageConstant = "unexpected handler failure"
	logFieldValidationMessageConstant       = "validation_message"
	logFieldRepositoryNameConstant          = "repo_name"
	logFieldFailedStepConstant              = "failed_step"
)

var stepFailureMessages = map[workflow.StepName]string{
	workflow.StepCopilot: generationFailedErrorMessageConstant,
	workflow.StepAdd:     stageFailedErrorMessageConstant,
	workflow.StepCommit:  commitFailedErrorMessageConstant,
	workflow.StepPush:    pushFailedErrorMessageConstant,
}

// handleHealth reports liveness without requiring credentials.
func (server *Server) handleHealth(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet {
		server.writeJSONResponse(responseWriter, http.StatusMethodNotAllowed, ErrorResponse{Error: methodNotAllowedMessageConstant})
		return
	}

	server.writeJSONResponse(responseWriter, http.StatusOK, HealthResponse{Status: healthyStatusValueConstant, Timestamp: currentTimestamp()})
}

// handleCopilotExecute runs assistant generation and reports the working tree
// status. An unsuccessful generation is still a successful request; only
// validation and repository errors fail it.
func (server *Server) handleCopilotExecute(responseWriter http.ResponseWriter, request *http.Request) {
	workflowRequest, decoded := server.decodeWorkflowRequest(responseWriter, request, requestFieldRequirements{prompt: true})
	if !decoded {
		return
	}

	repositoryReference := server.repositoryReference(workflowRequest)
	outcome, generateError := server.workflows.Generate(request.Context(), repositoryReference, workflowRequest.Prompt, workflowRequest.Files)
	if generateError != nil {
		server.writeWorkflowError(responseWriter, workflowRequest, generateError, nil, false)
		return
	}

	server.writeJSONResponse(responseWriter, http.StatusOK, GenerateResponse{
		Success:   outcome.Generation.Success,
		Output:    outcome.Generation.StandardOutput,
		Error:     outcome.Generation.StandardError,
		GitStatus: outcome.Status.StandardOutput,
		Timestamp: currentTimestamp(),
	})
}

// handleCommitAndPush stages, commits, and pushes pending changes.
func (server *Server) handleCommitAndPush(responseWriter http.ResponseWriter, request *http.Request) {
	workflowRequest, decoded := server.decodeWorkflowRequest(responseWriter, request, requestFieldRequirements{commitMessage: true})
	if !decoded {
		return
	}

	repositoryReference := server.repositoryReference(workflowRequest)
	accumulatedResults, workflowError := server.workflows.CommitAndPush(request.Context(), repositoryReference, workflowRequest.CommitMessage, workflowRequest.Branch, workflowRequest.Files)
	if workflowError != nil {
		server.writeWorkflowError(responseWriter, workflowRequest, workflowError, accumulatedResults, false)
		return
	}

	server.writeJSONResponse(responseWriter, http.StatusOK, CommitAndPushResponse{
		Success:   true,
		Message:   commitAndPushSuccessMessageConstant,
		Results:   stepOutputs(accumulatedResults),
		Timestamp: currentTimestamp(),
	})
}

// handleWorkflow runs the full generate, stage, commit, push pipeline.
func (server *Server) handleWorkflow(responseWriter http.ResponseWriter, request *http.Request) {
	workflowRequest, decoded := server.decodeWorkflowRequest(responseWriter, request, requestFieldRequirements{prompt: true, commitMessage: true})
	if !decoded {
		return
	}

	repositoryReference := server.repositoryReference(workflowRequest)
	accumulatedResults, workflowError := server.workflows.Run(request.Context(), repositoryReference, workflowRequest.Prompt, workflowRequest.CommitMessage, workflowRequest.Branch, workflowRequest.Files)
	if workflowError != nil {
		server.writeWorkflowError(responseWriter, workflowRequest, workflowError, accumulatedResults, true)
		return
	}

	server.writeJSONResponse(responseWriter, http.StatusOK, WorkflowResponse{
		Success:         true,
		Message:         workflowSuccessMessageConstant,
		WorkflowResults: accumulatedResults,
		Timestamp:       currentTimestamp(),
	})
}

// decodeWorkflowRequest parses and validates the request body, writing the
// 400 response itself when the request cannot proceed.
func (server *Server) decodeWorkflowRequest(responseWriter http.ResponseWriter, request *http.Request, requirements requestFieldRequirements) (WorkflowRequest, bool) {
	var workflowRequest WorkflowRequest
	if decodingError := json.NewDecoder(request.Body).Decode(&workflowRequest); decodingError != nil {
		server.writeJSONResponse(responseWriter, http.StatusBadRequest, ErrorResponse{Error: invalidRequestBodyMessageConstant})
		return WorkflowRequest{}, false
	}

	if validationError := validateWorkflowRequest(workflowRequest, requirements, server.configuration.AllowedRepositories); validationError != nil {
		server.logger.Info(
			requestRejectedMessageConstant,
			zap.String(logFieldRepositoryNameConstant, workflowRequest.RepoName),
			zap.String(logFieldValidationMessageConstant, validationError.Error()),
		)
		server.writeJSONResponse(responseWriter, http.StatusBadRequest, ErrorResponse{Error: validationError.Error()})
		return WorkflowRequest{}, false
	}

	return workflowRequest, true
}

func (server *Server) repositoryReference(workflowRequest WorkflowRequest) gitrepo.RepositoryRef {
	return gitrepo.RepositoryRef{BasePath: server.configuration.RepositoriesBasePath, Name: workflowRequest.RepoName}
}

// writeWorkflowError maps orchestrator failures onto HTTP responses:
// repository validation problems and step failures both surface as 500 with
// the underlying message, step failures additionally carrying the partial
// results accumulated before the pipeline stopped.
func (server *Server) writeWorkflowError(responseWriter http.ResponseWriter, workflowRequest WorkflowRequest, workflowError error, accumulatedResults *workflow.Results, fullWorkflow bool) {
	var stepFailure workflow.StepFailureError
	if errors.As(workflowError, &stepFailure) {
		server.logger.Warn(
			workflowFailedMessageConstant,
			zap.String(logFieldRepositoryNameConstant, workflowRequest.RepoName),
			zap.String(logFieldFailedStepConstant, string(stepFailure.Step)),
		)

		failureResponse := ErrorResponse{
			Error:   stepFailureMessages[stepFailure.Step],
			Details: stepFailure.Result.StandardError,
		}
		if fullWorkflow {
			failureResponse.WorkflowResults = accumulatedResults
		} else {
			failureResponse.Results = accumulatedResults
		}
		server.writeJSONResponse(responseWriter, http.StatusInternalServerError, failureResponse)
		return
	}

	var notFoundError gitrepo.RepositoryNotFoundError
	var notRepositoryError gitrepo.NotARepositoryError
	if errors.As(workflowError, &notFoundError) || errors.As(workflowError, &notRepositoryError) {
		server.logger.Warn(
			repositoryValidationFailedMsgConstant,
			zap.String(logFieldRepositoryNameConstant, workflowRequest.RepoName),
			zap.Error(workflowError),
		)
		server.writeJSONResponse(responseWriter, http.StatusInternalServerError, ErrorResponse{Error: workflowError.Error()})
		return
	}

	server.logger.Error(
		unexpectedHandlerFailureMessageConstant,
		zap.String(logFieldRepositoryNameConstant, workflowRequest.RepoName),
		zap.Error(workflowError),
	)
	server.writeJSONResponse(responseWriter, http.StatusInternalServerError, ErrorResponse{Error: internalServerErrorMessageConstant})
}

func stepOutputs(accumulatedResults *workflow.Results) CommitAndPushStepOutputs {
	var outputs CommitAndPushStepOutputs
	if accumulatedResults == nil {
		return outputs
	}
	if stepResult, recorded := accumulatedResults.Get(workflow.StepAdd); recorded {
		outputs.Add = stepResult.StandardOutput
	}
	if stepResult, recorded := accumulatedResults.Get(workflow.StepCommit); recorded {
		outputs.Commit = stepResult.StandardOutput
	}
	if stepResult, recorded := accumulatedResults.Get(workflow.StepPush); recorded {
		outputs.Push = stepResult.StandardOutput
	}
	return outputs
}
