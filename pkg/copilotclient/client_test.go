package copilotclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/copilot_server/pkg/copilotclient"
)

const (
	testAPIKeyConstant             = "secret-token"
	testRepositoryNameConstant     = "my-project"
	testPromptConstant             = "add input validation"
	testCommitMessageConstant      = "Add validation"
	clientRequiresBaseURLTestName  = "MissingBaseURL"
	clientTrimsTrailingSlashTest   = "TrailingSlashTrimmed"
	clientAcceptsPlainBaseURLTest  = "PlainBaseURL"
	healthEndpointPathConstant     = "/health"
	executeEndpointPathConstant    = "/api/copilot/execute"
	commitPushEndpointPathConstant = "/api/git/commit-and-push"
	workflowEndpointPathConstant   = "/api/workflow/copilot-commit-push"
)

func TestNewClientValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		baseURL       string
		expectedError error
	}{
		{name: clientRequiresBaseURLTestName, baseURL: "   ", expectedError: copilotclient.ErrBaseURLRequired},
		{name: clientTrimsTrailingSlashTest, baseURL: "http://localhost:5000/"},
		{name: clientAcceptsPlainBaseURLTest, baseURL: "http://localhost:5000"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			client, constructionError := copilotclient.NewClient(testCase.baseURL, copilotclient.ClientOptions{})
			if testCase.expectedError != nil {
				require.ErrorIs(subtestInstance, constructionError, testCase.expectedError)
				require.Nil(subtestInstance, client)
				return
			}
			require.NoError(subtestInstance, constructionError)
			require.NotNil(subtestInstance, client)
		})
	}
}

func TestClientSendsAPIKeyAndContentType(testInstance *testing.T) {
	var observedRequest *http.Request
	testServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		observedRequest = request.Clone(context.Background())
		responseWriter.Header().Set("Content-Type", "application/json")
		require.NoError(testInstance, json.NewEncoder(responseWriter).Encode(copilotclient.HealthStatus{Status: "healthy"}))
	}))
	defer testServer.Close()

	client, constructionError := copilotclient.NewClient(testServer.URL, copilotclient.ClientOptions{APIKey: testAPIKeyConstant})
	require.NoError(testInstance, constructionError)

	healthStatus, healthError := client.HealthCheck(context.Background())
	require.NoError(testInstance, healthError)
	require.Equal(testInstance, "healthy", healthStatus.Status)
	require.Equal(testInstance, http.MethodGet, observedRequest.Method)
	require.Equal(testInstance, healthEndpointPathConstant, observedRequest.URL.Path)
	require.Equal(testInstance, testAPIKeyConstant, observedRequest.Header.Get("X-API-Key"))
	require.Equal(testInstance, "application/json", observedRequest.Header.Get("Content-Type"))
}

func TestClientExecuteCopilotDecodesResult(testInstance *testing.T) {
	var decodedRequest copilotclient.GenerateRequest
	testServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		require.Equal(testInstance, executeEndpointPathConstant, request.URL.Path)
		require.NoError(testInstance, json.NewDecoder(request.Body).Decode(&decodedRequest))
		responseWriter.Header().Set("Content-Type", "application/json")
		generateResult := copilotclient.GenerateResult{Success: true, Output: "generated", GitStatus: " M main.go"}
		require.NoError(testInstance, json.NewEncoder(responseWriter).Encode(generateResult))
	}))
	defer testServer.Close()

	client, constructionError := copilotclient.NewClient(testServer.URL, copilotclient.ClientOptions{})
	require.NoError(testInstance, constructionError)

	generateResult, executionError := client.ExecuteCopilot(context.Background(), copilotclient.GenerateRequest{
		RepositoryName: testRepositoryNameConstant,
		Prompt:         testPromptConstant,
		Files:          []string{"src/auth.go"},
	})
	require.NoError(testInstance, executionError)
	require.True(testInstance, generateResult.Success)
	require.Equal(testInstance, "generated", generateResult.Output)
	require.Equal(testInstance, " M main.go", generateResult.GitStatus)
	require.Equal(testInstance, testRepositoryNameConstant, decodedRequest.RepositoryName)
	require.Equal(testInstance, testPromptConstant, decodedRequest.Prompt)
	require.Equal(testInstance, []string{"src/auth.go"}, decodedRequest.Files)
}

func TestClientCommitAndPushOmitsEmptyOptionalFields(testInstance *testing.T) {
	var rawPayload map[string]any
	testServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		require.Equal(testInstance, commitPushEndpointPathConstant, request.URL.Path)
		require.NoError(testInstance, json.NewDecoder(request.Body).Decode(&rawPayload))
		responseWriter.Header().Set("Content-Type", "application/json")
		commitAndPushResult := copilotclient.CommitAndPushResult{Success: true, Message: "Changes committed and pushed successfully"}
		require.NoError(testInstance, json.NewEncoder(responseWriter).Encode(commitAndPushResult))
	}))
	defer testServer.Close()

	client, constructionError := copilotclient.NewClient(testServer.URL, copilotclient.ClientOptions{})
	require.NoError(testInstance, constructionError)

	commitAndPushResult, commitError := client.CommitAndPush(context.Background(), copilotclient.CommitAndPushRequest{
		RepositoryName: testRepositoryNameConstant,
		CommitMessage:  testCommitMessageConstant,
	})
	require.NoError(testInstance, commitError)
	require.True(testInstance, commitAndPushResult.Success)
	require.NotContains(testInstance, rawPayload, "branch")
	require.NotContains(testInstance, rawPayload, "files")
	require.Equal(testInstance, testCommitMessageConstant, rawPayload["commit_message"])
}

func TestClientRunWorkflowDecodesStepResults(testInstance *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		require.Equal(testInstance, workflowEndpointPathConstant, request.URL.Path)
		responseWriter.Header().Set("Content-Type", "application/json")
		responseBody := `{"success":true,"message":"Copilot workflow completed successfully","workflow_results":{"copilot":{"success":true,"stdout":"generated","stderr":"","exit_code":0},"push":{"success":true,"stdout":"","stderr":"","exit_code":0}},"timestamp":"2026-01-01T00:00:00Z"}`
		_, writeError := responseWriter.Write([]byte(responseBody))
		require.NoError(testInstance, writeError)
	}))
	defer testServer.Close()

	client, constructionError := copilotclient.NewClient(testServer.URL, copilotclient.ClientOptions{})
	require.NoError(testInstance, constructionError)

	workflowResult, workflowError := client.RunWorkflow(context.Background(), copilotclient.WorkflowRequest{
		RepositoryName: testRepositoryNameConstant,
		Prompt:         testPromptConstant,
		CommitMessage:  testCommitMessageConstant,
	})
	require.NoError(testInstance, workflowError)
	require.True(testInstance, workflowResult.Success)
	require.Len(testInstance, workflowResult.WorkflowResults, 2)
	require.True(testInstance, workflowResult.WorkflowResults["copilot"].Success)
	require.Equal(testInstance, "generated", workflowResult.WorkflowResults["copilot"].StandardOutput)
}

func TestClientSurfacesAPIErrors(testInstance *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		responseWriter.Header().Set("Content-Type", "application/json")
		responseWriter.WriteHeader(http.StatusInternalServerError)
		responseBody := `{"success":false,"error":"Failed to commit","details":"nothing to commit","results":{"add":{"success":true,"stdout":"","stderr":"","exit_code":0},"commit":{"success":false,"stdout":"","stderr":"nothing to commit","exit_code":1}}}`
		_, writeError := responseWriter.Write([]byte(responseBody))
		require.NoError(testInstance, writeError)
	}))
	defer testServer.Close()

	client, constructionError := copilotclient.NewClient(testServer.URL, copilotclient.ClientOptions{})
	require.NoError(testInstance, constructionError)

	_, commitError := client.CommitAndPush(context.Background(), copilotclient.CommitAndPushRequest{
		RepositoryName: testRepositoryNameConstant,
		CommitMessage:  testCommitMessageConstant,
	})
	require.Error(testInstance, commitError)

	var apiError *copilotclient.APIError
	require.ErrorAs(testInstance, commitError, &apiError)
	require.Equal(testInstance, http.StatusInternalServerError, apiError.StatusCode)
	require.Equal(testInstance, "Failed to commit", apiError.Message)
	require.Equal(testInstance, "nothing to commit", apiError.Details)
	require.False(testInstance, apiError.Results["commit"].Success)
	require.Equal(testInstance, 1, apiError.Results["commit"].ExitCode)
}
