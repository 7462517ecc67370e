package workflow_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/copilot_server/internal/execshell"
	"github.com/temirov/copilot_server/internal/gitrepo"
	"github.com/temirov/copilot_server/internal/workflow"
)

const (
	testRepositoryNameConstant          = "demo"
	testPromptConstant                  = "Add error handling"
	testCommitMessageConstant           = "fix"
	testMetadataDirectoryNameConstant   = ".git"
	testDirectoryPermissionsConstant    = 0o755
	testNothingToCommitMessageConstant  = "nothing to commit"
	testStageFailureMessageConstant     = "pathspec did not match"
	testGenerationFailureStderrConstant = "assistant unavailable"
)

type scriptedGitService struct {
	statusResult execshell.CommandResult
	stageResult  execshell.CommandResult
	commitResult execshell.CommandResult
	pushResult   execshell.CommandResult

	statusCalls int
	stageCalls  int
	commitCalls int
	pushCalls   int

	recordedStageFiles    []string
	recordedCommitMessage string
	recordedPushRemote    string
	recordedPushBranch    string
}

func (service *scriptedGitService) Status(context.Context, string) (execshell.CommandResult, error) {
	service.statusCalls++
	return service.statusResult, nil
}

func (service *scriptedGitService) Stage(executionContext context.Context, repositoryPath string, files []string) (execshell.CommandResult, error) {
	service.stageCalls++
	service.recordedStageFiles = files
	return service.stageResult, nil
}

func (service *scriptedGitService) Commit(executionContext context.Context, repositoryPath string, commitMessage string) (execshell.CommandResult, error) {
	service.commitCalls++
	service.recordedCommitMessage = commitMessage
	return service.commitResult, nil
}

func (service *scriptedGitService) Push(executionContext context.Context, repositoryPath string, remoteName string, branchName string) (execshell.CommandResult, error) {
	service.pushCalls++
	service.recordedPushRemote = remoteName
	service.recordedPushBranch = branchName
	return service.pushResult, nil
}

type scriptedGenerationService struct {
	generationResult execshell.CommandResult
	generationCalls  int
}

func (service *scriptedGenerationService) Generate(context.Context, string, string, []string) (execshell.CommandResult, error) {
	service.generationCalls++
	return service.generationResult, nil
}

func successResult(standardOutput string) execshell.CommandResult {
	return execshell.CommandResult{Success: true, StandardOutput: standardOutput}
}

func failureResult(standardError string) execshell.CommandResult {
	return execshell.CommandResult{Success: false, StandardError: standardError, ExitCode: 1}
}

func createValidRepository(testInstance *testing.T) gitrepo.RepositoryRef {
	basePath := testInstance.TempDir()
	metadataPath := filepath.Join(basePath, testRepositoryNameConstant, testMetadataDirectoryNameConstant)
	require.NoError(testInstance, os.MkdirAll(metadataPath, testDirectoryPermissionsConstant))
	return gitrepo.RepositoryRef{BasePath: basePath, Name: testRepositoryNameConstant}
}

func newOrchestrator(testInstance *testing.T, gitService workflow.GitService, generationService workflow.GenerationService) *workflow.Orchestrator {
	orchestrator, creationError := workflow.NewOrchestrator(workflow.Dependencies{
		Logger:     zap.NewNop(),
		Git:        gitService,
		Generation: generationService,
	})
	require.NoError(testInstance, creationError)
	return orchestrator
}

func TestNewOrchestratorValidation(testInstance *testing.T) {
	gitService := &scriptedGitService{}
	generationService := &scriptedGenerationService{}

	testCases := []struct {
		name          string
		dependencies  workflow.Dependencies
		expectedError error
	}{
		{
			name:          "missing_logger",
			dependencies:  workflow.Dependencies{Git: gitService, Generation: generationService},
			expectedError: workflow.ErrLoggerNotConfigured,
		},
		{
			name:          "missing_git_service",
			dependencies:  workflow.Dependencies{Logger: zap.NewNop(), Generation: generationService},
			expectedError: workflow.ErrGitServiceNotConfigured,
		},
		{
			name:          "missing_generation_service",
			dependencies:  workflow.Dependencies{Logger: zap.NewNop(), Git: gitService},
			expectedError: workflow.ErrGenerationServiceNotConfigured,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			orchestrator, creationError := workflow.NewOrchestrator(testCase.dependencies)
			require.ErrorIs(testInstance, creationError, testCase.expectedError)
			require.Nil(testInstance, orchestrator)
		})
	}
}

func TestValidationFailsBeforeAnyCommandRuns(testInstance *testing.T) {
	gitService := &scriptedGitService{}
	generationService := &scriptedGenerationService{}
	orchestrator := newOrchestrator(testInstance, gitService, generationService)

	missingReference := gitrepo.RepositoryRef{BasePath: testInstance.TempDir(), Name: testRepositoryNameConstant}

	_, generateError := orchestrator.Generate(context.Background(), missingReference, testPromptConstant, nil)
	require.IsType(testInstance, gitrepo.RepositoryNotFoundError{}, generateError)

	_, commitAndPushError := orchestrator.CommitAndPush(context.Background(), missingReference, testCommitMessageConstant, "", nil)
	require.IsType(testInstance, gitrepo.RepositoryNotFoundError{}, commitAndPushError)

	_, runError := orchestrator.Run(context.Background(), missingReference, testPromptConstant, testCommitMessageConstant, "", nil)
	require.IsType(testInstance, gitrepo.RepositoryNotFoundError{}, runError)

	require.Zero(testInstance, generationService.generationCalls)
	require.Zero(testInstance, gitService.statusCalls)
	require.Zero(testInstance, gitService.stageCalls)
	require.Zero(testInstance, gitService.commitCalls)
	require.Zero(testInstance, gitService.pushCalls)
}

func TestGenerateCollectsBestEffortStatus(testInstance *testing.T) {
	reference := createValidRepository(testInstance)

	testInstance.Run("successful_generation", func(testInstance *testing.T) {
		gitService := &scriptedGitService{statusResult: successResult(" M src/api.go\n")}
		generationService := &scriptedGenerationService{generationResult: successResult("generated")}
		orchestrator := newOrchestrator(testInstance, gitService, generationService)

		outcome, generateError := orchestrator.Generate(context.Background(), reference, testPromptConstant, nil)
		require.NoError(testInstance, generateError)
		require.True(testInstance, outcome.Generation.Success)
		require.Equal(testInstance, " M src/api.go\n", outcome.Status.StandardOutput)
		require.Equal(testInstance, 1, gitService.statusCalls)
	})

	testInstance.Run("failed_generation_still_reports_outcome", func(testInstance *testing.T) {
		gitService := &scriptedGitService{statusResult: successResult("")}
		generationService := &scriptedGenerationService{generationResult: failureResult(testGenerationFailureStderrConstant)}
		orchestrator := newOrchestrator(testInstance, gitService, generationService)

		outcome, generateError := orchestrator.Generate(context.Background(), reference, testPromptConstant, nil)
		require.NoError(testInstance, generateError)
		require.False(testInstance, outcome.Generation.Success)
		require.Equal(testInstance, testGenerationFailureStderrConstant, outcome.Generation.StandardError)
	})

	testInstance.Run("status_failure_does_not_fail_request", func(testInstance *testing.T) {
		gitService := &scriptedGitService{statusResult: failureResult("status unavailable")}
		generationService := &scriptedGenerationService{generationResult: successResult("generated")}
		orchestrator := newOrchestrator(testInstance, gitService, generationService)

		outcome, generateError := orchestrator.Generate(context.Background(), reference, testPromptConstant, nil)
		require.NoError(testInstance, generateError)
		require.True(testInstance, outcome.Generation.Success)
		require.False(testInstance, outcome.Status.Success)
	})
}

func TestCommitAndPushRunsStepsInOrder(testInstance *testing.T) {
	reference := createValidRepository(testInstance)
	gitService := &scriptedGitService{
		stageResult:  successResult("staged"),
		commitResult: successResult("committed"),
		pushResult:   successResult("pushed"),
	}
	orchestrator := newOrchestrator(testInstance, gitService, &scriptedGenerationService{})

	accumulatedResults, workflowError := orchestrator.CommitAndPush(context.Background(), reference, testCommitMessageConstant, "", nil)
	require.NoError(testInstance, workflowError)
	require.Equal(testInstance, []workflow.StepName{workflow.StepAdd, workflow.StepCommit, workflow.StepPush}, accumulatedResults.Steps())

	require.Nil(testInstance, gitService.recordedStageFiles)
	require.Equal(testInstance, testCommitMessageConstant, gitService.recordedCommitMessage)
	require.Equal(testInstance, gitrepo.DefaultRemoteName, gitService.recordedPushRemote)
	require.Empty(testInstance, gitService.recordedPushBranch)

	stageStepResult, stageRecorded := accumulatedResults.Get(workflow.StepAdd)
	require.True(testInstance, stageRecorded)
	require.Equal(testInstance, "staged", stageStepResult.StandardOutput)
}

func TestCommitAndPushShortCircuitsOnStageFailure(testInstance *testing.T) {
	reference := createValidRepository(testInstance)
	gitService := &scriptedGitService{stageResult: failureResult(testStageFailureMessageConstant)}
	orchestrator := newOrchestrator(testInstance, gitService, &scriptedGenerationService{})

	accumulatedResults, workflowError := orchestrator.CommitAndPush(context.Background(), reference, testCommitMessageConstant, "", nil)
	require.Error(testInstance, workflowError)

	var stepFailure workflow.StepFailureError
	require.ErrorAs(testInstance, workflowError, &stepFailure)
	require.Equal(testInstance, workflow.StepAdd, stepFailure.Step)
	require.Contains(testInstance, stepFailure.Error(), testStageFailureMessageConstant)

	require.Equal(testInstance, []workflow.StepName{workflow.StepAdd}, accumulatedResults.Steps())
	require.Zero(testInstance, gitService.commitCalls)
	require.Zero(testInstance, gitService.pushCalls)
}

func TestCommitAndPushReportsCommitFailureWithPartialResults(testInstance *testing.T) {
	reference := createValidRepository(testInstance)
	gitService := &scriptedGitService{
		stageResult:  successResult("staged"),
		commitResult: failureResult(testNothingToCommitMessageConstant),
	}
	orchestrator := newOrchestrator(testInstance, gitService, &scriptedGenerationService{})

	accumulatedResults, workflowError := orchestrator.CommitAndPush(context.Background(), reference, testCommitMessageConstant, "", nil)
	require.Error(testInstance, workflowError)

	var stepFailure workflow.StepFailureError
	require.ErrorAs(testInstance, workflowError, &stepFailure)
	require.Equal(testInstance, workflow.StepCommit, stepFailure.Step)

	require.Equal(testInstance, []workflow.StepName{workflow.StepAdd, workflow.StepCommit}, accumulatedResults.Steps())
	_, pushRecorded := accumulatedResults.Get(workflow.StepPush)
	require.False(testInstance, pushRecorded)
	require.Zero(testInstance, gitService.pushCalls)
}

func TestRunSkipsVersionControlWhenGenerationFails(testInstance *testing.T) {
	reference := createValidRepository(testInstance)
	gitService := &scriptedGitService{}
	generationService := &scriptedGenerationService{generationResult: failureResult(testGenerationFailureStderrConstant)}
	orchestrator := newOrchestrator(testInstance, gitService, generationService)

	accumulatedResults, workflowError := orchestrator.Run(context.Background(), reference, testPromptConstant, testCommitMessageConstant, "", nil)
	require.Error(testInstance, workflowError)

	var stepFailure workflow.StepFailureError
	require.ErrorAs(testInstance, workflowError, &stepFailure)
	require.Equal(testInstance, workflow.StepCopilot, stepFailure.Step)

	require.Equal(testInstance, []workflow.StepName{workflow.StepCopilot}, accumulatedResults.Steps())
	require.Zero(testInstance, gitService.stageCalls)
	require.Zero(testInstance, gitService.commitCalls)
	require.Zero(testInstance, gitService.pushCalls)
}

func TestRunCompletesFullPipeline(testInstance *testing.T) {
	reference := createValidRepository(testInstance)
	gitService := &scriptedGitService{
		stageResult:  successResult("staged"),
		commitResult: successResult("committed"),
		pushResult:   successResult("pushed"),
	}
	generationService := &scriptedGenerationService{generationResult: successResult("generated")}
	orchestrator := newOrchestrator(testInstance, gitService, generationService)

	accumulatedResults, workflowError := orchestrator.Run(context.Background(), reference, testPromptConstant, testCommitMessageConstant, "main", []string{"src/api.go"})
	require.NoError(testInstance, workflowError)
	require.Equal(testInstance, []workflow.StepName{workflow.StepCopilot, workflow.StepAdd, workflow.StepCommit, workflow.StepPush}, accumulatedResults.Steps())
	require.Equal(testInstance, []string{"src/api.go"}, gitService.recordedStageFiles)
	require.Equal(testInstance, "main", gitService.recordedPushBranch)
}

func TestResultsMarshalPreservesExecutionOrder(testInstance *testing.T) {
	accumulatedResults := workflow.NewResults()
	accumulatedResults.Append(workflow.StepCopilot, successResult("generated"))
	accumulatedResults.Append(workflow.StepAdd, successResult("staged"))
	accumulatedResults.Append(workflow.StepCommit, failureResult(testNothingToCommitMessageConstant))

	encodedResults, encodingError := json.Marshal(accumulatedResults)
	require.NoError(testInstance, encodingError)

	encodedText := string(encodedResults)
	require.Less(testInstance, len(`{"copilot"`), len(encodedText))
	require.Regexp(testInstance, `^\{"copilot":.*"add":.*"commit":.*\}$`, encodedText)

	var decodedResults map[string]execshell.CommandResult
	require.NoError(testInstance, json.Unmarshal(encodedResults, &decodedResults))
	require.Len(testInstance, decodedResults, 3)
	require.False(testInstance, decodedResults[string(workflow.StepCommit)].Success)
}
