package workflow

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/temirov/copilot_server/internal/execshell"
	"github.com/temirov/copilot_server/internal/gitrepo"
)

const (
	loggerNotConfiguredMessageConstant     = "workflow orchestrator requires a logger"
	gitServiceNotConfiguredMessageConstant = "workflow orchestrator requires a git service"
	generationNotConfiguredMessageConstant = "workflow orchestrator requires a generation service"
	generationStepMessageConstant          = "executing assistant generation"
	stageStepMessageConstant               = "staging changes"
	commitStepMessageConstant              = "committing changes"
	pushStepMessageConstant                = "pushing changes"
	statusCollectionFailedMessageConstant  = "working tree status unavailable"
	stepFailedMessageConstant              = "workflow step failed"
	logFieldRepositoryConstant             = "repository"
	logFieldStepConstant                   = "step"
	logFieldExitCodeConstant               = "exit_code"
)

// Exported sentinel errors describing orchestrator misconfiguration.
var (
	ErrLoggerNotConfigured            = errors.New(loggerNotConfiguredMessageConstant)
	ErrGitServiceNotConfigured        = errors.New(gitServiceNotConfiguredMessageConstant)
	ErrGenerationServiceNotConfigured = errors.New(generationNotConfiguredMessageConstant)
)

// GitService captures the version-control operations the orchestrator sequences.
type GitService interface {
	Status(executionContext context.Context, repositoryPath string) (execshell.CommandResult, error)
	Stage(executionContext context.Context, repositoryPath string, files []string) (execshell.CommandResult, error)
	Commit(executionContext context.Context, repositoryPath string, commitMessage string) (execshell.CommandResult, error)
	Push(executionContext context.Context, repositoryPath string, remoteName string, branchName string) (execshell.CommandResult, error)
}

// GenerationService captures the assistant invocation the orchestrator runs first.
type GenerationService interface {
	Generate(executionContext context.Context, repositoryPath string, prompt string, files []string) (execshell.CommandResult, error)
}

// Dependencies configures collaborators for workflow orchestration.
type Dependencies struct {
	Logger     *zap.Logger
	Git        GitService
	Generation GenerationService
}

// Orchestrator sequences assistant generation and version-control steps for
// one repository checkout per request. Steps run strictly in order,
// short-circuiting on the first failure with the partial results accumulated
// so far; no completed step is rolled back and nothing is retried.
//
// Concurrent requests targeting the same checkout are not serialized here;
// they can interleave at the filesystem level. Accepted limitation carried
// over from the original contract.
type Orchestrator struct {
	logger     *zap.Logger
	git        GitService
	generation GenerationService
}

// NewOrchestrator constructs an Orchestrator from its dependencies.
func NewOrchestrator(dependencies Dependencies) (*Orchestrator, error) {
	if dependencies.Logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if dependencies.Git == nil {
		return nil, ErrGitServiceNotConfigured
	}
	if dependencies.Generation == nil {
		return nil, ErrGenerationServiceNotConfigured
	}

	return &Orchestrator{logger: dependencies.Logger, git: dependencies.Git, generation: dependencies.Generation}, nil
}

// GenerateOutcome reports an assistant generation together with the
// best-effort working tree status collected afterwards.
type GenerateOutcome struct {
	Generation execshell.CommandResult
	Status     execshell.CommandResult
}

// Generate validates the checkout, runs the assistant, and collects the
// working tree status. Status collection is informational: its failure never
// fails the request, and an unsuccessful generation still reports an outcome
// rather than an error.
func (orchestrator *Orchestrator) Generate(executionContext context.Context, reference gitrepo.RepositoryRef, prompt string, files []string) (GenerateOutcome, error) {
	if validationError := gitrepo.ValidateRepository(reference); validationError != nil {
		return GenerateOutcome{}, validationError
	}

	repositoryPath := reference.Path()

	orchestrator.logger.Info(generationStepMessageConstant, zap.String(logFieldRepositoryConstant, repositoryPath))
	generationResult, generationError := orchestrator.generation.Generate(executionContext, repositoryPath, prompt, files)
	if generationError != nil {
		return GenerateOutcome{}, generationError
	}

	outcome := GenerateOutcome{Generation: generationResult}

	statusResult, statusError := orchestrator.git.Status(executionContext, repositoryPath)
	if statusError != nil {
		orchestrator.logger.Warn(statusCollectionFailedMessageConstant, zap.String(logFieldRepositoryConstant, repositoryPath), zap.Error(statusError))
		return outcome, nil
	}
	outcome.Status = statusResult

	return outcome, nil
}

// CommitAndPush validates the checkout and runs stage, commit, and push in
// order. The first failing step stops the pipeline; the returned Results hold
// every step that ran, including the failure, alongside a StepFailureError.
func (orchestrator *Orchestrator) CommitAndPush(executionContext context.Context, reference gitrepo.RepositoryRef, commitMessage string, branchName string, files []string) (*Results, error) {
	if validationError := gitrepo.ValidateRepository(reference); validationError != nil {
		return nil, validationError
	}

	return orchestrator.runVersionControlSteps(executionContext, reference.Path(), NewResults(), commitMessage, branchName, files)
}

// Run executes the full pipeline: validate, generate, stage, commit, push.
// A failed generation prevents every later step.
func (orchestrator *Orchestrator) Run(executionContext context.Context, reference gitrepo.RepositoryRef, prompt string, commitMessage string, branchName string, files []string) (*Results, error) {
	if validationError := gitrepo.ValidateRepository(reference); validationError != nil {
		return nil, validationError
	}

	repositoryPath := reference.Path()
	accumulatedResults := NewResults()

	orchestrator.logger.Info(generationStepMessageConstant, zap.String(logFieldRepositoryConstant, repositoryPath))
	generationResult, generationError := orchestrator.generation.Generate(executionContext, repositoryPath, prompt, files)
	if generationError != nil {
		return accumulatedResults, generationError
	}
	accumulatedResults.Append(StepCopilot, generationResult)
	if !generationResult.Success {
		orchestrator.logStepFailure(repositoryPath, StepCopilot, generationResult)
		return accumulatedResults, StepFailureError{Step: StepCopilot, Result: generationResult}
	}

	return orchestrator.runVersionControlSteps(executionContext, repositoryPath, accumulatedResults, commitMessage, branchName, files)
}

func (orchestrator *Orchestrator) runVersionControlSteps(executionContext context.Context, repositoryPath string, accumulatedResults *Results, commitMessage string, branchName string, files []string) (*Results, error) {
	orchestrator.logger.Info(stageStepMessageConstant, zap.String(logFieldRepositoryConstant, repositoryPath))
	stageResult, stageError := orchestrator.git.Stage(executionContext, repositoryPath, files)
	if stageError != nil {
		return accumulatedResults, stageError
	}
	accumulatedResults.Append(StepAdd, stageResult)
	if !stageResult.Success {
		orchestrator.logStepFailure(repositoryPath, StepAdd, stageResult)
		return accumulatedResults, StepFailureError{Step: StepAdd, Result: stageResult}
	}

	orchestrator.logger.Info(commitStepMessageConstant, zap.String(logFieldRepositoryConstant, repositoryPath))
	commitResult, commitError := orchestrator.git.Commit(executionContext, repositoryPath, commitMessage)
	if commitError != nil {
		return accumulatedResults, commitError
	}
	accumulatedResults.Append(StepCommit, commitResult)
	if !commitResult.Success {
		orchestrator.logStepFailure(repositoryPath, StepCommit, commitResult)
		return accumulatedResults, StepFailureError{Step: StepCommit, Result: commitResult}
	}

	orchestrator.logger.Info(pushStepMessageConstant, zap.String(logFieldRepositoryConstant, repositoryPath))
	pushResult, pushError := orchestrator.git.Push(executionContext, repositoryPath, gitrepo.DefaultRemoteName, branchName)
	if pushError != nil {
		return accumulatedResults, pushError
	}
	accumulatedResults.Append(StepPush, pushResult)
	if !pushResult.Success {
		orchestrator.logStepFailure(repositoryPath, StepPush, pushResult)
		return accumulatedResults, StepFailureError{Step: StepPush, Result: pushResult}
	}

	return accumulatedResults, nil
}

func (orchestrator *Orchestrator) logStepFailure(repositoryPath string, step StepName, result execshell.CommandResult) {
	orchestrator.logger.Warn(
		stepFailedMessageConstant,
		zap.String(logFieldRepositoryConstant, repositoryPath),
		zap.String(logFieldStepConstant, string(step)),
		zap.Int(logFieldExitCodeConstant, result.ExitCode),
	)
}
