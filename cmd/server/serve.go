package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/copilot_server/internal/copilot"
	"github.com/temirov/copilot_server/internal/execshell"
	"github.com/temirov/copilot_server/internal/gitrepo"
	"github.com/temirov/copilot_server/internal/httpapi"
	"github.com/temirov/copilot_server/internal/utils"
	"github.com/temirov/copilot_server/internal/workflow"
)

const (
	serveCommandUseConstant              = "serve"
	serveCommandShortDescriptionConstant = "Start the HTTP server"
	serveCommandLongDescriptionConstant  = "Start the HTTP server exposing the Copilot and Git workflow endpoints."
	portFlagNameConstant                 = "port"
	portFlagUsageConstant                = "Override the configured listen port."
	basePathDirectoryPermissionsConstant = 0o755
	shutdownGracePeriodConstant          = 10 * time.Second
	basePathCreationErrorTemplateConst   = "unable to create repositories base path %s: %w"
	serverStartErrorTemplateConstant     = "server failed: %w"
	serverShutdownErrorTemplateConstant  = "server shutdown failed: %w"
	shutdownInitiatedMessageConstant     = "shutting down"
	serverStoppedMessageConstant         = "server stopped"
	logFieldBasePathConstant             = "base_path"
)

func (application *Application) newServeCommand() *cobra.Command {
	serveCommand := &cobra.Command{
		Use:   serveCommandUseConstant,
		Short: serveCommandShortDescriptionConstant,
		Long:  serveCommandLongDescriptionConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runServe(command)
		},
	}

	serveCommand.Flags().IntVar(&application.listenPortFlagValue, portFlagNameConstant, 0, portFlagUsageConstant)

	return serveCommand
}

func (application *Application) runServe(command *cobra.Command) error {
	configuration := application.configuration
	if command.Flags().Changed(portFlagNameConstant) {
		configuration.Server.Port = application.listenPortFlagValue
	}

	repositoriesBasePath := utils.NewHomeExpander().Expand(configuration.Repositories.BasePath)
	if creationError := os.MkdirAll(repositoriesBasePath, basePathDirectoryPermissionsConstant); creationError != nil {
		return fmt.Errorf(basePathCreationErrorTemplateConst, repositoriesBasePath, creationError)
	}

	httpServer, assemblyError := application.assembleServer(configuration, repositoriesBasePath)
	if assemblyError != nil {
		return assemblyError
	}

	signalContext, stopSignals := signal.NotifyContext(command.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	serveErrors := make(chan error, 1)
	go func() {
		serveErrors <- httpServer.ListenAndServe()
	}()

	select {
	case serveError := <-serveErrors:
		if serveError != nil && !errors.Is(serveError, http.ErrServerClosed) {
			return fmt.Errorf(serverStartErrorTemplateConstant, serveError)
		}
	case <-signalContext.Done():
		application.logger.Info(shutdownInitiatedMessageConstant)

		shutdownContext, cancelShutdown := context.WithTimeout(context.Background(), shutdownGracePeriodConstant)
		defer cancelShutdown()

		if shutdownError := httpServer.Shutdown(shutdownContext); shutdownError != nil {
			return fmt.Errorf(serverShutdownErrorTemplateConstant, shutdownError)
		}
	}

	application.logger.Info(serverStoppedMessageConstant, zap.String(logFieldBasePathConstant, repositoriesBasePath))
	return nil
}

func (application *Application) assembleServer(configuration ApplicationConfiguration, repositoriesBasePath string) (*httpapi.Server, error) {
	shellExecutor, executorError := execshell.NewShellExecutor(application.logger, execshell.NewOSCommandRunner())
	if executorError != nil {
		return nil, executorError
	}

	gitClient, gitClientError := gitrepo.NewClient(shellExecutor)
	if gitClientError != nil {
		return nil, gitClientError
	}

	commandBuilder := copilot.NewSuggestCommandBuilder(configuration.Copilot.Command)
	assistantInvoker, invokerError := copilot.NewInvoker(shellExecutor, commandBuilder, configuration.Copilot.Timeout)
	if invokerError != nil {
		return nil, invokerError
	}

	orchestrator, orchestratorError := workflow.NewOrchestrator(workflow.Dependencies{
		Logger:     application.logger,
		Git:        gitClient,
		Generation: assistantInvoker,
	})
	if orchestratorError != nil {
		return nil, orchestratorError
	}

	serverConfiguration := httpapi.Configuration{
		ListenPort:           configuration.Server.Port,
		APIKey:               configuration.Server.APIKey,
		RepositoriesBasePath: repositoriesBasePath,
		AllowedRepositories:  configuration.Repositories.Allowed,
	}

	return httpapi.NewServer(application.logger, serverConfiguration, orchestrator)
}
