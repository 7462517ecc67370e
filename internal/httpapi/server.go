package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/temirov/copilot_server/internal/gitrepo"
	"github.com/temirov/copilot_server/internal/utils"
	"github.com/temirov/copilot_server/internal/workflow"
)

const (
	healthRoutePathConstant              = "/health"
	executeRoutePathConstant             = "/api/copilot/execute"
	commitAndPushRoutePathConstant       = "/api/git/commit-and-push"
	workflowRoutePathConstant            = "/api/workflow/copilot-commit-push"
	apiKeyHeaderNameConstant             = "X-API-Key"
	listenAddressTemplateConstant        = ":%d"
	loggerNotConfiguredMessageConstant   = "http server requires a logger"
	workflowsNotConfiguredMessageConst   = "http server requires a workflow service"
	basePathNotConfiguredMessageConstant = "http server requires a repositories base path"
	invalidAPIKeyMessageConstant         = "invalid API key"
	methodNotAllowedMessageConstant      = "method not allowed"
	requestReceivedMessageConstant       = "request received"
	serverListeningMessageConstant       = "server listening"
	logFieldListenAddressConstant        = "listen_address"
	logFieldRequestMethodConstant        = "method"
	logFieldRequestPathConstant          = "path"
	logFieldRequestIdentifierConstant    = "request_id"
)

// Exported sentinel errors describing server misconfiguration.
var (
	ErrLoggerNotConfigured          = errors.New(loggerNotConfiguredMessageConstant)
	ErrWorkflowServiceNotConfigured = errors.New(workflowsNotConfiguredMessageConst)
	ErrBasePathNotConfigured        = errors.New(basePathNotConfiguredMessageConstant)
)

// WorkflowService captures the orchestrator operations the HTTP surface exposes.
type WorkflowService interface {
	Generate(executionContext context.Context, reference gitrepo.RepositoryRef, prompt string, files []string) (workflow.GenerateOutcome, error)
	CommitAndPush(executionContext context.Context, reference gitrepo.RepositoryRef, commitMessage string, branchName string, files []string) (*workflow.Results, error)
	Run(executionContext context.Context, reference gitrepo.RepositoryRef, prompt string, commitMessage string, branchName string, files []string) (*workflow.Results, error)
}

// Configuration carries the server's runtime settings, constructed once at
// startup and passed in rather than read from ambient globals.
type Configuration struct {
	ListenPort           int
	APIKey               string
	RepositoriesBasePath string
	AllowedRepositories  []string
}

// Server exposes the workflow orchestrator over JSON HTTP endpoints.
type Server struct {
	logger          *zap.Logger
	configuration   Configuration
	workflows       WorkflowService
	contextAccessor utils.RequestContextAccessor
	httpServer      *http.Server
}

// NewServer constructs a Server from its dependencies.
func NewServer(logger *zap.Logger, configuration Configuration, workflows WorkflowService) (*Server, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if workflows == nil {
		return nil, ErrWorkflowServiceNotConfigured
	}
	if len(configuration.RepositoriesBasePath) == 0 {
		return nil, ErrBasePathNotConfigured
	}

	return &Server{
		logger:          logger,
		configuration:   configuration,
		workflows:       workflows,
		contextAccessor: utils.NewRequestContextAccessor(),
	}, nil
}

// Handler assembles the route multiplexer with authentication and request
// identification applied to every API endpoint. The health endpoint stays
// open so probes work without credentials.
func (server *Server) Handler() http.Handler {
	routeMultiplexer := http.NewServeMux()
	routeMultiplexer.HandleFunc(healthRoutePathConstant, server.handleHealth)
	routeMultiplexer.Handle(executeRoutePathConstant, server.apiMiddleware(http.HandlerFunc(server.handleCopilotExecute)))
	routeMultiplexer.Handle(commitAndPushRoutePathConstant, server.apiMiddleware(http.HandlerFunc(server.handleCommitAndPush)))
	routeMultiplexer.Handle(workflowRoutePathConstant, server.apiMiddleware(http.HandlerFunc(server.handleWorkflow)))
	return routeMultiplexer
}

// ListenAndServe starts the server on the configured port and blocks until
// it stops or fails.
func (server *Server) ListenAndServe() error {
	listenAddress := fmt.Sprintf(listenAddressTemplateConstant, server.configuration.ListenPort)
	server.httpServer = &http.Server{Addr: listenAddress, Handler: server.Handler()}

	server.logger.Info(serverListeningMessageConstant, zap.String(logFieldListenAddressConstant, listenAddress))
	return server.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (server *Server) Shutdown(shutdownContext context.Context) error {
	if server.httpServer == nil {
		return nil
	}
	return server.httpServer.Shutdown(shutdownContext)
}

// apiMiddleware enforces the optional static API key, requires POST, and
// attaches a request identifier used in structured logs.
func (server *Server) apiMiddleware(nextHandler http.Handler) http.Handler {
	return http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		if len(server.configuration.APIKey) > 0 && request.Header.Get(apiKeyHeaderNameConstant) != server.configuration.APIKey {
			server.writeJSONResponse(responseWriter, http.StatusUnauthorized, ErrorResponse{Error: invalidAPIKeyMessageConstant})
			return
		}

		if request.Method != http.MethodPost {
			server.writeJSONResponse(responseWriter, http.StatusMethodNotAllowed, ErrorResponse{Error: methodNotAllowedMessageConstant})
			return
		}

		requestIdentifier := uuid.NewString()
		requestContext := server.contextAccessor.WithRequestIdentifier(request.Context(), requestIdentifier)

		server.logger.Debug(
			requestReceivedMessageConstant,
			zap.String(logFieldRequestMethodConstant, request.Method),
			zap.String(logFieldRequestPathConstant, request.URL.Path),
			zap.String(logFieldRequestIdentifierConstant, requestIdentifier),
		)

		nextHandler.ServeHTTP(responseWriter, request.WithContext(requestContext))
	})
}
