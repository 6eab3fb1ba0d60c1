package router

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"

	"github.com/dtroode/cacart/internal/api/grpc/contract"
	"github.com/dtroode/cacart/internal/api/grpc/handler"
	"github.com/dtroode/cacart/internal/api/grpc/middleware"
	"github.com/dtroode/cacart/internal/logger"
	"github.com/dtroode/cacart/internal/model"
	"github.com/dtroode/cacart/internal/observability"
)

// Router builds the gRPC server of the shop backend.
// It manages gRPC service registration and middleware configuration.
type Router struct {
	authService    handler.AuthService
	catalogService handler.CatalogService
	tokenService   middleware.TokenService
	contextManager model.ContextManager
	metrics        *observability.GRPCMetrics
	logger         *logger.Logger
}

// New creates new gRPC Router instance.
//
// Parameters:
//   - authService: The account and session service
//   - catalogService: The product catalog service
//   - tokenService: Validates bearer tokens of protected methods
//   - contextManager: Carries the authenticated principal in request context
//   - metrics: Request metrics, may be nil
//   - logger: The logger for request logging
func New(
	authService handler.AuthService,
	catalogService handler.CatalogService,
	tokenService middleware.TokenService,
	contextManager model.ContextManager,
	metrics *observability.GRPCMetrics,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		catalogService: catalogService,
		tokenService:   tokenService,
		contextManager: contextManager,
		metrics:        metrics,
		logger:         logger,
	}
}

var protectedMethods = map[string]struct{}{
	contract.AuthGetSessionFullMethod: {},
	contract.AuthSignOutFullMethod:    {},
}

// requiresAuth reports whether a method needs a bearer token. Sign-in methods
// and the catalog are public.
func requiresAuth(_ context.Context, c interceptors.CallMeta) bool {
	_, ok := protectedMethods[c.FullMethod()]
	return ok
}

// Register registers all gRPC services and middleware.
//
// Returns the configured gRPC server instance.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger, r.metrics)
	authenticate := middleware.NewAuthenticate(r.tokenService, r.contextManager, r.logger)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logging.HandleGRPC,
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(requiresAuth),
			),
		),
	)
	contract.RegisterAuthServer(s, handler.NewAuth(r.authService, r.contextManager, r.logger))
	contract.RegisterCatalogServer(s, handler.NewCatalog(r.catalogService, r.logger))

	return s
}
