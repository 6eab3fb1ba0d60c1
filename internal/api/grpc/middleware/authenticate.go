package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"google.golang.org/grpc/status"

	"github.com/dtroode/cacart/internal/apierror"
	"github.com/dtroode/cacart/internal/logger"
	"github.com/dtroode/cacart/internal/model"
)

// TokenService resolves the principal from bearer tokens.
type TokenService interface {
	Authenticate(ctx context.Context, token string) (model.Principal, error)
}

// Authenticate validates bearer tokens and injects the principal into context.
type Authenticate struct {
	tokenService   TokenService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokenService TokenService, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenService: tokenService, contextManager: contextManager, logger: logger}
}

// AuthFunc reads the bearer token from the authorization metadata, validates
// it and returns a context carrying the principal.
func (m *Authenticate) AuthFunc(ctx context.Context) (context.Context, error) {
	tokenString, err := auth.AuthFromMD(ctx, "bearer")
	if err != nil {
		tokenString = ""
	}

	principal, authErr := m.authenticate(ctx, tokenString)
	if authErr != nil {
		m.logger.Debug("Authenticate middleware: request rejected",
			"reason", authErr.Message)
		return nil, status.Error(authErr.GRPCCode, authErr.Message)
	}

	return m.contextManager.SetPrincipalToContext(ctx, principal), nil
}

func (m *Authenticate) authenticate(ctx context.Context, tokenString string) (model.Principal, *apierror.APIError) {
	if tokenString == "" {
		return model.Principal{}, apierror.NewErrMissingAuthorizationToken()
	}

	principal, err := m.tokenService.Authenticate(ctx, tokenString)
	if err != nil {
		return model.Principal{}, apierror.NewErrInvalidAuthorizationToken()
	}

	if principal.UserID == uuid.Nil || principal.SessionID == uuid.Nil {
		return model.Principal{}, apierror.NewErrInvalidAuthorizationToken()
	}

	return principal, nil
}
