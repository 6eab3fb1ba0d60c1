package handler

import (
	"context"

	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/dtroode/cacart/internal/api/grpc/contract"
	"github.com/dtroode/cacart/internal/apierror"
	"github.com/dtroode/cacart/internal/logger"
	"github.com/dtroode/cacart/internal/model"
)

// AuthService defines account and session operations.
type AuthService interface {
	SignUp(ctx context.Context, email, password string) (model.AuthResult, error)
	SignInWithPassword(ctx context.Context, email, password string) (model.AuthResult, error)
	SignInAnonymously(ctx context.Context) (model.AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (model.AuthResult, error)
	GetSession(ctx context.Context, principal model.Principal) (model.SessionInfo, error)
	SignOut(ctx context.Context, principal model.Principal) error
}

// Auth handles gRPC endpoints for authentication.
type Auth struct {
	contract.UnimplementedAuthServer
	authService    AuthService
	contextManager model.ContextManager
	logger         *logger.Logger
}

var _ contract.AuthServer = (*Auth)(nil)

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, contextManager model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// SignUp registers a user with email and password and starts a session.
func (h *Auth) SignUp(ctx context.Context, req *contract.CredentialsRequest) (*contract.AuthResponse, error) {
	h.logger.Debug("Auth handler: processing sign up request",
		"email", req.Email)

	res, err := h.authService.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.Info("Auth handler: sign up failed",
			"email", req.Email,
			"error", err.Error())
		return nil, handleError(err)
	}

	return toAuthResponse(res), nil
}

// SignInWithPassword starts a session for an existing user.
func (h *Auth) SignInWithPassword(ctx context.Context, req *contract.CredentialsRequest) (*contract.AuthResponse, error) {
	h.logger.Debug("Auth handler: processing sign in request",
		"email", req.Email)

	res, err := h.authService.SignInWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.Info("Auth handler: sign in failed",
			"email", req.Email,
			"error", err.Error())
		return nil, handleError(err)
	}

	return toAuthResponse(res), nil
}

// SignInAnonymously starts a session for a new anonymous user.
func (h *Auth) SignInAnonymously(ctx context.Context, _ *emptypb.Empty) (*contract.AuthResponse, error) {
	res, err := h.authService.SignInAnonymously(ctx)
	if err != nil {
		h.logger.Error("Auth handler: anonymous sign in failed",
			"error", err.Error())
		return nil, handleError(err)
	}

	return toAuthResponse(res), nil
}

// RefreshToken exchanges a refresh token for a new pair.
func (h *Auth) RefreshToken(ctx context.Context, req *contract.RefreshTokenRequest) (*contract.AuthResponse, error) {
	if req.RefreshToken == "" {
		return nil, handleError(apierror.NewErrInvalidRefreshToken(nil))
	}

	res, err := h.authService.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		h.logger.Info("Auth handler: token refresh failed",
			"error", err.Error())
		return nil, handleError(err)
	}

	return toAuthResponse(res), nil
}

// GetSession returns the caller's session.
func (h *Auth) GetSession(ctx context.Context, _ *emptypb.Empty) (*contract.SessionInfo, error) {
	principal, ok := h.contextManager.GetPrincipalFromContext(ctx)
	if !ok {
		return nil, handleError(apierror.NewErrMissingAuthorizationToken())
	}

	info, err := h.authService.GetSession(ctx, principal)
	if err != nil {
		return nil, handleError(err)
	}

	return toSessionInfo(info), nil
}

// SignOut ends the caller's session.
func (h *Auth) SignOut(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	principal, ok := h.contextManager.GetPrincipalFromContext(ctx)
	if !ok {
		return nil, handleError(apierror.NewErrMissingAuthorizationToken())
	}

	if err := h.authService.SignOut(ctx, principal); err != nil {
		h.logger.Error("Auth handler: sign out failed",
			"session_id", principal.SessionID,
			"error", err.Error())
		return nil, handleError(err)
	}

	return &emptypb.Empty{}, nil
}

func toAuthResponse(res model.AuthResult) *contract.AuthResponse {
	return &contract.AuthResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		Session:      toSessionInfo(res.Session),
	}
}

func toSessionInfo(info model.SessionInfo) *contract.SessionInfo {
	return &contract.SessionInfo{
		SessionID:   info.SessionID.String(),
		UserID:      info.UserID.String(),
		Email:       info.Email,
		IsAnonymous: info.IsAnonymous,
		ExpiresAt:   info.ExpiresAt,
	}
}
