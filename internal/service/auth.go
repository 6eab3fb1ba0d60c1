package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/cacart/internal/apierror"
	"github.com/dtroode/cacart/internal/logger"
	"github.com/dtroode/cacart/internal/model"
	"github.com/dtroode/cacart/internal/validator"
)

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// Auth implements account and session operations: sign-up, password and
// anonymous sign-in, session lookup, token rotation and sign-out.
type Auth struct {
	userStore    model.UserStore
	sessionStore model.SessionStore
	hasher       PasswordHasher
	tokenService *TokenService
	logger       *logger.Logger
	now          func() time.Time
}

func NewAuth(
	userStore model.UserStore,
	sessionStore model.SessionStore,
	hasher PasswordHasher,
	tokenService *TokenService,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:    userStore,
		sessionStore: sessionStore,
		hasher:       hasher,
		tokenService: tokenService,
		logger:       logger,
		now:          time.Now,
	}
}

func (a *Auth) SignUp(ctx context.Context, email, password string) (model.AuthResult, error) {
	a.logger.Debug("Auth service: starting sign up",
		"email", email)

	if r := validator.ValidateEmail(email); !r.Valid {
		return model.AuthResult{}, apierror.NewErrValidation(r.Message)
	}
	if r := validator.ValidatePassword(password); !r.Valid {
		return model.AuthResult{}, apierror.NewErrValidation(r.Message)
	}

	existing, err := a.userStore.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return model.AuthResult{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	if existing.ID != uuid.Nil {
		a.logger.Info("Auth service: email already taken",
			"email", email)
		return model.AuthResult{}, apierror.NewErrEmailIsTaken(email)
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := a.now()
	user, err := a.userStore.Create(ctx, model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, model.ErrAlreadyExists) {
		return model.AuthResult{}, apierror.NewErrEmailIsTaken(email)
	}
	if err != nil {
		a.logger.Error("Auth service: failed to create user",
			"email", email,
			"error", err.Error())
		return model.AuthResult{}, fmt.Errorf("failed to create user: %w", err)
	}

	res, err := a.startSession(ctx, user)
	if err != nil {
		return model.AuthResult{}, err
	}

	a.logger.Info("Auth service: user signed up",
		"user_id", user.ID,
		"session_id", res.Session.SessionID)

	return res, nil
}

func (a *Auth) SignInWithPassword(ctx context.Context, email, password string) (model.AuthResult, error) {
	a.logger.Debug("Auth service: starting password sign in",
		"email", email)

	if email == "" || password == "" {
		return model.AuthResult{}, apierror.NewErrInvalidCredentials()
	}

	user, err := a.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		a.logger.Info("Auth service: sign in for unknown email",
			"email", email)
		return model.AuthResult{}, apierror.NewErrInvalidCredentials()
	}
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	match, err := a.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		a.logger.Info("Auth service: wrong password",
			"user_id", user.ID)
		return model.AuthResult{}, apierror.NewErrInvalidCredentials()
	}

	res, err := a.startSession(ctx, user)
	if err != nil {
		return model.AuthResult{}, err
	}

	a.logger.Info("Auth service: user signed in",
		"user_id", user.ID,
		"session_id", res.Session.SessionID)

	return res, nil
}

func (a *Auth) SignInAnonymously(ctx context.Context) (model.AuthResult, error) {
	now := a.now()
	user, err := a.userStore.Create(ctx, model.User{
		ID:          uuid.New(),
		IsAnonymous: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		a.logger.Error("Auth service: failed to create anonymous user",
			"error", err.Error())
		return model.AuthResult{}, fmt.Errorf("failed to create anonymous user: %w", err)
	}

	res, err := a.startSession(ctx, user)
	if err != nil {
		return model.AuthResult{}, err
	}

	a.logger.Info("Auth service: anonymous user signed in",
		"user_id", user.ID,
		"session_id", res.Session.SessionID)

	return res, nil
}

// RefreshToken rotates the refresh token and reports the session it belongs to.
func (a *Auth) RefreshToken(ctx context.Context, refreshToken string) (model.AuthResult, error) {
	access, refresh, principal, err := a.tokenService.Refresh(ctx, refreshToken)
	if err != nil {
		if isRefreshRejection(err) {
			a.logger.Info("Auth service: refresh rejected",
				"error", err.Error())
			return model.AuthResult{}, apierror.NewErrInvalidRefreshToken(err)
		}
		return model.AuthResult{}, fmt.Errorf("failed to refresh token: %w", err)
	}

	info, err := a.GetSession(ctx, principal)
	if err != nil {
		return model.AuthResult{}, err
	}

	return model.AuthResult{
		AccessToken:  access,
		RefreshToken: refresh,
		Session:      info,
	}, nil
}

// GetSession returns the session of the principal if it is still active.
func (a *Auth) GetSession(ctx context.Context, principal model.Principal) (model.SessionInfo, error) {
	session, err := a.sessionStore.GetByID(ctx, principal.SessionID)
	if errors.Is(err, model.ErrNotFound) {
		return model.SessionInfo{}, apierror.NewErrSessionNotFound()
	}
	if err != nil {
		return model.SessionInfo{}, fmt.Errorf("failed to get session: %w", err)
	}
	if session.UserID != principal.UserID {
		return model.SessionInfo{}, apierror.NewErrSessionNotFound()
	}
	if err := session.Active(a.now()); err != nil {
		a.logger.Debug("Auth service: inactive session",
			"session_id", session.ID,
			"reason", err.Error())
		return model.SessionInfo{}, apierror.NewErrSessionNotFound()
	}

	user, err := a.userStore.GetByID(ctx, session.UserID)
	if errors.Is(err, model.ErrNotFound) {
		return model.SessionInfo{}, apierror.NewErrSessionNotFound()
	}
	if err != nil {
		return model.SessionInfo{}, fmt.Errorf("failed to get user: %w", err)
	}

	return sessionInfo(session, user), nil
}

// SignOut ends the principal's session. Ending a session that is already gone succeeds.
func (a *Auth) SignOut(ctx context.Context, principal model.Principal) error {
	err := a.sessionStore.Revoke(ctx, principal.SessionID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to revoke session",
			"session_id", principal.SessionID,
			"error", err.Error())
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	if err := a.tokenService.RevokeSession(ctx, principal.SessionID); err != nil {
		a.logger.Error("Auth service: failed to revoke session tokens",
			"session_id", principal.SessionID,
			"error", err.Error())
		return err
	}

	a.logger.Info("Auth service: user signed out",
		"user_id", principal.UserID,
		"session_id", principal.SessionID)

	return nil
}

func (a *Auth) startSession(ctx context.Context, user model.User) (model.AuthResult, error) {
	now := a.now()
	session := model.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(model.SessionDuration),
	}

	if err := a.sessionStore.Create(ctx, session); err != nil {
		a.logger.Error("Auth service: failed to create session",
			"user_id", user.ID,
			"error", err.Error())
		return model.AuthResult{}, fmt.Errorf("failed to create session: %w", err)
	}

	access, refresh, err := a.tokenService.Issue(ctx, model.Principal{UserID: user.ID, SessionID: session.ID})
	if err != nil {
		a.logger.Error("Auth service: failed to issue tokens",
			"user_id", user.ID,
			"session_id", session.ID,
			"error", err.Error())
		return model.AuthResult{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	return model.AuthResult{
		AccessToken:  access,
		RefreshToken: refresh,
		Session:      sessionInfo(session, user),
	}, nil
}

func sessionInfo(session model.Session, user model.User) model.SessionInfo {
	return model.SessionInfo{
		SessionID:   session.ID,
		UserID:      user.ID,
		Email:       user.Email,
		IsAnonymous: user.IsAnonymous,
		ExpiresAt:   session.ExpiresAt,
	}
}

func isRefreshRejection(err error) bool {
	for _, target := range []error{
		model.ErrTokenInvalid,
		model.ErrTokenRevoked,
		model.ErrTokenExpired,
		model.ErrTokenMismatch,
		model.ErrSessionRevoked,
		model.ErrSessionExpired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
