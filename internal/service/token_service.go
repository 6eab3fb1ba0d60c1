package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/cacart/internal/logger"
	"github.com/dtroode/cacart/internal/model"
)

// TokenService provides high-level operations for issuing, refreshing,
// and revoking tokens. It composes the TokenManager, the RefreshTokenStore
// and the SessionStore that bounds the lifetime of every token pair.
type TokenService struct {
	manager  model.TokenManager
	store    model.RefreshTokenStore
	sessions model.SessionStore
	logger   *logger.Logger
	now      func() time.Time
}

func NewTokenService(
	manager model.TokenManager,
	store model.RefreshTokenStore,
	sessions model.SessionStore,
	logger *logger.Logger,
) *TokenService {
	return &TokenService{
		manager:  manager,
		store:    store,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// Kept in sync with the refresh TTL of the token manager. Used only for
// persistence; cryptographic validity is checked against the JWT claims.
const (
	refreshTTL = 30 * 24 * time.Hour
)

// Issue creates a token pair for the principal and persists the refresh token.
func (s *TokenService) Issue(ctx context.Context, principal model.Principal) (accessToken string, refreshToken string, err error) {
	access, refresh, rt, err := s.newPair(principal, nil)
	if err != nil {
		return "", "", err
	}
	if err := s.store.Create(ctx, rt); err != nil {
		return "", "", fmt.Errorf("persist refresh: %w", err)
	}
	return access, refresh, nil
}

// Refresh validates the presented refresh token against the store and the
// session, then atomically replaces it with a new pair for the same session.
//
// Presenting a token that was already revoked revokes the whole session.
func (s *TokenService) Refresh(ctx context.Context, presentedRefresh string) (newAccess string, newRefresh string, principal model.Principal, err error) {
	principal, jti, err := s.manager.ParseRefreshToken(presentedRefresh)
	if err != nil {
		return "", "", model.Principal{}, fmt.Errorf("%w: %v", model.ErrTokenInvalid, err)
	}

	rt, err := s.store.GetByJTI(ctx, jti)
	if errors.Is(err, model.ErrNotFound) {
		return "", "", model.Principal{}, model.ErrTokenRevoked
	}
	if err != nil {
		return "", "", model.Principal{}, fmt.Errorf("failed to get refresh token: %w", err)
	}

	if rt.SessionID != principal.SessionID || rt.UserID != principal.UserID {
		return "", "", model.Principal{}, model.ErrTokenMismatch
	}

	if err := validateRecord(rt, hashRefresh(presentedRefresh), s.now()); err != nil {
		if errors.Is(err, model.ErrTokenRevoked) {
			s.logger.Warn("Token service: revoked refresh token presented, revoking session",
				"session_id", rt.SessionID,
				"jti", jti)
			if revokeErr := s.RevokeSession(ctx, rt.SessionID); revokeErr != nil {
				s.logger.Error("Token service: failed to revoke session after token reuse",
					"session_id", rt.SessionID,
					"error", revokeErr.Error())
			}
		}
		return "", "", model.Principal{}, err
	}

	session, err := s.sessions.GetByID(ctx, principal.SessionID)
	if errors.Is(err, model.ErrNotFound) {
		return "", "", model.Principal{}, model.ErrSessionRevoked
	}
	if err != nil {
		return "", "", model.Principal{}, fmt.Errorf("failed to get session: %w", err)
	}
	if err := session.Active(s.now()); err != nil {
		return "", "", model.Principal{}, err
	}

	rotatedFrom := rt.JTI
	access, refresh, next, err := s.newPair(principal, &rotatedFrom)
	if err != nil {
		return "", "", model.Principal{}, err
	}

	if err := s.store.Rotate(ctx, jti, next); err != nil {
		if errors.Is(err, model.ErrTokenRevoked) {
			s.logger.Info("Token service: refresh token rotated concurrently",
				"session_id", principal.SessionID,
				"jti", jti)
			return "", "", model.Principal{}, err
		}
		return "", "", model.Principal{}, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	s.logger.Debug("Token service: refresh token rotated",
		"session_id", principal.SessionID,
		"rotated_from", rotatedFrom)

	return access, refresh, principal, nil
}

// RevokeSession revokes every refresh token issued for the session.
func (s *TokenService) RevokeSession(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.store.RevokeBySession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}

// Authenticate resolves an access token to the principal it was issued for.
func (s *TokenService) Authenticate(_ context.Context, token string) (model.Principal, error) {
	return s.manager.ParseAccessToken(token)
}

// newPair generates a token pair and the refresh record to persist for it.
func (s *TokenService) newPair(principal model.Principal, rotatedFrom *string) (string, string, model.RefreshToken, error) {
	access, err := s.manager.GenerateAccessToken(principal)
	if err != nil {
		return "", "", model.RefreshToken{}, fmt.Errorf("issue access: %w", err)
	}

	refresh, jti, err := s.manager.GenerateRefreshToken(principal)
	if err != nil {
		return "", "", model.RefreshToken{}, fmt.Errorf("issue refresh: %w", err)
	}

	now := s.now()
	rt := model.RefreshToken{
		ID:             uuid.New(),
		JTI:            jti,
		UserID:         principal.UserID,
		SessionID:      principal.SessionID,
		TokenHash:      hashRefresh(refresh),
		IssuedAt:       now,
		ExpiresAt:      now.Add(refreshTTL),
		RotatedFromJTI: rotatedFrom,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	return access, refresh, rt, nil
}

func hashRefresh(token string) []byte {
	h := sha256.Sum256([]byte(token))
	return h[:]
}

func validateRecord(rt model.RefreshToken, presentedHash []byte, now time.Time) error {
	if rt.RevokedAt != nil {
		return model.ErrTokenRevoked
	}
	if now.After(rt.ExpiresAt) {
		return model.ErrTokenExpired
	}
	if subtle.ConstantTimeCompare(rt.TokenHash, presentedHash) != 1 {
		return model.ErrTokenMismatch
	}
	return nil
}
