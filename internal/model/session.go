package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionDuration is the absolute lifetime of a server-side session.
const SessionDuration = 30 * 24 * time.Hour

// SessionStore persists server-side sessions.
type SessionStore interface {
	Create(ctx context.Context, session Session) error
	GetByID(ctx context.Context, id uuid.UUID) (Session, error)
	Revoke(ctx context.Context, id uuid.UUID) error
}

// Session is an authenticated session of a user. A session outlives access
// tokens and is ended by sign-out or expiry.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// Active reports whether the session can still be used at the given moment.
func (s Session) Active(now time.Time) error {
	if s.RevokedAt != nil {
		return ErrSessionRevoked
	}
	if !now.Before(s.ExpiresAt) {
		return ErrSessionExpired
	}
	return nil
}

// SessionInfo describes the session of the calling principal.
type SessionInfo struct {
	SessionID   uuid.UUID
	UserID      uuid.UUID
	Email       string
	IsAnonymous bool
	ExpiresAt   time.Time
}

// AuthResult is returned when a session is started or its tokens are rotated.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	Session      SessionInfo
}
