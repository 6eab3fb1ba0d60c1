package model

import "github.com/google/uuid"

// Principal identifies the caller of an authenticated request.
type Principal struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
}

// TokenManager generates and validates access/refresh tokens bound to a session.
type TokenManager interface {
	GenerateAccessToken(principal Principal) (string, error)
	GenerateRefreshToken(principal Principal) (token string, jti string, err error)
	ParseAccessToken(token string) (Principal, error)
	ParseRefreshToken(token string) (principal Principal, jti string, err error)
}
