package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/cacart/internal/model"
)

// Claims represents JWT claims with token type, user and session IDs.
type Claims struct {
	jwt.RegisteredClaims
	UserID    uuid.UUID `json:"user_id"`
	SessionID uuid.UUID `json:"sid"`
	TokenType string    `json:"typ"`
}

// JWT implements TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey string
	now       func() time.Time
}

// NewJWT creates a new JWT token manager with the provided secret key.
func NewJWT(secretKey string) *JWT {
	return &JWT{secretKey: secretKey, now: time.Now}
}

var _ model.TokenManager = (*JWT)(nil)

const (
	// AccessTTL is the lifetime of access tokens.
	AccessTTL = 15 * time.Minute
	// RefreshTTL is the lifetime of refresh tokens.
	RefreshTTL  = 30 * 24 * time.Hour
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// GenerateAccessToken creates a short-lived access token.
func (j *JWT) GenerateAccessToken(principal model.Principal) (string, error) {
	tokenString, err := j.sign(principal, typeAccess, "", AccessTTL)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, nil
}

// GenerateRefreshToken creates a long-lived refresh token and returns its JTI.
func (j *JWT) GenerateRefreshToken(principal model.Principal) (string, string, error) {
	jti := uuid.NewString()
	tokenString, err := j.sign(principal, typeRefresh, jti, RefreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return tokenString, jti, nil
}

// ParseAccessToken validates an access token and returns its principal.
func (j *JWT) ParseAccessToken(tokenString string) (model.Principal, error) {
	claims, err := j.parse(tokenString, typeAccess)
	if err != nil {
		return model.Principal{}, fmt.Errorf("failed to parse access token: %w", err)
	}
	return model.Principal{UserID: claims.UserID, SessionID: claims.SessionID}, nil
}

// ParseRefreshToken validates a refresh token and returns its principal and JTI.
func (j *JWT) ParseRefreshToken(tokenString string) (model.Principal, string, error) {
	claims, err := j.parse(tokenString, typeRefresh)
	if err != nil {
		return model.Principal{}, "", fmt.Errorf("failed to parse refresh token: %w", err)
	}
	return model.Principal{UserID: claims.UserID, SessionID: claims.SessionID}, claims.ID, nil
}

func (j *JWT) sign(principal model.Principal, tokenType, jti string, ttl time.Duration) (string, error) {
	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    principal.UserID,
		SessionID: principal.SessionID,
		TokenType: tokenType,
	})
	return token.SignedString([]byte(j.secretKey))
}

func (j *JWT) parse(tokenString, tokenType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is invalid")
	}
	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	if claims.UserID == uuid.Nil || claims.SessionID == uuid.Nil {
		return nil, errors.New("token has no principal")
	}
	return claims, nil
}
