package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/cacart/internal/model"
)

func newPrincipal() model.Principal {
	return model.Principal{UserID: uuid.New(), SessionID: uuid.New()}
}

func TestJWT_AccessToken_Roundtrip(t *testing.T) {
	j := NewJWT("secret")
	p := newPrincipal()

	access, err := j.GenerateAccessToken(p)
	require.NoError(t, err)
	got, err := j.ParseAccessToken(access)
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestJWT_RefreshToken_Roundtrip(t *testing.T) {
	j := NewJWT("secret")
	p := newPrincipal()

	refresh, jti, err := j.GenerateRefreshToken(p)
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	gotPrincipal, gotJTI, err := j.ParseRefreshToken(refresh)
	require.NoError(t, err)
	require.Equal(t, p, gotPrincipal)
	require.Equal(t, jti, gotJTI)
}

func TestJWT_TokenType_Mismatch(t *testing.T) {
	j := NewJWT("secret")
	p := newPrincipal()

	access, err := j.GenerateAccessToken(p)
	require.NoError(t, err)
	_, _, err = j.ParseRefreshToken(access)
	require.Error(t, err)

	refresh, _, err := j.GenerateRefreshToken(p)
	require.NoError(t, err)
	_, err = j.ParseAccessToken(refresh)
	require.Error(t, err)
}

func TestJWT_WrongSecret(t *testing.T) {
	access, err := NewJWT("secret").GenerateAccessToken(newPrincipal())
	require.NoError(t, err)

	_, err = NewJWT("other").ParseAccessToken(access)
	require.Error(t, err)
}

func TestJWT_Expired(t *testing.T) {
	j := NewJWT("secret")
	issued := time.Now().Add(-time.Hour)
	j.now = func() time.Time { return issued }

	access, err := j.GenerateAccessToken(newPrincipal())
	require.NoError(t, err)

	j.now = time.Now
	_, err = j.ParseAccessToken(access)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWT_RejectsMissingPrincipal(t *testing.T) {
	j := NewJWT("secret")

	access, err := j.GenerateAccessToken(model.Principal{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = j.ParseAccessToken(access)
	require.Error(t, err)
}

func TestJWT_RejectsOtherSigningMethod(t *testing.T) {
	j := NewJWT("secret")
	p := newPrincipal()

	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: p.UserID, SessionID: p.SessionID, TokenType: typeAccess})
	s, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = j.ParseAccessToken(s)
	require.Error(t, err)
}
