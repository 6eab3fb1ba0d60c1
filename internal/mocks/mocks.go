// Package mocks provides testify mocks of the service dependencies.
package mocks

import (
	"context"
	"net"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/cacart/internal/model"
)

type cleanupT interface {
	Cleanup(func())
}

// cleanup asserts expectations when the test ends, if t supports cleanups.
func cleanup(t mock.TestingT, m *mock.Mock) {
	if c, ok := t.(cleanupT); ok {
		c.Cleanup(func() { m.AssertExpectations(t) })
	}
}

// TokenManager is a mock of model.TokenManager.
type TokenManager struct {
	mock.Mock
}

func NewTokenManager(t mock.TestingT) *TokenManager {
	m := &TokenManager{}
	m.Test(t)
	cleanup(t, &m.Mock)
	return m
}

func (m *TokenManager) GenerateAccessToken(principal model.Principal) (string, error) {
	args := m.Called(principal)
	return args.String(0), args.Error(1)
}

func (m *TokenManager) GenerateRefreshToken(principal model.Principal) (string, string, error) {
	args := m.Called(principal)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *TokenManager) ParseAccessToken(token string) (model.Principal, error) {
	args := m.Called(token)
	return args.Get(0).(model.Principal), args.Error(1)
}

func (m *TokenManager) ParseRefreshToken(token string) (model.Principal, string, error) {
	args := m.Called(token)
	return args.Get(0).(model.Principal), args.String(1), args.Error(2)
}

// PasswordHasher is a mock of the password hasher used by the auth service.
type PasswordHasher struct {
	mock.Mock
}

func NewPasswordHasher(t mock.TestingT) *PasswordHasher {
	m := &PasswordHasher{}
	m.Test(t)
	cleanup(t, &m.Mock)
	return m
}

func (m *PasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *PasswordHasher) Verify(password, encoded string) (bool, error) {
	args := m.Called(password, encoded)
	return args.Bool(0), args.Error(1)
}

// ContextManager is a mock of model.ContextManager.
type ContextManager struct {
	mock.Mock
}

func NewContextManager(t mock.TestingT) *ContextManager {
	m := &ContextManager{}
	m.Test(t)
	cleanup(t, &m.Mock)
	return m
}

func (m *ContextManager) SetPrincipalToContext(ctx context.Context, principal model.Principal) context.Context {
	args := m.Called(ctx, principal)
	return args.Get(0).(context.Context)
}

func (m *ContextManager) GetPrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	args := m.Called(ctx)
	return args.Get(0).(model.Principal), args.Bool(1)
}

// SecurityLayer is a mock of model.SecurityLayer.
type SecurityLayer struct {
	mock.Mock
}

func NewSecurityLayer(t mock.TestingT) *SecurityLayer {
	m := &SecurityLayer{}
	m.Test(t)
	cleanup(t, &m.Mock)
	return m
}

func (m *SecurityLayer) Listen(protocol, addr string) (net.Listener, error) {
	args := m.Called(protocol, addr)
	ln, _ := args.Get(0).(net.Listener)
	return ln, args.Error(1)
}
