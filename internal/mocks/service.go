package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/cacart/internal/model"
)

// AuthService is a mock of the auth service used by gRPC handlers.
type AuthService struct {
	mock.Mock
}

func NewAuthService(t mock.TestingT) *AuthService {
	m := &AuthService{}
	m.Test(t)
	cleanup(t, &m.Mock)
	return m
}

func (m *AuthService) SignUp(ctx context.Context, email, password string) (model.AuthResult, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(model.AuthResult), args.Error(1)
}

func (m *AuthService) SignInWithPassword(ctx context.Context, email, password string) (model.AuthResult, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(model.AuthResult), args.Error(1)
}

func (m *AuthService) SignInAnonymously(ctx context.Context) (model.AuthResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.AuthResult), args.Error(1)
}

func (m *AuthService) RefreshToken(ctx context.Context, refreshToken string) (model.AuthResult, error) {
	args := m.Called(ctx, refreshToken)
	return args.Get(0).(model.AuthResult), args.Error(1)
}

func (m *AuthService) GetSession(ctx context.Context, principal model.Principal) (model.SessionInfo, error) {
	args := m.Called(ctx, principal)
	return args.Get(0).(model.SessionInfo), args.Error(1)
}

func (m *AuthService) SignOut(ctx context.Context, principal model.Principal) error {
	return m.Called(ctx, principal).Error(0)
}

// CatalogService is a mock of the catalog service used by gRPC handlers.
type CatalogService struct {
	mock.Mock
}

func NewCatalogService(t mock.TestingT) *CatalogService {
	m := &CatalogService{}
	m.Test(t)
	cleanup(t, &m.Mock)
	return m
}

func (m *CatalogService) List(ctx context.Context, query string, tab model.Tab) ([]model.Product, error) {
	args := m.Called(ctx, query, tab)
	products, _ := args.Get(0).([]model.Product)
	return products, args.Error(1)
}

func (m *CatalogService) Get(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Product), args.Error(1)
}

// TokenService is a mock of the token authenticator used by the auth middleware.
type TokenService struct {
	mock.Mock
}

func NewTokenService(t mock.TestingT) *TokenService {
	m := &TokenService{}
	m.Test(t)
	cleanup(t, &m.Mock)
	return m
}

func (m *TokenService) Authenticate(ctx context.Context, token string) (model.Principal, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(model.Principal), args.Error(1)
}
