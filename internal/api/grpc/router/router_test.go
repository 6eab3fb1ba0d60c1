package router

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"

	grpccontext "github.com/dtroode/cacart/internal/api/grpc/context"
	"github.com/dtroode/cacart/internal/api/grpc/contract"
	"github.com/dtroode/cacart/internal/mocks"
	"github.com/dtroode/cacart/internal/model"
	"github.com/dtroode/cacart/internal/testutil"
)

func TestRouter_Register(t *testing.T) {
	t.Parallel()

	r := New(nil, nil, nil, mocks.NewContextManager(t), nil, testutil.MakeNoopLogger())
	s := r.Register()
	require.NotNil(t, s)

	info := s.GetServiceInfo()
	assert.Contains(t, info, contract.AuthServiceName)
	assert.Contains(t, info, contract.CatalogServiceName)
}

func TestRequiresAuth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		method string
		want   bool
	}{
		{contract.AuthGetSessionFullMethod, true},
		{contract.AuthSignOutFullMethod, true},
		{contract.AuthSignUpFullMethod, false},
		{contract.AuthSignInWithPasswordFullMethod, false},
		{contract.AuthSignInAnonymouslyFullMethod, false},
		{contract.AuthRefreshTokenFullMethod, false},
		{contract.CatalogListProductsFullMethod, false},
		{contract.CatalogGetProductFullMethod, false},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			t.Parallel()
			meta := interceptors.NewServerCallMeta(tt.method, nil, nil)
			assert.Equal(t, tt.want, requiresAuth(context.Background(), meta))
		})
	}
}

func dial(t *testing.T, s *grpc.Server) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestRouter_ProtectedMethodRequiresToken(t *testing.T) {
	t.Parallel()

	principal := model.Principal{UserID: uuid.New(), SessionID: uuid.New()}

	authService := mocks.NewAuthService(t)
	tokenService := mocks.NewTokenService(t)
	tokenService.On("Authenticate", mock.Anything, "good").Return(principal, nil)
	authService.On("GetSession", mock.Anything, principal).Return(model.SessionInfo{
		SessionID: principal.SessionID,
		UserID:    principal.UserID,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)

	r := New(authService, mocks.NewCatalogService(t), tokenService, grpccontext.NewManager(), nil, testutil.MakeNoopLogger())
	client := contract.NewAuthClient(dial(t, r.Register()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.GetSession(ctx, &emptypb.Empty{})
	st, _ := status.FromError(err)
	assert.Equal(t, codes.Unauthenticated, st.Code())

	authed := metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer good")
	info, err := client.GetSession(authed, &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, principal.SessionID.String(), info.SessionID)
}

func TestRouter_CatalogIsPublic(t *testing.T) {
	t.Parallel()

	catalogService := mocks.NewCatalogService(t)
	catalogService.On("List", mock.Anything, "", model.TabHome).Return([]model.Product{{ID: 1, Name: "Serum"}}, nil)

	r := New(mocks.NewAuthService(t), catalogService, mocks.NewTokenService(t), grpccontext.NewManager(), nil, testutil.MakeNoopLogger())
	client := contract.NewCatalogClient(dial(t, r.Register()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.ListProducts(ctx, &contract.ListProductsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Serum", resp.Products[0].Name)
}
