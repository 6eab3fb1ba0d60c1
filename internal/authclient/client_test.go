package authclient

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/dtroode/cacart/internal/api/grpc/contract"
	"github.com/dtroode/cacart/internal/config"
	"github.com/dtroode/cacart/internal/session"
	"github.com/dtroode/cacart/internal/testutil"
)

// fakeBackend is an in-memory auth and catalog server.
type fakeBackend struct {
	contract.UnimplementedAuthServer
	contract.UnimplementedCatalogServer

	mu       sync.Mutex
	seq      int
	sessions map[string]*contract.SessionInfo
	access   map[string]string
	refresh  map[string]string
	refreshN int

	signOutErr error
	delay      time.Duration
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		sessions: map[string]*contract.SessionInfo{},
		access:   map[string]string{},
		refresh:  map[string]string{},
	}
}

func (f *fakeBackend) issueLocked(sessionID string) *contract.AuthResponse {
	f.seq++
	at := fmt.Sprintf("at-%d", f.seq)
	rt := fmt.Sprintf("rt-%d", f.seq)
	f.access[at] = sessionID
	f.refresh[rt] = sessionID
	info := *f.sessions[sessionID]
	return &contract.AuthResponse{AccessToken: at, RefreshToken: rt, Session: &info}
}

func (f *fakeBackend) startLocked(email string) *contract.AuthResponse {
	sid := fmt.Sprintf("s-%d", len(f.sessions)+1)
	f.sessions[sid] = &contract.SessionInfo{
		SessionID:   sid,
		UserID:      "u-" + sid,
		Email:       email,
		IsAnonymous: email == "",
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	return f.issueLocked(sid)
}

// expireAccessTokens makes every issued access token invalid.
func (f *fakeBackend) expireAccessTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access = map[string]string{}
}

// revokeAll ends every session.
func (f *fakeBackend) revokeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = map[string]*contract.SessionInfo{}
	f.access = map[string]string{}
	f.refresh = map[string]string{}
}

func (f *fakeBackend) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshN
}

func (f *fakeBackend) sessionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

func (f *fakeBackend) principalLocked(ctx context.Context) (string, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	values := md.Get("authorization")
	if len(values) == 0 {
		return "", status.Error(codes.Unauthenticated, "missing authorization token")
	}
	sid, ok := f.access[strings.TrimPrefix(values[0], "Bearer ")]
	if !ok {
		return "", status.Error(codes.Unauthenticated, "invalid authorization token")
	}
	return sid, nil
}

func (f *fakeBackend) SignInAnonymously(ctx context.Context, _ *emptypb.Empty) (*contract.AuthResponse, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.startLocked(""), nil
}

func (f *fakeBackend) SignInWithPassword(_ context.Context, in *contract.CredentialsRequest) (*contract.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if in.Password != "Abcdef1!" {
		return nil, status.Error(codes.Unauthenticated, "invalid login credentials")
	}
	return f.startLocked(in.Email), nil
}

func (f *fakeBackend) SignUp(_ context.Context, in *contract.CredentialsRequest) (*contract.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.startLocked(in.Email), nil
}

func (f *fakeBackend) RefreshToken(_ context.Context, in *contract.RefreshTokenRequest) (*contract.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sid, ok := f.refresh[in.RefreshToken]
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "invalid refresh token")
	}
	delete(f.refresh, in.RefreshToken)
	f.refreshN++
	return f.issueLocked(sid), nil
}

func (f *fakeBackend) GetSession(ctx context.Context, _ *emptypb.Empty) (*contract.SessionInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sid, err := f.principalLocked(ctx)
	if err != nil {
		return nil, err
	}
	info := *f.sessions[sid]
	return &info, nil
}

func (f *fakeBackend) SignOut(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signOutErr != nil {
		return nil, f.signOutErr
	}
	sid, err := f.principalLocked(ctx)
	if err != nil {
		return nil, err
	}
	delete(f.sessions, sid)
	for k, v := range f.access {
		if v == sid {
			delete(f.access, k)
		}
	}
	for k, v := range f.refresh {
		if v == sid {
			delete(f.refresh, k)
		}
	}
	return &emptypb.Empty{}, nil
}

func (f *fakeBackend) ListProducts(_ context.Context, in *contract.ListProductsRequest) (*contract.ListProductsResponse, error) {
	if in.Tab == "sale" {
		return nil, status.Error(codes.InvalidArgument, "unknown tab")
	}
	return &contract.ListProductsResponse{Products: []*contract.Product{{ID: 1, Name: "Fisheye Lens"}}}, nil
}

func (f *fakeBackend) GetProduct(_ context.Context, in *contract.GetProductRequest) (*contract.Product, error) {
	if in.ID != 1 {
		return nil, status.Errorf(codes.NotFound, "product %d not found", in.ID)
	}
	return &contract.Product{ID: 1, Name: "Fisheye Lens"}, nil
}

func newTestClient(t *testing.T, backend *fakeBackend, timeout time.Duration) *Client {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	contract.RegisterAuthServer(s, backend)
	contract.RegisterCatalogServer(s, backend)
	go func() { _ = s.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
		s.Stop()
	})

	return New(conn, timeout, testutil.MakeNoopLogger())
}

func TestClient_GetSession_WithoutTokens(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, newFakeBackend(), time.Second)

	s, err := c.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestClient_SignInAnonymously_ThenGetSession(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, newFakeBackend(), time.Second)
	ctx := context.Background()

	started, err := c.SignInAnonymously(ctx)
	require.NoError(t, err)
	assert.True(t, started.Anonymous)

	s, err := c.GetSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, started.UserID, s.UserID)
	assert.Empty(t, s.Email)
}

func TestClient_SignInWithPassword(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, newFakeBackend(), time.Second)
	ctx := context.Background()

	_, err := c.SignInWithPassword(ctx, "a@b.co", "wrong")
	require.Error(t, err)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	s, err := c.SignInWithPassword(ctx, "a@b.co", "Abcdef1!")
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", s.Email)
	assert.False(t, s.Anonymous)
}

func TestClient_GetSession_RotatesExpiredAccessToken(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	c := newTestClient(t, backend, time.Second)
	ctx := context.Background()

	_, err := c.SignUp(ctx, "a@b.co", "Abcdef1!")
	require.NoError(t, err)
	before := c.snapshot()

	backend.expireAccessTokens()

	s, err := c.GetSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "a@b.co", s.Email)
	assert.NotEqual(t, before, c.snapshot())
	assert.Equal(t, 1, backend.refreshCount())
}

func TestClient_GetSession_RevokedSession(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	c := newTestClient(t, backend, time.Second)
	ctx := context.Background()

	_, err := c.SignInAnonymously(ctx)
	require.NoError(t, err)

	backend.revokeAll()

	s, err := c.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Equal(t, tokens{}, c.snapshot())
}

func TestClient_SignOut(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		backend := newFakeBackend()
		c := newTestClient(t, backend, time.Second)
		ctx := context.Background()

		_, err := c.SignInAnonymously(ctx)
		require.NoError(t, err)

		require.NoError(t, c.SignOut(ctx))
		assert.Equal(t, 0, backend.sessionCount())

		s, err := c.GetSession(ctx)
		require.NoError(t, err)
		assert.Nil(t, s)
	})

	t.Run("backend failure still drops tokens", func(t *testing.T) {
		t.Parallel()

		backend := newFakeBackend()
		backend.signOutErr = status.Error(codes.Unavailable, "maintenance")
		c := newTestClient(t, backend, time.Second)
		ctx := context.Background()

		_, err := c.SignInAnonymously(ctx)
		require.NoError(t, err)

		err = c.SignOut(ctx)
		require.Error(t, err)
		assert.Equal(t, codes.Unavailable, status.Code(err))
		assert.Equal(t, tokens{}, c.snapshot())
	})

	t.Run("without session", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, newFakeBackend(), time.Second)
		require.NoError(t, c.SignOut(context.Background()))
	})
}

func TestClient_CallTimeout(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	backend.delay = time.Second
	c := newTestClient(t, backend, 20*time.Millisecond)

	_, err := c.SignInAnonymously(context.Background())
	require.Error(t, err)
	assert.Equal(t, codes.DeadlineExceeded, status.Code(err))
}

func TestClient_Catalog(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, newFakeBackend(), time.Second)
	ctx := context.Background()

	products, err := c.ListProducts(ctx, "", "home")
	require.NoError(t, err)
	require.Len(t, products, 1)

	_, err = c.ListProducts(ctx, "", "sale")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	p, err := c.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Fisheye Lens", p.Name)

	_, err = c.GetProduct(ctx, 42)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestClient_DrivesSessionManager(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	c := newTestClient(t, backend, time.Second)
	ctx := context.Background()

	m := session.NewManager(ctx, c, testutil.MakeNoopLogger(), nil)
	require.Equal(t, session.LoggedOut, m.State())

	m.SignInAnonymously(ctx)
	require.True(t, m.IsLoggedIn())

	backend.expireAccessTokens()
	m.RefreshSession(ctx)
	require.True(t, m.IsLoggedIn(), "expired access token is rotated transparently")

	m.SignOut(ctx)
	assert.False(t, m.IsLoggedIn())
	assert.Equal(t, 0, backend.sessionCount())
}

func TestDial(t *testing.T) {
	t.Parallel()

	c, err := Dial(&config.ClientConfig{ServerAddr: "localhost:0", CallTimeout: time.Second}, testutil.MakeNoopLogger())
	require.NoError(t, err)
	assert.NoError(t, c.Close())

	_, err = Dial(&config.ClientConfig{ServerAddr: "localhost:0", EnableTLS: true, CAFileName: "/nonexistent/ca.pem", CallTimeout: time.Second}, testutil.MakeNoopLogger())
	assert.Error(t, err)
}
