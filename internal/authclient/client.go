// Package authclient talks to the shop backend over gRPC and implements
// session.Collaborator. Tokens are kept in memory only.
package authclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/dtroode/cacart/internal/api/grpc/contract"
	"github.com/dtroode/cacart/internal/config"
	"github.com/dtroode/cacart/internal/logger"
	"github.com/dtroode/cacart/internal/session"
)

var _ session.Collaborator = (*Client)(nil)

type tokens struct {
	access  string
	refresh string
}

// Client is a gRPC client of the auth and catalog services.
type Client struct {
	auth    contract.AuthClient
	catalog contract.CatalogClient
	closer  io.Closer
	timeout time.Duration
	logger  *logger.Logger

	mu     sync.Mutex
	tokens tokens

	// refreshMu serializes token rotation.
	refreshMu sync.Mutex
}

// Dial connects to the backend described by cfg.
func Dial(cfg *config.ClientConfig, logger *logger.Logger) (*Client, error) {
	creds := insecure.NewCredentials()
	if cfg.EnableTLS {
		tlsConfig, err := loadTLSConfig(cfg.CAFileName)
		if err != nil {
			return nil, err
		}
		creds = credentials.NewTLS(tlsConfig)
	}

	conn, err := grpc.NewClient(cfg.ServerAddr,
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(contract.CodecName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create grpc client: %w", err)
	}

	c := New(conn, cfg.CallTimeout, logger)
	c.closer = conn
	return c, nil
}

func loadTLSConfig(caFileName string) (*tls.Config, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if caFileName == "" {
		return tlsConfig, nil
	}

	pem, err := os.ReadFile(caFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", caFileName)
	}
	tlsConfig.RootCAs = pool
	return tlsConfig, nil
}

// New creates a Client on an existing connection. Every call is bounded by timeout.
func New(cc grpc.ClientConnInterface, timeout time.Duration, logger *logger.Logger) *Client {
	return &Client{
		auth:    contract.NewAuthClient(cc),
		catalog: contract.NewCatalogClient(cc),
		timeout: timeout,
		logger:  logger,
	}
}

// Close closes the underlying connection if the Client owns it.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// GetSession returns the current session, or nil if the client holds no
// session or the backend no longer accepts it.
func (c *Client) GetSession(ctx context.Context) (*session.Session, error) {
	if c.snapshot() == (tokens{}) {
		return nil, nil
	}

	var info *contract.SessionInfo
	err := c.withAuth(ctx, func(ctx context.Context) error {
		var err error
		info, err = c.auth.GetSession(ctx, &emptypb.Empty{})
		return err
	})
	if status.Code(err) == codes.Unauthenticated {
		c.logger.Debug("Auth client: session rejected, dropping tokens",
			"error", err.Error())
		c.clear()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return toSession(info), nil
}

// SignInAnonymously starts a session for a new anonymous user.
func (c *Client) SignInAnonymously(ctx context.Context) (*session.Session, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.auth.SignInAnonymously(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, fmt.Errorf("failed to sign in anonymously: %w", err)
	}
	return c.started(resp)
}

// SignInWithPassword starts a session for an existing account.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*session.Session, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.auth.SignInWithPassword(ctx, &contract.CredentialsRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}
	return c.started(resp)
}

// SignUp registers an account and starts its session.
func (c *Client) SignUp(ctx context.Context, email, password string) (*session.Session, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.auth.SignUp(ctx, &contract.CredentialsRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to sign up: %w", err)
	}
	return c.started(resp)
}

// SignOut ends the session on the backend. Local tokens are dropped whatever
// the backend answers.
func (c *Client) SignOut(ctx context.Context) error {
	defer c.clear()

	if c.snapshot() == (tokens{}) {
		return nil
	}

	err := c.withAuth(ctx, func(ctx context.Context) error {
		_, err := c.auth.SignOut(ctx, &emptypb.Empty{})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

// ListProducts returns catalog products for a search query or tab.
func (c *Client) ListProducts(ctx context.Context, query, tab string) ([]*contract.Product, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.catalog.ListProducts(ctx, &contract.ListProductsRequest{Query: query, Tab: tab})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return resp.Products, nil
}

// GetProduct returns a single catalog product.
func (c *Client) GetProduct(ctx context.Context, id int64) (*contract.Product, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	p, err := c.catalog.GetProduct(ctx, &contract.GetProductRequest{ID: id})
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// withAuth runs call with the access token. If the token is rejected it
// rotates the tokens once and retries.
func (c *Client) withAuth(ctx context.Context, call func(ctx context.Context) error) error {
	held := c.snapshot()

	err := c.authorized(ctx, held.access, call)
	if status.Code(err) != codes.Unauthenticated || held.refresh == "" {
		return err
	}

	if rerr := c.rotate(ctx, held.refresh); rerr != nil {
		return rerr
	}
	return c.authorized(ctx, c.snapshot().access, call)
}

func (c *Client) authorized(ctx context.Context, access string, call func(ctx context.Context) error) error {
	if access == "" {
		return status.Error(codes.Unauthenticated, "no access token")
	}
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+access)
	return call(ctx)
}

// rotate exchanges refresh for a new token pair unless another caller has
// already rotated it.
func (c *Client) rotate(ctx context.Context, refresh string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if current := c.snapshot(); current.refresh != refresh {
		if current.access == "" {
			return status.Error(codes.Unauthenticated, "session ended")
		}
		return nil
	}

	ctx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.auth.RefreshToken(ctx, &contract.RefreshTokenRequest{RefreshToken: refresh})
	if err != nil {
		return err
	}

	c.logger.Debug("Auth client: tokens rotated")
	c.store(tokens{access: resp.AccessToken, refresh: resp.RefreshToken})
	return nil
}

func (c *Client) started(resp *contract.AuthResponse) (*session.Session, error) {
	if resp.AccessToken == "" || resp.Session == nil {
		return nil, errors.New("backend returned an incomplete session")
	}
	c.store(tokens{access: resp.AccessToken, refresh: resp.RefreshToken})
	return toSession(resp.Session), nil
}

func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) snapshot() tokens {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens
}

func (c *Client) store(t tokens) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = t
}

func (c *Client) clear() {
	c.store(tokens{})
}

func toSession(info *contract.SessionInfo) *session.Session {
	if info == nil {
		return nil
	}
	return &session.Session{
		UserID:    info.UserID,
		Email:     info.Email,
		Anonymous: info.IsAnonymous,
	}
}
