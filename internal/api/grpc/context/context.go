package context

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc/metadata"

	"github.com/dtroode/cacart/internal/model"
)

// Metadata keys used to carry the authenticated principal in the incoming gRPC context.
const (
	userIDKey    string = "user_id"
	sessionIDKey string = "session_id"
)

var _ model.ContextManager = (*Manager)(nil)

// Manager represents a gRPC context manager for principal operations.
// It stores the principal resolved by the auth interceptor in incoming
// metadata so that handlers can read it.
type Manager struct{}

// NewManager creates a new gRPC context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetPrincipalToContext returns a context whose incoming metadata carries the principal.
// Values already present under the same keys are replaced.
func (m *Manager) SetPrincipalToContext(ctx context.Context, principal model.Principal) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		md = metadata.New(nil)
	} else {
		md = md.Copy()
	}
	md.Set(userIDKey, principal.UserID.String())
	md.Set(sessionIDKey, principal.SessionID.String())

	return metadata.NewIncomingContext(ctx, md)
}

// GetPrincipalFromContext reads the principal from incoming metadata.
// It reports false if either identifier is missing or malformed.
func (m *Manager) GetPrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return model.Principal{}, false
	}

	userID, ok := parseID(md, userIDKey)
	if !ok {
		return model.Principal{}, false
	}
	sessionID, ok := parseID(md, sessionIDKey)
	if !ok {
		return model.Principal{}, false
	}

	return model.Principal{UserID: userID, SessionID: sessionID}, true
}

func parseID(md metadata.MD, key string) (uuid.UUID, bool) {
	values := md.Get(key)
	if len(values) == 0 {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(values[0])
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
