// Package session keeps the client's authentication state in sync with the
// auth collaborator.
//
// Every mutating operation runs under one lock for its whole
// "call collaborator, then refresh" sequence, so operations never interleave
// and the final state is the result of the last operation to take the lock.
// Collaborator failures are logged and counted but never returned: the
// caller only observes the resulting State.
package session

import (
	"context"
	"sync"

	"github.com/dtroode/cacart/internal/logger"
	"github.com/dtroode/cacart/internal/validator"
)

// Collaborator operation names used in logs and metrics.
const (
	opGetSession         = "get_session"
	opSignInAnonymously  = "sign_in_anonymously"
	opSignInWithPassword = "sign_in_with_password"
	opSignUp             = "sign_up"
	opSignOut            = "sign_out"
)

// Manager owns the client's authentication state.
type Manager struct {
	collaborator Collaborator
	logger       *logger.Logger
	metrics      *Metrics

	// opMu serializes mutating operations.
	opMu sync.Mutex

	mu    sync.RWMutex
	state State
	user  *User
}

// NewManager creates a Manager and reconciles it with the collaborator once.
// metrics may be nil.
func NewManager(ctx context.Context, collaborator Collaborator, logger *logger.Logger, metrics *Metrics) *Manager {
	m := &Manager{
		collaborator: collaborator,
		logger:       logger,
		metrics:      metrics,
		state:        LoggedOut,
	}
	m.RefreshSession(ctx)
	return m
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsLoggedIn reports whether the collaborator holds a session for this client.
func (m *Manager) IsLoggedIn() bool {
	return m.State() == LoggedIn
}

// HasAccess reports whether the app shell should be shown: the client is
// either logged in or browsing as a guest.
func (m *Manager) HasAccess() bool {
	s := m.State()
	return s == LoggedIn || s == Guest
}

// User returns the user cached by the last successful refresh.
func (m *Manager) User() (User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return User{}, false
	}
	return *m.user, true
}

// RefreshSession asks the collaborator for the current session and updates
// the state to match it. A guest stays a guest unless a session is found.
func (m *Manager) RefreshSession(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.refresh(ctx)
}

// SignInAnonymously asks the collaborator for a new anonymous session.
// On failure the state is left unchanged.
func (m *Manager) SignInAnonymously(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if _, err := m.collaborator.SignInAnonymously(ctx); err != nil {
		m.collaboratorFailed(opSignInAnonymously, err)
		return
	}
	m.refresh(ctx)
}

// SignInWithPassword validates the form and signs in with it. Validation
// errors are returned as validator.Errors and the collaborator is not
// contacted. Collaborator failures leave the state unchanged.
func (m *Manager) SignInWithPassword(ctx context.Context, creds validator.Credentials) error {
	if err := validator.ValidateSignIn(creds); err != nil {
		return err
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	if _, err := m.collaborator.SignInWithPassword(ctx, creds.Email, creds.Password); err != nil {
		m.collaboratorFailed(opSignInWithPassword, err)
		return nil
	}
	m.refresh(ctx)
	return nil
}

// SignUp validates the form and registers a new account with it.
// It behaves like SignInWithPassword otherwise.
func (m *Manager) SignUp(ctx context.Context, creds validator.Credentials) error {
	if err := validator.ValidateSignUp(creds); err != nil {
		return err
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	if _, err := m.collaborator.SignUp(ctx, creds.Email, creds.Password); err != nil {
		m.collaboratorFailed(opSignUp, err)
		return nil
	}
	m.refresh(ctx)
	return nil
}

// SignOut ends the session and guest mode. The state is refreshed afterwards
// whatever the collaborator answered; if the sign-out call itself failed the
// client ends up LoggedOut.
func (m *Manager) SignOut(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	err := m.collaborator.SignOut(ctx)
	if err != nil {
		m.collaboratorFailed(opSignOut, err)
	}

	m.leaveGuest()
	m.refresh(ctx)

	if err != nil {
		m.transition(LoggedOut, nil)
	}
}

// Logout is the presentation-level sign-out. It goes through the
// collaborator like SignOut.
func (m *Manager) Logout(ctx context.Context) {
	m.SignOut(ctx)
}

// ContinueAsGuest enters guest mode from LoggedOut. It does nothing when the
// client is logged in or already a guest.
func (m *Manager) ContinueAsGuest() {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if m.State() != LoggedOut {
		return
	}
	m.transition(Guest, nil)
}

// CurrentUser fetches the session from the collaborator and returns its user.
// It does not change the state.
func (m *Manager) CurrentUser(ctx context.Context) (User, bool) {
	sess, err := m.collaborator.GetSession(ctx)
	if err != nil {
		m.collaboratorFailed(opGetSession, err)
		return User{}, false
	}
	if sess == nil || sess.UserID == "" {
		return User{}, false
	}
	return userFromSession(sess), true
}

// refresh must be called with opMu held.
func (m *Manager) refresh(ctx context.Context) {
	sess, err := m.collaborator.GetSession(ctx)
	if err != nil {
		m.collaboratorFailed(opGetSession, err)
		sess = nil
	}

	if sess != nil && sess.UserID != "" {
		u := userFromSession(sess)
		m.transition(LoggedIn, &u)
		return
	}

	if m.State() == Guest {
		return
	}
	m.transition(LoggedOut, nil)
}

func (m *Manager) leaveGuest() {
	if m.State() == Guest {
		m.transition(LoggedOut, nil)
	}
}

func (m *Manager) transition(next State, user *User) {
	m.mu.Lock()
	prev := m.state
	m.state = next
	m.user = user
	m.mu.Unlock()

	if prev == next {
		return
	}

	m.metrics.recordTransition(prev, next)
	m.logger.Info("Session manager: state changed",
		"from", prev.String(),
		"to", next.String())
}

func (m *Manager) collaboratorFailed(operation string, err error) {
	m.metrics.recordFailure(operation)
	m.logger.Warn("Session manager: collaborator call failed",
		"operation", operation,
		"error", err.Error())
}
