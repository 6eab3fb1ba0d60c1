package session

import "context"

// State is the authentication state of the client.
type State int

const (
	// LoggedOut means there is no usable session. It is the initial state.
	LoggedOut State = iota
	// LoggedIn means the collaborator reported a session with a user.
	LoggedIn
	// Guest means the user chose to browse without a session.
	Guest
)

func (s State) String() string {
	switch s {
	case LoggedOut:
		return "logged_out"
	case LoggedIn:
		return "logged_in"
	case Guest:
		return "guest"
	default:
		return "unknown"
	}
}

// Session is what the collaborator reports about the current session.
// Email is empty for anonymous users.
type Session struct {
	UserID    string
	Email     string
	Anonymous bool
}

// User is the minimal identity of the signed-in user.
type User struct {
	ID        string
	Email     string
	Anonymous bool
}

func userFromSession(s *Session) User {
	return User{ID: s.UserID, Email: s.Email, Anonymous: s.Anonymous}
}

// Collaborator is the authentication backend the Manager reconciles against.
// GetSession returns nil without error when there is no session.
type Collaborator interface {
	GetSession(ctx context.Context) (*Session, error)
	SignInAnonymously(ctx context.Context) (*Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
}
