package contract

import "time"

// CredentialsRequest carries an email and password for sign-up and sign-in.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshTokenRequest exchanges a refresh token for a new token pair.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// SessionInfo describes the caller's session. Email is empty for anonymous users.
type SessionInfo struct {
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email,omitempty"`
	IsAnonymous bool      `json:"is_anonymous"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// AuthResponse is returned whenever a session is started or its tokens are rotated.
type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	Session      *SessionInfo `json:"session"`
}

// ListProductsRequest selects catalog products by search query or tab.
type ListProductsRequest struct {
	Query string `json:"query,omitempty"`
	Tab   string `json:"tab,omitempty"`
}

// ListProductsResponse holds products in presentation order.
type ListProductsResponse struct {
	Products []*Product `json:"products"`
}

// GetProductRequest selects a single product.
type GetProductRequest struct {
	ID int64 `json:"id"`
}

// Product is a catalog item.
type Product struct {
	ID          int64     `json:"id"`
	CategoryID  int64     `json:"category_id"`
	Category    string    `json:"category"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Images      []string  `json:"images"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
}
