package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters and internal/data; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/beblocky/dashboard/internal/domain/auth"
)

// IdentityProvider verifies a session token presented by a browser.
type IdentityProvider interface {
	// VerifyToken returns the identity behind token. A token the provider rejects
	// yields an error wrapping domainauth.ErrInvalidToken; any other error means the
	// provider itself could not be consulted.
	VerifyToken(ctx context.Context, token string) (domainauth.Identity, error)
}

// UserStore loads dashboard profiles.
type UserStore interface {
	// FetchProfile returns the principal for userID. A missing profile yields an
	// error wrapping domainauth.ErrUserNotFound; any other error means the store
	// could not be reached.
	FetchProfile(ctx context.Context, userID string) (domainauth.Principal, error)
}

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// AuthProvider initiates and completes an interactive login against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// SessionStore persists and retrieves server-side sessions for the cookie-session scheme.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

type tokenExpiryKey struct{}

// WithTokenExpiry records the verified token's expiry on ctx so that UserStore
// decorators can bound any cached profile by the token's own validity.
func WithTokenExpiry(ctx context.Context, expiresAt time.Time) context.Context {
	if expiresAt.IsZero() {
		return ctx
	}
	return context.WithValue(ctx, tokenExpiryKey{}, expiresAt)
}

// TokenExpiryFromContext returns the expiry recorded by WithTokenExpiry.
func TokenExpiryFromContext(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(tokenExpiryKey{}).(time.Time)
	return t, ok
}
