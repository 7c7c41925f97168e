package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainauth "github.com/beblocky/dashboard/internal/domain/auth"
	"github.com/beblocky/dashboard/internal/ports"
)

// SessionIdentity verifies opaque session ids against a SessionStore.
type SessionIdentity struct {
	sessions ports.SessionStore
	now      func() time.Time
}

var _ ports.IdentityProvider = (*SessionIdentity)(nil)

// NewSessionIdentity returns an IdentityProvider backed by sessions.
func NewSessionIdentity(sessions ports.SessionStore) *SessionIdentity {
	return &SessionIdentity{sessions: sessions, now: time.Now}
}

// VerifyToken treats token as a session id. Unknown and expired sessions are
// rejected with ErrInvalidToken; store failures are returned unchanged.
func (p *SessionIdentity) VerifyToken(ctx context.Context, token string) (domainauth.Identity, error) {
	sess, err := p.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, domainauth.ErrSessionNotFound) {
			return domainauth.Identity{}, fmt.Errorf("%w: %w", domainauth.ErrInvalidToken, err)
		}
		return domainauth.Identity{}, err
	}
	if sess.Expired(p.now()) {
		return domainauth.Identity{}, fmt.Errorf("%w: session expired", domainauth.ErrInvalidToken)
	}
	return domainauth.Identity{
		Subject:   sess.UserID,
		Email:     sess.Email,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}
