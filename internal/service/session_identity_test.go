package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/beblocky/dashboard/internal/domain/auth"
	mocks "github.com/beblocky/dashboard/internal/mocks/auth"
)

func TestSessionIdentity_VerifyToken(t *testing.T) {
	ctx := context.Background()
	sessions := mocks.NewMemorySessionStore()
	exp := time.Now().Add(time.Hour)
	require.NoError(t, sessions.Save(ctx, domainauth.Session{ID: "s1", UserID: "u1", Email: "u1@example.com", ExpiresAt: exp}))
	require.NoError(t, sessions.Save(ctx, domainauth.Session{ID: "old", UserID: "u2", ExpiresAt: time.Now().Add(-time.Second)}))

	p := NewSessionIdentity(sessions)

	id, err := p.VerifyToken(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domainauth.Identity{Subject: "u1", Email: "u1@example.com", ExpiresAt: exp}, id)

	_, err = p.VerifyToken(ctx, "missing")
	assert.ErrorIs(t, err, domainauth.ErrInvalidToken)

	_, err = p.VerifyToken(ctx, "old")
	assert.ErrorIs(t, err, domainauth.ErrInvalidToken)
}

func TestSessionIdentity_VerifyToken_StoreError(t *testing.T) {
	outage := errors.New("i/o timeout")
	p := NewSessionIdentity(&mockSessionStore{
		getFunc: func(context.Context, string) (domainauth.Session, error) {
			return domainauth.Session{}, outage
		},
	})

	_, err := p.VerifyToken(context.Background(), "s1")
	assert.ErrorIs(t, err, outage)
	assert.NotErrorIs(t, err, domainauth.ErrInvalidToken)
}
