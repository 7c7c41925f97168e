package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/beblocky/dashboard/internal/domain/auth"
	"github.com/beblocky/dashboard/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider     = (*MockAuthProvider)(nil)
	_ ports.SessionStore     = (*MemorySessionStore)(nil)
	_ ports.IdentityProvider = (*StaticIdentityProvider)(nil)
	_ ports.UserStore        = (*MemoryUserStore)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	// Deterministic values for predictable testing
	AuthURL     string
	StatePrefix string
	NoncePrefix string
	DefaultUser domainauth.Identity

	mu        sync.Mutex
	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultUser: domainauth.Identity{
			Subject: "mock-user-1",
			Email:   "mock.user@example.com",
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.mu.Lock()
	m.callCount++
	n := m.callCount
	m.mu.Unlock()

	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}
	statePrefix := m.StatePrefix
	if statePrefix == "" {
		statePrefix = "state"
	}
	noncePrefix := m.NoncePrefix
	if noncePrefix == "" {
		noncePrefix = "nonce"
	}

	return authURL, fmt.Sprintf("%s-%d", statePrefix, n), fmt.Sprintf("%s-%d", noncePrefix, n), nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	// Return a copy of the default user with a fresh expiration time
	user := m.DefaultUser
	if user.Subject == "" {
		user = domainauth.Identity{Subject: "mock-user-1", Email: "mock.user@example.com"}
	}
	user.ExpiresAt = time.Now().Add(time.Hour)
	return user, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if id == "" || !ok {
		return domainauth.Session{}, domainauth.ErrSessionNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// StaticIdentityProvider accepts a fixed set of tokens. Unknown tokens are
// rejected with ErrInvalidToken; Err, when set, simulates an unreachable provider.
type StaticIdentityProvider struct {
	Tokens map[string]domainauth.Identity
	Err    error
}

func (p *StaticIdentityProvider) VerifyToken(ctx context.Context, token string) (domainauth.Identity, error) {
	if err := ctx.Err(); err != nil {
		return domainauth.Identity{}, err
	}
	if p.Err != nil {
		return domainauth.Identity{}, p.Err
	}
	id, ok := p.Tokens[token]
	if !ok {
		return domainauth.Identity{}, fmt.Errorf("unknown token: %w", domainauth.ErrInvalidToken)
	}
	return id, nil
}

// MemoryUserStore serves profiles from a map. Err, when set, simulates an outage.
type MemoryUserStore struct {
	mu       sync.RWMutex
	Profiles map[string]domainauth.Principal
	Err      error
	calls    int
}

// NewMemoryUserStore creates a store seeded with principals keyed by ID.
func NewMemoryUserStore(principals ...domainauth.Principal) *MemoryUserStore {
	s := &MemoryUserStore{Profiles: make(map[string]domainauth.Principal, len(principals))}
	for _, p := range principals {
		s.Profiles[p.ID] = p
	}
	return s
}

func (s *MemoryUserStore) FetchProfile(ctx context.Context, userID string) (domainauth.Principal, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return domainauth.Principal{}, err
	}
	if s.Err != nil {
		return domainauth.Principal{}, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.Profiles[userID]
	if !ok {
		return domainauth.Principal{}, fmt.Errorf("user %q: %w", userID, domainauth.ErrUserNotFound)
	}
	return p, nil
}

// Calls returns how many times FetchProfile was invoked.
func (s *MemoryUserStore) Calls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls
}
