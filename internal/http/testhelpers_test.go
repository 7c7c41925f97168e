package httpx

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	domainauth "github.com/beblocky/dashboard/internal/domain/auth"
	"github.com/beblocky/dashboard/internal/domain/gate"
	mockauth "github.com/beblocky/dashboard/internal/mocks/auth"
	"github.com/beblocky/dashboard/internal/service"
)

const (
	plainCookie  = "beblocky.session_token"
	secureCookie = "__Secure-beblocky.session_token"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testEnv bundles the in-memory collaborators behind a router.
type testEnv struct {
	identity *mockauth.StaticIdentityProvider
	users    *mockauth.MemoryUserStore
	resolver *service.SessionResolver
	gateRec  *decisionRecorder
}

func newTestEnv(principals ...domainauth.Principal) *testEnv {
	idp := &mockauth.StaticIdentityProvider{Tokens: map[string]domainauth.Identity{}}
	for _, p := range principals {
		idp.Tokens["tok-"+p.ID] = domainauth.Identity{
			Subject:   p.ID,
			Email:     p.Email,
			ExpiresAt: time.Now().Add(time.Hour),
		}
	}
	users := mockauth.NewMemoryUserStore(principals...)
	return &testEnv{
		identity: idp,
		users:    users,
		resolver: service.NewSessionResolver(service.SessionResolverOptions{
			Identity: idp,
			Users:    users,
			Logger:   discardLogger(),
		}),
		gateRec: &decisionRecorder{},
	}
}

func (e *testEnv) router(mut ...func(*RouterServices)) http.Handler {
	s := RouterServices{
		Gate:        gate.New(gate.Config{}),
		Resolver:    e.resolver,
		GateMetrics: e.gateRec,
		RetryAfter:  5 * time.Second,
		Logger:      discardLogger(),
	}
	for _, m := range mut {
		m(&s)
	}
	return NewRouter(s)
}

func get(h http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(value string) *http.Cookie {
	return &http.Cookie{Name: plainCookie, Value: value}
}

// clearedCookies returns the names of cookies the response expires.
func clearedCookies(rec *httptest.ResponseRecorder) []string {
	var names []string
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			names = append(names, c.Name)
		}
	}
	return names
}

type decisionRecorder struct {
	mu        sync.Mutex
	decisions []gate.Decision
}

func (r *decisionRecorder) ObserveGate(d gate.Decision) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decisions = append(r.decisions, d)
}

func (r *decisionRecorder) kinds() []gate.DecisionKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]gate.DecisionKind, 0, len(r.decisions))
	for _, d := range r.decisions {
		out = append(out, d.Kind)
	}
	return out
}

type routeRecorder struct {
	views []string
	errs  []error
}

func (r *routeRecorder) ObserveRoute(view string, err error) {
	r.views = append(r.views, view)
	r.errs = append(r.errs, err)
}

// fakeAuthService is a test double for service.AuthService.
type fakeAuthService struct {
	beginLoginFunc    func(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	completeLoginFunc func(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error)
	logoutFunc        func(ctx context.Context, sessionID string) error
}

func (f *fakeAuthService) BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error) {
	if f.beginLoginFunc != nil {
		return f.beginLoginFunc(ctx, redirectURL)
	}
	return &service.BeginLoginResult{
		AuthURL: "https://idp.example.com/auth?state=test-state&nonce=test-nonce",
		State:   "test-state",
		Nonce:   "test-nonce",
	}, nil
}

func (f *fakeAuthService) CompleteLogin(
	ctx context.Context,
	input service.CompleteLoginInput,
) (*service.CompleteLoginResult, error) {
	if f.completeLoginFunc != nil {
		return f.completeLoginFunc(ctx, input)
	}
	return &service.CompleteLoginResult{
		Session: domainauth.Session{
			ID:        "test-session-id",
			UserID:    "u-teacher",
			Email:     "teacher@example.com",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}, nil
}

func (f *fakeAuthService) Logout(ctx context.Context, sessionID string) error {
	if f.logoutFunc != nil {
		return f.logoutFunc(ctx, sessionID)
	}
	return nil
}

var errBoom = errors.New("boom")
