// Package httpx wires the dashboard's HTTP surface: the request gate, the
// session login flow, and the role-routed dashboard endpoints.
package httpx

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	domainauth "github.com/beblocky/dashboard/internal/domain/auth"
	"github.com/beblocky/dashboard/internal/domain/gate"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Gate     *gate.Gate
	Resolver PrincipalResolver
	// Auth runs the built-in login flow. Nil when sign-in is hosted elsewhere.
	Auth AuthServiceInterface
	// HostedSignInURL receives /sign-in and /sign-up when Auth is nil.
	HostedSignInURL string

	GateMetrics    GateRecorder
	RouteMetrics   RouteRecorder
	MetricsHandler http.Handler // nil disables /metrics

	CookieDomain string
	RetryAfter   time.Duration
	Logger       *slog.Logger
}

// NewRouter creates the chi router with the gate mounted ahead of every route.
func NewRouter(s RouterServices) http.Handler {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	g := s.Gate
	if g == nil {
		g = gate.New(gate.Config{})
	}

	cookies := SessionCookies{Names: g.Names, Domain: s.CookieDomain}
	authn := &Authenticator{
		Resolver:   s.Resolver,
		Cookies:    cookies,
		RetryAfter: s.RetryAfter,
		Logger:     logger,
	}
	dash := &DashboardHandlers{
		Auth:       authn,
		Metrics:    s.RouteMetrics,
		SignInPath: g.SignInPath,
		Logger:     logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(Recover(logger))
	r.Use(Logging(logger))
	r.Use(Gate(g, s.GateMetrics, logger))

	r.Get("/healthz", healthHandler)
	r.Head("/healthz", healthHandler)
	if s.MetricsHandler != nil {
		r.Handle("/metrics", s.MetricsHandler)
	}

	signIn := signInTarget(s, g.HomePath)
	for _, p := range signInRoutes(g) {
		r.Get(p, redirectTo(signIn))
		r.Get(p+"/*", redirectTo(signIn))
	}

	r.Get("/", dash.Dashboard)
	r.Get("/dashboard", dash.Dashboard)

	r.Route("/api", func(api chi.Router) {
		api.Get("/auth/session", SessionStatus(authn))
		if s.Auth != nil {
			ah := &AuthHandlers{Svc: s.Auth, Cookies: cookies, SignInPath: g.SignInPath, Logger: logger}
			api.Get("/auth/login", ah.Login)
			api.Get("/auth/callback", ah.Callback)
			api.Post("/auth/logout", ah.Logout)
		}
		api.With(authn.RequirePrincipal()).Get("/me", Me)
		api.With(authn.RequirePrincipal(domainauth.RoleAdmin)).Get("/admin/ping", AdminPing)
	})

	return r
}

// signInRoutes lists the mount points for the sign-in redirect: the configured
// sign-in path and every public prefix, deduplicated, without trailing slashes.
// A bare "/" is skipped so the dashboard keeps the root.
func signInRoutes(g *gate.Gate) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range append([]string{g.SignInPath}, g.Classifier.PublicPrefixes()...) {
		p = strings.TrimRight(strings.TrimSpace(p), "/")
		if p == "" || !strings.HasPrefix(p, "/") || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// signInTarget is where the sign-in and sign-up pages send the browser.
func signInTarget(s RouterServices, home string) string {
	if s.Auth == nil && s.HostedSignInURL != "" {
		return s.HostedSignInURL
	}
	if home == "" {
		home = gate.DefaultHomePath
	}
	return PathLogin + "?redirect_uri=" + url.QueryEscape(home)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
