package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/beblocky/dashboard/internal/domain/auth"
	"github.com/beblocky/dashboard/internal/domain/gate"
)

var (
	teacher = domainauth.Principal{ID: "u-teacher", Role: domainauth.RoleTeacher, Email: "teacher@example.com", Name: "Tess"}
	admin   = domainauth.Principal{ID: "u-admin", Role: domainauth.RoleAdmin, Email: "admin@example.com", Name: "Ada"}
	org     = domainauth.Principal{ID: "u-org", Role: domainauth.RoleOrganization, Email: "org@example.com"}
)

func TestRouter_NoCookieOnProtectedPageRedirectsToSignIn(t *testing.T) {
	env := newTestEnv(teacher)
	rec := get(env.router(), "/dashboard")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/sign-in", rec.Header().Get("Location"))
	assert.Empty(t, rec.Body.String())
	assert.Zero(t, env.users.Calls(), "gate must answer before any profile lookup")
}

func TestRouter_SessionOnSignInRedirectsHome(t *testing.T) {
	env := newTestEnv(teacher)
	rec := get(env.router(), "/sign-in", sessionCookie("tok-u-teacher"))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestRouter_SignInWithoutSessionStartsLogin(t *testing.T) {
	env := newTestEnv()
	h := env.router(func(s *RouterServices) { s.Auth = &fakeAuthService{} })

	for _, path := range []string{"/sign-in", "/sign-up", "/sign-in/reset"} {
		t.Run(path, func(t *testing.T) {
			rec := get(h, path)
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/api/auth/login?redirect_uri=%2F", rec.Header().Get("Location"))
		})
	}
}

func TestRouter_ConfiguredSignInPath(t *testing.T) {
	env := newTestEnv()
	h := env.router(func(s *RouterServices) {
		s.Gate = gate.New(gate.Config{PublicPaths: []string{"/login", "/register/"}, SignInPath: "/login"})
		s.Auth = &fakeAuthService{}
	})

	rec := get(h, "/dashboard")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))

	for _, path := range []string{"/login", "/login/reset", "/register/parent"} {
		rec = get(h, path)
		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, "/api/auth/login?redirect_uri=%2F", rec.Header().Get("Location"), path)
	}

	rec = get(h, "/sign-in")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"), "old sign-in page is protected now")
}

func TestSignInRoutes(t *testing.T) {
	g := gate.New(gate.Config{PublicPaths: []string{"/sign-in", "/sign-up/", "/", " "}, SignInPath: "/sign-in"})
	assert.Equal(t, []string{"/sign-in", "/sign-up"}, signInRoutes(g))
}

func TestRouter_HostedSignIn(t *testing.T) {
	env := newTestEnv()
	h := env.router(func(s *RouterServices) { s.HostedSignInURL = "https://accounts.beblocky.com/sign-in" })

	rec := get(h, "/sign-in")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://accounts.beblocky.com/sign-in", rec.Header().Get("Location"))

	// Login flow routes are only mounted with an auth service.
	rec = get(h, PathLogin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_DashboardByRole(t *testing.T) {
	env := newTestEnv(teacher, admin)
	h := env.router()

	tests := []struct {
		token string
		view  string
		id    string
	}{
		{"tok-u-teacher", "teacher_dashboard", "u-teacher"},
		{"tok-u-admin", "admin_dashboard", "u-admin"},
	}
	for _, tt := range tests {
		t.Run(tt.view, func(t *testing.T) {
			for _, path := range []string{"/", "/dashboard"} {
				rec := get(h, path, sessionCookie(tt.token))
				require.Equal(t, http.StatusOK, rec.Code, path)

				var body struct {
					View      string               `json:"view"`
					Principal domainauth.Principal `json:"principal"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.view, body.View)
				assert.Equal(t, tt.id, body.Principal.ID)
			}
		})
	}
}

func TestRouter_SecureCookieTakesPrecedence(t *testing.T) {
	env := newTestEnv(teacher, admin)
	rec := get(env.router(), "/dashboard",
		&http.Cookie{Name: plainCookie, Value: "tok-u-teacher"},
		&http.Cookie{Name: secureCookie, Value: "tok-u-admin"},
	)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin_dashboard")
}

func TestRouter_StoreUnavailableRendersRetry(t *testing.T) {
	env := newTestEnv(teacher)
	env.users.Err = fmt.Errorf("dial tcp: %w", errBoom)

	rec := get(env.router(), "/dashboard", sessionCookie("tok-u-teacher"))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"), "an outage must not redirect")
	assert.Equal(t, "5", rec.Header().Get("Retry-After"))
	assert.Empty(t, clearedCookies(rec), "an outage must not sign the user out")

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "store_unavailable", body["error"])
	assert.Equal(t, true, body["retryable"])
}

func TestRouter_IdentityProviderUnreachableRendersRetry(t *testing.T) {
	env := newTestEnv(teacher)
	env.identity.Err = errBoom

	rec := get(env.router(), "/dashboard", sessionCookie("tok-u-teacher"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_AuthFailuresClearCookiesAndRedirect(t *testing.T) {
	env := newTestEnv(teacher)
	// Valid token whose profile was deleted.
	env.identity.Tokens["tok-orphan"] = domainauth.Identity{Subject: "u-gone"}
	h := env.router()

	for name, token := range map[string]string{"invalid token": "forged", "orphaned session": "tok-orphan"} {
		t.Run(name, func(t *testing.T) {
			rec := get(h, "/dashboard", sessionCookie(token))

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/sign-in", rec.Header().Get("Location"))
			assert.ElementsMatch(t, []string{secureCookie, plainCookie}, clearedCookies(rec))
		})
	}
}

func TestRouter_UnsupportedRoleIsAnError(t *testing.T) {
	env := newTestEnv(org)
	routes := &routeRecorder{}
	h := env.router(func(s *RouterServices) { s.RouteMetrics = routes })

	rec := get(h, "/dashboard", sessionCookie("tok-u-org"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
	assert.JSONEq(t, `{"error":"unsupported_role","message":"contact support"}`, rec.Body.String())
	require.Len(t, routes.errs, 1)
	assert.Error(t, routes.errs[0])
}

func TestRouter_ExcludedPathsBypassGate(t *testing.T) {
	env := newTestEnv()
	h := env.router()

	rec := get(h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = get(h, "/static/app.css")
	assert.Equal(t, http.StatusNotFound, rec.Code, "static assets are never redirected")

	assert.Equal(t, []gate.DecisionKind{gate.Allow, gate.Allow}, env.gateRec.kinds())
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	env := newTestEnv()
	h := env.router(func(s *RouterServices) {
		s.MetricsHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("# metrics"))
		})
	})

	rec := get(h, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics", rec.Body.String())
}

func TestRouter_APIMe(t *testing.T) {
	env := newTestEnv(teacher)
	h := env.router()

	rec := get(h, "/api/me", sessionCookie("tok-u-teacher"))
	require.Equal(t, http.StatusOK, rec.Code)
	var p domainauth.Principal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, teacher, p)

	rec = get(h, "/api/me", sessionCookie("forged"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = get(h, "/api/me")
	assert.Equal(t, http.StatusFound, rec.Code, "the gate answers before the API sees a cookieless request")
}

func TestRouter_AdminOnly(t *testing.T) {
	env := newTestEnv(teacher, admin)
	h := env.router()

	rec := get(h, "/api/admin/ping", sessionCookie("tok-u-teacher"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = get(h, "/api/admin/ping", sessionCookie("tok-u-admin"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","user_id":"u-admin"}`, rec.Body.String())

	env.users.Err = errBoom
	rec = get(h, "/api/admin/ping", sessionCookie("tok-u-admin"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_SessionStatus(t *testing.T) {
	env := newTestEnv(teacher)
	h := env.router()

	rec := get(h, PathSession)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"authenticated":false}`, rec.Body.String())
	assert.Empty(t, clearedCookies(rec))

	rec = get(h, PathSession, sessionCookie("tok-u-teacher"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":true`)
	assert.Contains(t, rec.Body.String(), `"role":"teacher"`)

	rec = get(h, PathSession, sessionCookie("forged"))
	assert.JSONEq(t, `{"authenticated":false}`, rec.Body.String())
	assert.NotEmpty(t, clearedCookies(rec))

	env.users.Err = errBoom
	rec = get(h, PathSession, sessionCookie("tok-u-teacher"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
