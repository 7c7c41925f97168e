package gate

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractToken_SecurePrefixWins(t *testing.T) {
	tests := []struct {
		name    string
		names   CookieNames
		cookies map[string]string
		want    string
		wantOK  bool
	}{
		{
			name:    "both present",
			names:   DefaultCookieNames(),
			cookies: map[string]string{"beblocky.session_token": "plain", "__Secure-beblocky.session_token": "secure"},
			want:    "secure",
			wantOK:  true,
		},
		{
			name:    "both present, plain configured first",
			names:   CookieNames{"beblocky.session_token", "__Secure-beblocky.session_token"},
			cookies: map[string]string{"beblocky.session_token": "plain", "__Secure-beblocky.session_token": "secure"},
			want:    "secure",
			wantOK:  true,
		},
		{
			name:    "host prefix counts as secure",
			names:   CookieNames{"__session", "__Host-session"},
			cookies: map[string]string{"__session": "plain", "__Host-session": "host"},
			want:    "host",
			wantOK:  true,
		},
		{
			name:    "plain only",
			names:   DefaultCookieNames(),
			cookies: map[string]string{"beblocky.session_token": "plain"},
			want:    "plain",
			wantOK:  true,
		},
		{
			name:    "empty secure value falls through",
			names:   DefaultCookieNames(),
			cookies: map[string]string{"__Secure-beblocky.session_token": "", "beblocky.session_token": "plain"},
			want:    "plain",
			wantOK:  true,
		},
		{
			name:    "unrecognized names ignored",
			names:   DefaultCookieNames(),
			cookies: map[string]string{"session_id": "other"},
		},
		{
			name:  "no cookies",
			names: DefaultCookieNames(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractToken(tt.cookies, tt.names)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCookieNames_Normalize(t *testing.T) {
	got := CookieNames{" a ", "", "__Secure-a", "b", "a", "__Host-b"}.Normalize()
	assert.Equal(t, CookieNames{"__Secure-a", "__Host-b", "a", "b"}, got)
}

func TestCookieNames_Issue(t *testing.T) {
	names := DefaultCookieNames()
	assert.Equal(t, "__Secure-beblocky.session_token", names.Issue(true))
	assert.Equal(t, "beblocky.session_token", names.Issue(false))
	assert.Equal(t, "only", CookieNames{"only"}.Issue(true))
	assert.Empty(t, CookieNames{}.Issue(true))
}

func TestExtractFromRequest_FirstDuplicateWins(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Add("Cookie", "beblocky.session_token=first; beblocky.session_token=second")

	got, ok := ExtractFromRequest(req, DefaultCookieNames())
	require.True(t, ok)
	assert.Equal(t, "first", got)
}

func TestClassifier_IsPublic(t *testing.T) {
	c := NewClassifier(DefaultPublicPaths(), DefaultExcludedPaths())

	tests := []struct {
		path string
		want bool
	}{
		{"/sign-in", true},
		{"/sign-in/reset", true},
		{"/sign-up", true},
		{"/sign-up/verify-email", true},
		{"/signing-up", false},
		{"/dashboard", false},
		{"/", false},
		{"/SIGN-IN", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsPublic(tt.path))
		})
	}
}

func TestClassifier_BlankPrefixIgnored(t *testing.T) {
	c := NewClassifier([]string{"", "  "}, []string{""})
	assert.False(t, c.IsPublic("/dashboard"))
	assert.False(t, c.IsExcluded("/dashboard"))
	assert.Equal(t, RouteProtected, c.Classify("/dashboard"))
}

func TestClassifier_IsExcluded(t *testing.T) {
	c := NewClassifier(DefaultPublicPaths(), DefaultExcludedPaths())
	assert.True(t, c.IsExcluded("/static/app.css"))
	assert.True(t, c.IsExcluded("/api/auth/callback"))
	assert.True(t, c.IsExcluded("/_next/image"))
	assert.False(t, c.IsExcluded("/api/me"))
}

func TestDecide_Table(t *testing.T) {
	tests := []struct {
		name     string
		hasToken bool
		route    Route
		want     Decision
	}{
		{"no token protected", false, RouteProtected, Decision{Kind: RedirectToSignIn, Target: "/sign-in"}},
		{"token public", true, RoutePublic, Decision{Kind: RedirectToHome, Target: "/"}},
		{"token protected", true, RouteProtected, Decision{Kind: Allow}},
		{"no token public", false, RoutePublic, Decision{Kind: Allow}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.hasToken, tt.route))
		})
	}
}

func TestGate_Evaluate(t *testing.T) {
	g := New(Config{})
	withToken := map[string]string{"beblocky.session_token": "t"}

	assert.Equal(t, Decision{Kind: RedirectToSignIn, Target: "/sign-in"}, g.Evaluate("/dashboard", nil))
	assert.Equal(t, Decision{Kind: RedirectToHome, Target: "/"}, g.Evaluate("/sign-in", withToken))
	assert.Equal(t, Decision{Kind: Allow}, g.Evaluate("/dashboard", withToken))
	assert.Equal(t, Decision{Kind: Allow}, g.Evaluate("/sign-in", nil))

	// Excluded paths are never gated, with or without a session.
	assert.Equal(t, Decision{Kind: Allow}, g.Evaluate("/api/auth/callback", nil))
	assert.Equal(t, Decision{Kind: Allow}, g.Evaluate("/static/logo.svg", withToken))
}

func TestGate_CustomTargets(t *testing.T) {
	g := New(Config{
		CookieNames:   []string{"__session"},
		PublicPaths:   []string{"/login"},
		ExcludedPaths: []string{"/assets/"},
		SignInPath:    "/login",
		HomePath:      "/home",
	})

	assert.Equal(t, Decision{Kind: RedirectToSignIn, Target: "/login"}, g.Evaluate("/static/x.js", nil))
	assert.Equal(t, Decision{Kind: Allow}, g.Evaluate("/assets/x.js", nil))
	assert.Equal(t, Decision{Kind: RedirectToHome, Target: "/home"}, g.Evaluate("/login", map[string]string{"__session": "t"}))
}

func TestGate_EmptyExclusionsUseDefaults(t *testing.T) {
	for _, excluded := range [][]string{nil, {}} {
		g := New(Config{ExcludedPaths: excluded})
		for _, p := range []string{"/healthz", "/metrics", "/api/auth/session", "/api/auth/callback"} {
			assert.Equal(t, Decision{Kind: Allow}, g.Evaluate(p, nil), "path %s with ExcludedPaths %#v", p, excluded)
		}
	}
}

func TestGate_EvaluateRequest(t *testing.T) {
	g := New(Config{})
	req := httptest.NewRequest(http.MethodGet, "/dashboard?tab=courses", nil)
	req.AddCookie(&http.Cookie{Name: "__Secure-beblocky.session_token", Value: "t"})

	d := g.EvaluateRequest(req)
	assert.Equal(t, Allow, d.Kind)
	assert.False(t, d.IsRedirect())
}

func TestDecisionKind_String(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "redirect_sign_in", RedirectToSignIn.String())
	assert.Equal(t, "redirect_home", RedirectToHome.String())
	assert.Equal(t, "public", RoutePublic.String())
	assert.Equal(t, "protected", RouteProtected.String())
}
