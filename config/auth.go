package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AuthMode selects how session cookies are verified.
type AuthMode string

const (
	// AuthModeOIDC treats the session cookie as an ID token issued by the hosted sign-in.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeSession treats the cookie as an opaque server-side session id created by the OIDC login flow.
	AuthModeSession AuthMode = "session"
	// AuthModeMock is the session scheme with a local dev provider (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "oidc", "session", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oidc, session, mock)", v)
	}
}

// UsesSessions reports whether the mode stores sessions server-side.
func (a AuthMode) UsesSessions() bool {
	return a == AuthModeSession || a == AuthModeMock
}

// OAuthConfig contains OAuth/OIDC configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"beblocky-dashboard"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/api/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	LogoutURL    string `env:"LOGOUT_URL"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UserID string `env:"USER_ID" envDefault:"dev-user"`
	Email  string `env:"EMAIL"   envDefault:"dev@beblocky.local"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines how session cookies are verified.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"session"`

	// CookieNames is the single recognized session cookie list for this deployment,
	// highest precedence first. Security-prefixed names always outrank plain ones.
	CookieNames []string `env:"AUTH_COOKIE_NAMES" envDefault:"__Secure-beblocky.session_token;beblocky.session_token" envSeparator:";"`

	// PublicPaths are path prefixes reachable without a session.
	PublicPaths []string `env:"AUTH_PUBLIC_PATHS" envDefault:"/sign-in;/sign-up" envSeparator:";"`

	// ExcludedPaths are path prefixes the gate never evaluates.
	ExcludedPaths []string `env:"AUTH_EXCLUDED_PATHS" envDefault:"/static/;/_next/;/api/auth/;/api/webhooks/;/favicon.ico;/healthz;/metrics" envSeparator:";"`

	SignInPath string `env:"AUTH_SIGN_IN_PATH" envDefault:"/sign-in"`
	HomePath   string `env:"AUTH_HOME_PATH"    envDefault:"/"`

	// HostedSignInURL is where /sign-in sends browsers in oidc mode.
	// Session modes use the built-in login flow instead.
	HostedSignInURL string `env:"AUTH_HOSTED_SIGN_IN_URL"`

	// OAuth configuration (used when Mode=oidc or Mode=session).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// SessionTTL caps server-side session lifetime.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"8h"`

	// ProfileCacheTTL bounds cached user profiles. Zero disables the cache.
	ProfileCacheTTL time.Duration `env:"PROFILE_CACHE_TTL" envDefault:"0s"`
}

// Sanitize trims list entries and restores defaults for blank values.
func (c *AuthConfig) Sanitize() {
	c.CookieNames = trimList(c.CookieNames)
	c.PublicPaths = trimList(c.PublicPaths)
	c.ExcludedPaths = trimList(c.ExcludedPaths)
	c.SignInPath = strings.TrimSpace(c.SignInPath)
	if c.SignInPath == "" {
		c.SignInPath = "/sign-in"
	}
	c.HomePath = strings.TrimSpace(c.HomePath)
	if c.HomePath == "" {
		c.HomePath = "/"
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 8 * time.Hour
	}
	if c.ProfileCacheTTL < 0 {
		c.ProfileCacheTTL = 0
	}
}

// Validate reports configuration that cannot serve the selected mode.
func (c *AuthConfig) Validate() error {
	if len(c.CookieNames) == 0 {
		return errors.New("AUTH_COOKIE_NAMES must list at least one cookie name")
	}
	if !c.signInIsPublic() {
		return fmt.Errorf("AUTH_SIGN_IN_PATH %q must fall under one of AUTH_PUBLIC_PATHS", c.SignInPath)
	}
	switch c.Mode {
	case AuthModeOIDC, AuthModeSession:
		if c.OAuth.DiscoveryURL == "" {
			return fmt.Errorf("OAUTH_DISCOVERY_URL is required for AUTH_MODE=%s", c.Mode)
		}
		if c.OAuth.ClientID == "" {
			return fmt.Errorf("OAUTH_CLIENT_ID is required for AUTH_MODE=%s", c.Mode)
		}
		if c.Mode == AuthModeOIDC && strings.TrimSpace(c.HostedSignInURL) == "" {
			return errors.New("AUTH_HOSTED_SIGN_IN_URL is required for AUTH_MODE=oidc")
		}
	case AuthModeMock:
	default:
		return fmt.Errorf("unsupported AUTH_MODE %q", c.Mode)
	}
	return nil
}

// trimList drops blank entries; an all-blank list becomes nil so callers
// fall back to their defaults.
func trimList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// defaultPublicPaths mirrors the AUTH_PUBLIC_PATHS default for configs built in code.
var defaultPublicPaths = []string{"/sign-in", "/sign-up"}

// signInIsPublic reports whether some public prefix covers the sign-in path.
// Without that the gate would redirect the sign-in page to itself.
func (c *AuthConfig) signInIsPublic() bool {
	public := c.PublicPaths
	if len(public) == 0 {
		public = defaultPublicPaths
	}
	signIn := c.SignInPath
	if signIn == "" {
		signIn = "/sign-in"
	}
	for _, p := range public {
		if p = strings.TrimSpace(p); p != "" && strings.HasPrefix(signIn, p) {
			return true
		}
	}
	return false
}
