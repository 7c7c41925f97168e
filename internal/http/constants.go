package httpx

// Login flow endpoints. Everything under /api/auth/ bypasses the gate.
const (
	PathLogin    = "/api/auth/login"
	PathCallback = "/api/auth/callback"
	PathLogout   = "/api/auth/logout"
	PathSession  = "/api/auth/session"
)

// Short-lived cookies carried across the identity provider round trip.
const (
	stateCookie    = "oauth_state"
	nonceCookie    = "oauth_nonce"
	redirectCookie = "post_login_redirect"

	oauthCookieMaxAge = 600 // 10 minutes
)

// Error codes written in JSON error bodies.
const (
	errCodeAuthRequired     = "authentication_required"
	errCodeForbidden        = "insufficient_permissions"
	errCodeStoreUnavailable = "store_unavailable"
	errCodeUnsupportedRole  = "unsupported_role"
	errCodeInternal         = "internal_error"
)
