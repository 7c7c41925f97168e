package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	domainauth "github.com/beblocky/dashboard/internal/domain/auth"
	"github.com/beblocky/dashboard/internal/domain/gate"
	"github.com/beblocky/dashboard/internal/service"
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlers provides HTTP handlers for the session login flow.
type AuthHandlers struct {
	Svc        AuthServiceInterface
	Cookies    SessionCookies
	SignInPath string
	Logger     *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Login handles the login initiation endpoint.
// GET /api/auth/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	result, err := h.Svc.BeginLogin(r.Context(), redirectURI)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "begin login failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_failed",
			Message: "could not start sign-in",
		})
		return
	}

	cd := h.Cookies.Domain
	setFlowCookie(w, r, cd, stateCookie, result.State)
	setFlowCookie(w, r, cd, nonceCookie, result.Nonce)
	setFlowCookie(w, r, cd, redirectCookie, redirectURI)

	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback handles the OAuth callback endpoint.
// GET /api/auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_code",
			Message: "authorization code is required",
		})
		return
	}
	if state == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_state",
			Message: "state parameter is required",
		})
		return
	}

	stateC, err := r.Cookie(stateCookie)
	if err != nil || stateC.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Message: "invalid or missing state parameter",
		})
		return
	}
	nonceC, err := r.Cookie(nonceCookie)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Message: "missing nonce parameter",
		})
		return
	}

	result, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:  code,
		State: state,
		Nonce: nonceC.Value,
	})
	if err != nil {
		h.logger().WarnContext(r.Context(), "login completion failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_completion_failed",
			Message: "could not complete sign-in",
		})
		return
	}

	h.Cookies.Set(w, r, result.Session.ID, result.Session.ExpiresAt)
	cd := h.Cookies.Domain
	clearCookie(w, r, cd, stateCookie)
	clearCookie(w, r, cd, nonceCookie)

	http.Redirect(w, r, h.postLoginRedirect(w, r), http.StatusFound)
}

// Logout handles the logout endpoint.
// POST /api/auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := gate.ExtractFromRequest(r, h.Cookies.Names); ok {
		if err := h.Svc.Logout(r.Context(), token); err != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", err)
		}
	}
	h.Cookies.ClearAll(w, r)

	signIn := h.SignInPath
	if signIn == "" {
		signIn = gate.DefaultSignInPath
	}

	isAJAX := strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
	if isAJAX {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": signIn,
		})
		return
	}
	http.Redirect(w, r, signIn, http.StatusFound)
}

// postLoginRedirect returns the post-login redirect URL and clears the cookie.
func (h *AuthHandlers) postLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	redirectURI := "/"
	if c, err := r.Cookie(redirectCookie); err == nil {
		redirectURI = safeRedirectPath(c.Value)
		clearCookie(w, r, h.Cookies.Domain, redirectCookie)
	}
	return redirectURI
}

type sessionStatus struct {
	Authenticated bool                  `json:"authenticated"`
	Principal     *domainauth.Principal `json:"principal,omitempty"`
}

// SessionStatus reports whether the caller holds a usable session.
// GET /api/auth/session.
func SessionStatus(a *Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := a.Principal(r)
		switch {
		case err == nil:
			WriteJSON(w, http.StatusOK, sessionStatus{Authenticated: true, Principal: p})
		case domainauth.IsAuthFailure(err):
			if !errors.Is(err, domainauth.ErrNoToken) {
				a.Cookies.ClearAll(w, r)
			}
			WriteJSON(w, http.StatusOK, sessionStatus{})
		default:
			a.writeAPIError(w, r, err)
		}
	}
}

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(candidate, "//") {
		return "/"
	}
	return candidate
}
