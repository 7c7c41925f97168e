package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	domainauth "github.com/beblocky/dashboard/internal/domain/auth"
	"github.com/beblocky/dashboard/internal/domain/dashboard"
	"github.com/beblocky/dashboard/internal/domain/gate"
)

// RouteRecorder counts role router results.
type RouteRecorder interface {
	ObserveRoute(view string, err error)
}

// DashboardHandlers serves the role-specific dashboard entry points.
type DashboardHandlers struct {
	Auth       *Authenticator
	Metrics    RouteRecorder
	SignInPath string
	Logger     *slog.Logger
}

func (h *DashboardHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type dashboardResponse struct {
	View      dashboard.View       `json:"view"`
	Principal domainauth.Principal `json:"principal"`
}

// Dashboard resolves the caller and answers with the dashboard their role selects.
// GET / and GET /dashboard.
//
// Authentication failures clear the session cookies and redirect to sign-in, so a
// stale cookie cannot bounce between the gate and this handler. Store outages are
// answered with a retryable 503 instead of a redirect.
func (h *DashboardHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	p, err := h.Auth.Principal(r)
	if err != nil {
		h.writeResolutionError(w, r, err)
		return
	}

	view, err := dashboard.Route(p.Role)
	if h.Metrics != nil {
		h.Metrics.ObserveRoute(string(view), err)
	}
	if err != nil {
		h.logger().ErrorContext(r.Context(), "no dashboard for role",
			"user_id", p.ID,
			"role", string(p.Role),
			"error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: errCodeUnsupportedRole,
			Message: "contact support",
		})
		return
	}

	WriteJSON(w, http.StatusOK, dashboardResponse{View: view, Principal: *p})
}

func (h *DashboardHandlers) writeResolutionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case domainauth.IsAuthFailure(err):
		h.Auth.Cookies.ClearAll(w, r)
		signIn := h.SignInPath
		if signIn == "" {
			signIn = gate.DefaultSignInPath
		}
		redirect(w, signIn)
	case domainauth.IsRetryable(err):
		writeUnavailable(w, h.Auth.RetryAfter)
	case errors.Is(err, context.Canceled):
	default:
		h.logger().ErrorContext(r.Context(), "resolve principal failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: errCodeInternal,
			Message: "internal error",
		})
	}
}

// Me returns the principal placed in context by RequirePrincipal.
// GET /api/me.
func Me(w http.ResponseWriter, r *http.Request) {
	p, ok := GetPrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: errCodeAuthRequired,
			Message: "authentication required",
		})
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

// AdminPing is a minimal admin-only endpoint.
// GET /api/admin/ping.
func AdminPing(w http.ResponseWriter, r *http.Request) {
	p, _ := GetPrincipalFromContext(r.Context())
	resp := map[string]string{"status": "ok"}
	if p != nil {
		resp["user_id"] = p.ID
	}
	WriteJSON(w, http.StatusOK, resp)
}

// redirectTo returns a handler that answers every request with a 302 to target.
func redirectTo(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		redirect(w, target)
	}
}
