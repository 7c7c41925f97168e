package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	domainauth "github.com/beblocky/dashboard/internal/domain/auth"
	"github.com/beblocky/dashboard/internal/domain/gate"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// GateRecorder counts gate decisions.
type GateRecorder interface {
	ObserveGate(d gate.Decision)
}

// Gate returns a middleware that applies the request gate. Redirect decisions
// are answered with a bodyless 302 and never reach next. The gate only checks
// cookie presence; handlers that need a principal must still resolve it.
func Gate(g *gate.Gate, rec GateRecorder, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := g.EvaluateRequest(r)
			if rec != nil {
				rec.ObserveGate(d)
			}
			if !d.IsRedirect() {
				next.ServeHTTP(w, r)
				return
			}
			logger.DebugContext(r.Context(), "gate redirect",
				"path", r.URL.Path,
				"decision", d.Kind.String(),
				"target", d.Target)
			redirect(w, d.Target)
		})
	}
}

// PrincipalResolver turns a session token into a principal.
type PrincipalResolver interface {
	Resolve(ctx context.Context, token string) (*domainauth.Principal, error)
}

// Authenticator resolves the caller behind a request's session cookie.
type Authenticator struct {
	Resolver   PrincipalResolver
	Cookies    SessionCookies
	RetryAfter time.Duration
	Logger     *slog.Logger
}

func (a *Authenticator) logger() *slog.Logger {
	if a != nil && a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// Principal resolves the request's session token. Requests without a
// recognized cookie resolve with ErrNoToken.
func (a *Authenticator) Principal(r *http.Request) (*domainauth.Principal, error) {
	token, _ := gate.ExtractFromRequest(r, a.Cookies.Names)
	return a.Resolver.Resolve(r.Context(), token)
}

// RequirePrincipal returns a middleware for API routes. It resolves the caller
// and, when roles are given, requires the principal to hold one of them.
// Unauthenticated callers get 401, outages 503 with Retry-After, other roles 403.
func (a *Authenticator) RequirePrincipal(roles ...domainauth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := a.Principal(r)
			if err != nil {
				a.writeAPIError(w, r, err)
				return
			}
			if len(roles) > 0 && !slices.Contains(roles, p.Role) {
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: errCodeForbidden,
					Message: "insufficient permissions",
				})
				return
			}
			next.ServeHTTP(w, r.WithContext(SetPrincipalInContext(r.Context(), p)))
		})
	}
}

func (a *Authenticator) writeAPIError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case domainauth.IsAuthFailure(err):
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: errCodeAuthRequired,
			Message: "authentication required",
		})
	case domainauth.IsRetryable(err):
		writeUnavailable(w, a.RetryAfter)
	case errors.Is(err, context.Canceled):
		// Client went away; nothing to answer.
	default:
		a.logger().ErrorContext(r.Context(), "resolve principal failed", "error", err, "path", r.URL.Path)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: errCodeInternal,
			Message: "internal error",
		})
	}
}
