package httpx

import (
	"net/http"
	"strings"
	"time"

	"github.com/beblocky/dashboard/internal/domain/gate"
)

// SessionCookies writes and clears the session cookie under the deployment's recognized names.
type SessionCookies struct {
	Names  gate.CookieNames
	Domain string
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// Set issues the session cookie: the security-prefixed name over TLS, the plain name otherwise.
func (c SessionCookies) Set(w http.ResponseWriter, r *http.Request, value string, expiresAt time.Time) {
	secure := isSecureRequest(r)
	name := c.Names.Issue(secure)
	if name == "" {
		return
	}
	http.SetCookie(w, c.cookie(name, value, secure, int(time.Until(expiresAt).Seconds())))
}

// ClearAll expires every recognized session cookie.
func (c SessionCookies) ClearAll(w http.ResponseWriter, r *http.Request) {
	secure := isSecureRequest(r)
	for _, name := range c.Names.Normalize() {
		ck := c.cookie(name, "", secure, -1)
		ck.Expires = time.Unix(0, 0).UTC()
		http.SetCookie(w, ck)
	}
}

func (c SessionCookies) cookie(name, value string, secure bool, maxAge int) *http.Cookie {
	domain := c.Domain
	if strings.HasPrefix(name, "__Host-") {
		domain = ""
	}
	if strings.HasPrefix(name, "__Secure-") || strings.HasPrefix(name, "__Host-") {
		secure = true
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   domain,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}

// setFlowCookie stores a short-lived login-flow value.
func setFlowCookie(w http.ResponseWriter, r *http.Request, domain, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   oauthCookieMaxAge,
	})
}

// clearCookie clears a cookie by setting it to expire immediately.
func clearCookie(w http.ResponseWriter, r *http.Request, domain, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}
