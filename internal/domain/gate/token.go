// Package gate decides, per request, whether the caller may proceed, must sign in,
// or should be sent home. Everything here is a pure function of the request.
package gate

import (
	"net/http"
	"strings"
)

// Cookie name prefixes browsers only accept over secure transport.
const (
	securePrefix = "__Secure-"
	hostPrefix   = "__Host-"
)

// CookieNames is the ordered list of recognized session cookie names, highest precedence first.
type CookieNames []string

// DefaultCookieNames are the session cookie names issued by the login flow.
func DefaultCookieNames() CookieNames {
	return CookieNames{"__Secure-beblocky.session_token", "beblocky.session_token"}
}

// isSecureName reports whether name carries a transport-security prefix.
func isSecureName(name string) bool {
	return strings.HasPrefix(name, securePrefix) || strings.HasPrefix(name, hostPrefix)
}

// Normalize returns a copy with blanks and duplicates removed and every
// security-prefixed name ordered ahead of plain names. Relative order within
// each group is preserved.
func (n CookieNames) Normalize() CookieNames {
	seen := make(map[string]struct{}, len(n))
	secure := make(CookieNames, 0, len(n))
	plain := make(CookieNames, 0, len(n))
	for _, raw := range n {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if isSecureName(name) {
			secure = append(secure, name)
		} else {
			plain = append(plain, name)
		}
	}
	return append(secure, plain...)
}

// Issue returns the name a new session cookie should be written under: the first
// security-prefixed name over TLS, the first plain name otherwise. It falls back to
// the highest-precedence name and returns "" for an empty list.
func (n CookieNames) Issue(secure bool) string {
	names := n.Normalize()
	for _, name := range names {
		if isSecureName(name) == secure {
			return name
		}
	}
	if len(names) > 0 {
		return names[0]
	}
	return ""
}

// ExtractToken returns the session token from a cookie mapping. Names are checked
// in precedence order and the first non-empty value wins.
func ExtractToken(cookies map[string]string, names CookieNames) (string, bool) {
	for _, name := range names.Normalize() {
		if v, ok := cookies[name]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// CookieMap flattens request cookies into a name->value map. When a name is sent
// twice the first occurrence wins, matching net/http's Request.Cookie.
func CookieMap(r *http.Request) map[string]string {
	cookies := r.Cookies()
	out := make(map[string]string, len(cookies))
	for _, c := range cookies {
		if _, ok := out[c.Name]; ok {
			continue
		}
		out[c.Name] = c.Value
	}
	return out
}

// ExtractFromRequest reads the session token from the request's cookies.
func ExtractFromRequest(r *http.Request, names CookieNames) (string, bool) {
	return ExtractToken(CookieMap(r), names)
}
