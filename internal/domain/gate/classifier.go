package gate

import "strings"

// Route is the gate's view of a request path.
type Route int

const (
	RouteProtected Route = iota
	RoutePublic
)

func (r Route) String() string {
	if r == RoutePublic {
		return "public"
	}
	return "protected"
}

// DefaultPublicPaths are the auth-flow prefixes reachable without a session.
func DefaultPublicPaths() []string {
	return []string{"/sign-in", "/sign-up"}
}

// DefaultExcludedPaths are prefixes the gate never sees: static assets, the
// identity provider's own routes, and infrastructure endpoints.
func DefaultExcludedPaths() []string {
	return []string{
		"/static/",
		"/_next/",
		"/api/auth/",
		"/api/webhooks/",
		"/favicon.ico",
		"/healthz",
		"/metrics",
	}
}

// Classifier maps request paths to routes by literal prefix match.
// Matching is prefix-based, so "/sign-in/reset" is public under "/sign-in";
// keep prefixes specific enough not to swallow unrelated paths.
type Classifier struct {
	public   []string
	excluded []string
}

// NewClassifier builds a Classifier. Blank prefixes are ignored since they would match everything.
func NewClassifier(public, excluded []string) *Classifier {
	return &Classifier{
		public:   cleanPrefixes(public),
		excluded: cleanPrefixes(excluded),
	}
}

func cleanPrefixes(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// IsPublic reports whether some public prefix is a literal prefix of path.
func (c *Classifier) IsPublic(path string) bool {
	return hasAnyPrefix(path, c.public)
}

// IsExcluded reports whether path bypasses the gate entirely.
func (c *Classifier) IsExcluded(path string) bool {
	return hasAnyPrefix(path, c.excluded)
}

// PublicPrefixes returns a copy of the public prefixes.
func (c *Classifier) PublicPrefixes() []string {
	return append([]string(nil), c.public...)
}

// Classify returns RoutePublic or RouteProtected for path.
func (c *Classifier) Classify(path string) Route {
	if c.IsPublic(path) {
		return RoutePublic
	}
	return RouteProtected
}
