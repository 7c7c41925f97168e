package gate

import "net/http"

// Default redirect targets.
const (
	DefaultSignInPath = "/sign-in"
	DefaultHomePath   = "/"
)

// DecisionKind enumerates gate outcomes. None of them is an error.
type DecisionKind int

const (
	Allow DecisionKind = iota
	RedirectToSignIn
	RedirectToHome
)

func (k DecisionKind) String() string {
	switch k {
	case Allow:
		return "allow"
	case RedirectToSignIn:
		return "redirect_sign_in"
	case RedirectToHome:
		return "redirect_home"
	default:
		return "unknown"
	}
}

// Decision is the gate's verdict for one request. Target is set for redirects only.
type Decision struct {
	Kind   DecisionKind
	Target string
}

// IsRedirect reports whether the decision stops the request.
func (d Decision) IsRedirect() bool { return d.Kind != Allow }

// Decide applies the decision table using the default redirect targets.
//
//	no token + protected -> RedirectToSignIn
//	token    + public    -> RedirectToHome
//	otherwise            -> Allow
func Decide(hasToken bool, route Route) Decision {
	return decide(hasToken, route, DefaultSignInPath, DefaultHomePath)
}

func decide(hasToken bool, route Route, signIn, home string) Decision {
	switch {
	case !hasToken && route == RouteProtected:
		return Decision{Kind: RedirectToSignIn, Target: signIn}
	case hasToken && route == RoutePublic:
		return Decision{Kind: RedirectToHome, Target: home}
	default:
		return Decision{Kind: Allow}
	}
}

// Gate composes token extraction and path classification. It holds no
// per-request state and is safe for concurrent use.
type Gate struct {
	Names      CookieNames
	Classifier *Classifier
	SignInPath string
	HomePath   string
}

// Config groups the inputs to New.
type Config struct {
	CookieNames   []string
	PublicPaths   []string
	ExcludedPaths []string
	SignInPath    string
	HomePath      string
}

// New builds a Gate, filling unset fields with defaults.
func New(cfg Config) *Gate {
	names := CookieNames(cfg.CookieNames).Normalize()
	if len(names) == 0 {
		names = DefaultCookieNames()
	}
	public := cfg.PublicPaths
	if len(public) == 0 {
		public = DefaultPublicPaths()
	}
	excluded := cfg.ExcludedPaths
	if len(excluded) == 0 {
		excluded = DefaultExcludedPaths()
	}
	signIn := cfg.SignInPath
	if signIn == "" {
		signIn = DefaultSignInPath
	}
	home := cfg.HomePath
	if home == "" {
		home = DefaultHomePath
	}
	return &Gate{
		Names:      names,
		Classifier: NewClassifier(public, excluded),
		SignInPath: signIn,
		HomePath:   home,
	}
}

// Evaluate returns the decision for path given the cookie mapping.
func (g *Gate) Evaluate(path string, cookies map[string]string) Decision {
	if g.Classifier.IsExcluded(path) {
		return Decision{Kind: Allow}
	}
	_, hasToken := ExtractToken(cookies, g.Names)
	return decide(hasToken, g.Classifier.Classify(path), g.SignInPath, g.HomePath)
}

// EvaluateRequest is Evaluate over an HTTP request.
func (g *Gate) EvaluateRequest(r *http.Request) Decision {
	return g.Evaluate(r.URL.Path, CookieMap(r))
}
