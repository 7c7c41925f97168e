package oidc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"

	domainauth "github.com/beblocky/dashboard/internal/domain/auth"
	"github.com/beblocky/dashboard/internal/ports"
)

var _ ports.IdentityProvider = (*TokenVerifier)(nil)

// VerifierConfig configures a TokenVerifier.
type VerifierConfig struct {
	ClientID     string
	DiscoveryURL string
	HTTPClient   *http.Client // Optional, defaults to a client with a 10s timeout
}

// TokenVerifier checks ID tokens carried directly in the session cookie.
type TokenVerifier struct {
	verifier   *gooidc.IDTokenVerifier
	httpClient *http.Client
}

// NewTokenVerifier discovers the issuer and returns a verifier for its ID tokens.
func NewTokenVerifier(cfg VerifierConfig) (*TokenVerifier, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	op, err := discover(httpClient, cfg.DiscoveryURL)
	if err != nil {
		return nil, err
	}
	return &TokenVerifier{
		verifier:   op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		httpClient: httpClient,
	}, nil
}

// NewTokenVerifierWithKeySet builds a verifier without discovery.
func NewTokenVerifierWithKeySet(issuer string, keys gooidc.KeySet, config *gooidc.Config) *TokenVerifier {
	return &TokenVerifier{verifier: gooidc.NewVerifier(issuer, keys, config), httpClient: http.DefaultClient}
}

// VerifyToken validates signature, issuer, audience and expiry. Rejected tokens
// wrap ErrInvalidToken; failures to fetch signing keys do not.
func (v *TokenVerifier) VerifyToken(ctx context.Context, token string) (domainauth.Identity, error) {
	idTok, err := v.verifier.Verify(gooidc.ClientContext(ctx, v.httpClient), token)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domainauth.Identity{}, ctxErr
		}
		if isKeyFetchError(err) {
			return domainauth.Identity{}, fmt.Errorf("oidc keys unavailable: %w", err)
		}
		return domainauth.Identity{}, fmt.Errorf("%w: %w", domainauth.ErrInvalidToken, err)
	}

	var claims idTokenClaims
	if claimsErr := idTok.Claims(&claims); claimsErr != nil {
		return domainauth.Identity{}, fmt.Errorf("%w: parse claims: %w", domainauth.ErrInvalidToken, claimsErr)
	}
	f := mapIDTokenClaims(claims)
	return domainauth.Identity{
		Subject:   idTok.Subject,
		Email:     f.email,
		ExpiresAt: idTok.Expiry,
	}, nil
}

// isKeyFetchError reports signing-key fetch failures. Transport errors are
// checked by type first; go-oidc v3.15.0 wraps them with %v in Verify, so the
// message match covers that version's "fetching keys" and "get keys failed"
// wording and must be rechecked on upgrade.
func isKeyFetchError(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "get keys failed") || strings.Contains(msg, "fetching keys")
}
