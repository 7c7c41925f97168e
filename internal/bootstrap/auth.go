package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/beblocky/dashboard/config"
	"github.com/beblocky/dashboard/internal/adapters/devauth"
	"github.com/beblocky/dashboard/internal/adapters/oidc"
	redisadapter "github.com/beblocky/dashboard/internal/adapters/redis"
	"github.com/beblocky/dashboard/internal/data"
	"github.com/beblocky/dashboard/internal/ports"
	"github.com/beblocky/dashboard/internal/service"
)

var errRedisRequired = errors.New("redis client is required for session auth")

// AuthConfig contains configuration for the identity side of the dashboard.
type AuthConfig struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	DB          *sql.DB
	Logger      *slog.Logger
}

// NeedsRedis reports whether the configuration stores anything in Redis.
func NeedsRedis(auth config.AuthConfig) bool {
	return auth.Mode.UsesSessions() || auth.ProfileCacheTTL > 0
}

// BuildIdentityProvider returns the token verifier for the configured auth mode.
//
//nolint:ireturn // the mode decides which verifier backs the interface.
func BuildIdentityProvider(cfg AuthConfig) (ports.IdentityProvider, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeOIDC:
		v, err := oidc.NewTokenVerifier(oidc.VerifierConfig{
			ClientID:     cfg.Auth.OAuth.ClientID,
			DiscoveryURL: cfg.Auth.OAuth.DiscoveryURL,
		})
		if err != nil {
			return nil, fmt.Errorf("build oidc token verifier: %w", err)
		}
		return v, nil

	case config.AuthModeSession, config.AuthModeMock:
		if cfg.RedisClient == nil {
			return nil, errRedisRequired
		}
		return service.NewSessionIdentity(redisadapter.NewSessionStore(cfg.RedisClient)), nil

	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}
}

// BuildUserStore returns the Postgres-backed user store, fronted by the Redis
// profile cache when PROFILE_CACHE_TTL is set.
//
//nolint:ireturn // the cache decorator is optional.
func BuildUserStore(cfg AuthConfig) ports.UserStore {
	var store ports.UserStore = data.NewUserRepo(cfg.DB)
	if cfg.Auth.ProfileCacheTTL <= 0 || cfg.RedisClient == nil {
		return store
	}
	if cfg.Logger != nil {
		cfg.Logger.Info("profile cache enabled", "ttl", cfg.Auth.ProfileCacheTTL)
	}
	return redisadapter.NewProfileCache(redisadapter.ProfileCacheOptions{
		Client: cfg.RedisClient,
		Next:   store,
		TTL:    cfg.Auth.ProfileCacheTTL,
		Logger: cfg.Logger,
	})
}

// BuildAuthService creates the login flow service for session-based modes.
// It returns nil without error in oidc mode, where sign-in is hosted elsewhere.
func BuildAuthService(cfg AuthConfig) (*service.AuthService, error) {
	if !cfg.Auth.Mode.UsesSessions() {
		return nil, nil
	}
	if cfg.RedisClient == nil {
		return nil, errRedisRequired
	}

	var (
		prov ports.AuthProvider
		err  error
	)
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		prov, err = devauth.NewProvider(devauth.Config{
			UserID:          cfg.Auth.DevAuth.UserID,
			Email:           cfg.Auth.DevAuth.Email,
			SessionDuration: cfg.Auth.SessionTTL,
		})
		if err == nil && cfg.Logger != nil {
			cfg.Logger.Warn("dev auth enabled; every login signs in as the configured user",
				"user_id", cfg.Auth.DevAuth.UserID)
		}
	default:
		prov, err = oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     cfg.Auth.OAuth.ClientID,
			ClientSecret: cfg.Auth.OAuth.ClientSecret,
			RedirectURL:  cfg.Auth.OAuth.RedirectURL,
			Scope:        cfg.Auth.OAuth.Scope,
			DiscoveryURL: cfg.Auth.OAuth.DiscoveryURL,
			LogoutURL:    cfg.Auth.OAuth.LogoutURL,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("build %s auth provider: %w", cfg.Auth.Mode, err)
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider:   prov,
		Sessions:   redisadapter.NewSessionStore(cfg.RedisClient),
		SessionTTL: cfg.Auth.SessionTTL,
	}), nil
}
