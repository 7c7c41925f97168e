package bootstrap

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/beblocky/dashboard/config"
	"github.com/beblocky/dashboard/internal/adapters/oidc"
	redisadapter "github.com/beblocky/dashboard/internal/adapters/redis"
	"github.com/beblocky/dashboard/internal/data"
	"github.com/beblocky/dashboard/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// unconnectedRedis never dials; constructors only keep the handle.
func unconnectedRedis(t *testing.T) redis.UniversalClient {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func discoveryServer(t *testing.T) string {
	t.Helper()
	issuer := ""
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(oidc.DiscoveryDocument{
			Issuer:                issuer,
			AuthorizationEndpoint: issuer + "/authorize",
			TokenEndpoint:         issuer + "/token",
			JwksURI:               issuer + "/jwks",
		})
	}))
	t.Cleanup(srv.Close)
	issuer = srv.URL
	return srv.URL
}

func TestNeedsRedis(t *testing.T) {
	tests := []struct {
		name string
		auth config.AuthConfig
		want bool
	}{
		{"session", config.AuthConfig{Mode: config.AuthModeSession}, true},
		{"mock", config.AuthConfig{Mode: config.AuthModeMock}, true},
		{"oidc", config.AuthConfig{Mode: config.AuthModeOIDC}, false},
		{"oidc with profile cache", config.AuthConfig{Mode: config.AuthModeOIDC, ProfileCacheTTL: time.Minute}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsRedis(tt.auth); got != tt.want {
				t.Errorf("NeedsRedis() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildIdentityProvider(t *testing.T) {
	t.Run("session mode uses the session store", func(t *testing.T) {
		idp, err := BuildIdentityProvider(AuthConfig{
			Auth:        config.AuthConfig{Mode: config.AuthModeSession},
			RedisClient: unconnectedRedis(t),
		})
		if err != nil {
			t.Fatalf("BuildIdentityProvider() error = %v", err)
		}
		if _, ok := idp.(*service.SessionIdentity); !ok {
			t.Fatalf("BuildIdentityProvider() = %T, want *service.SessionIdentity", idp)
		}
	})

	t.Run("session mode without redis", func(t *testing.T) {
		if _, err := BuildIdentityProvider(AuthConfig{Auth: config.AuthConfig{Mode: config.AuthModeMock}}); err == nil {
			t.Fatal("expected error without redis client")
		}
	})

	t.Run("oidc mode verifies id tokens", func(t *testing.T) {
		idp, err := BuildIdentityProvider(AuthConfig{
			Auth: config.AuthConfig{
				Mode:  config.AuthModeOIDC,
				OAuth: config.OAuthConfig{ClientID: "beblocky-dashboard", DiscoveryURL: discoveryServer(t)},
			},
		})
		if err != nil {
			t.Fatalf("BuildIdentityProvider() error = %v", err)
		}
		if _, ok := idp.(*oidc.TokenVerifier); !ok {
			t.Fatalf("BuildIdentityProvider() = %T, want *oidc.TokenVerifier", idp)
		}
	})

	t.Run("unknown mode", func(t *testing.T) {
		if _, err := BuildIdentityProvider(AuthConfig{Auth: config.AuthConfig{Mode: "saml"}}); err == nil {
			t.Fatal("expected error for unknown mode")
		}
	})
}

func TestBuildUserStore(t *testing.T) {
	plain := BuildUserStore(AuthConfig{Auth: config.AuthConfig{}, RedisClient: unconnectedRedis(t)})
	if _, ok := plain.(*data.UserRepo); !ok {
		t.Errorf("BuildUserStore() without TTL = %T, want *data.UserRepo", plain)
	}

	noRedis := BuildUserStore(AuthConfig{Auth: config.AuthConfig{ProfileCacheTTL: time.Minute}})
	if _, ok := noRedis.(*data.UserRepo); !ok {
		t.Errorf("BuildUserStore() without redis = %T, want *data.UserRepo", noRedis)
	}

	cached := BuildUserStore(AuthConfig{
		Auth:        config.AuthConfig{ProfileCacheTTL: time.Minute},
		RedisClient: unconnectedRedis(t),
		Logger:      discardLogger(),
	})
	if _, ok := cached.(*redisadapter.ProfileCache); !ok {
		t.Errorf("BuildUserStore() with TTL = %T, want *redis.ProfileCache", cached)
	}
}

func TestBuildAuthService(t *testing.T) {
	logger := discardLogger()

	t.Run("oidc mode has no login flow", func(t *testing.T) {
		svc, err := BuildAuthService(AuthConfig{Auth: config.AuthConfig{Mode: config.AuthModeOIDC}, Logger: logger})
		if err != nil || svc != nil {
			t.Fatalf("BuildAuthService() = %v, %v; want nil, nil", svc, err)
		}
	})

	t.Run("session modes require redis", func(t *testing.T) {
		for _, mode := range []config.AuthMode{config.AuthModeSession, config.AuthModeMock} {
			if _, err := BuildAuthService(AuthConfig{Auth: config.AuthConfig{Mode: mode}, Logger: logger}); err == nil {
				t.Errorf("mode %s: expected error without redis client", mode)
			}
		}
	})

	t.Run("mock mode", func(t *testing.T) {
		svc, err := BuildAuthService(AuthConfig{
			Auth: config.AuthConfig{
				Mode:       config.AuthModeMock,
				DevAuth:    config.DevAuthConfig{UserID: "dev-user", Email: "dev@beblocky.local"},
				SessionTTL: time.Hour,
			},
			RedisClient: unconnectedRedis(t),
			Logger:      logger,
		})
		if err != nil {
			t.Fatalf("BuildAuthService() error = %v", err)
		}
		if svc == nil {
			t.Fatal("BuildAuthService() = nil, want service")
		}
	})

	t.Run("mock mode without dev user", func(t *testing.T) {
		_, err := BuildAuthService(AuthConfig{
			Auth:        config.AuthConfig{Mode: config.AuthModeMock},
			RedisClient: unconnectedRedis(t),
			Logger:      logger,
		})
		if err == nil {
			t.Fatal("expected error for empty dev auth identity")
		}
	})

	t.Run("session mode", func(t *testing.T) {
		svc, err := BuildAuthService(AuthConfig{
			Auth: config.AuthConfig{
				Mode: config.AuthModeSession,
				OAuth: config.OAuthConfig{
					ClientID:     "beblocky-dashboard",
					ClientSecret: "secret",
					RedirectURL:  "http://localhost:8080/api/auth/callback",
					Scope:        "openid profile email",
					DiscoveryURL: discoveryServer(t),
				},
			},
			RedisClient: unconnectedRedis(t),
			Logger:      logger,
		})
		if err != nil {
			t.Fatalf("BuildAuthService() error = %v", err)
		}
		if svc == nil {
			t.Fatal("BuildAuthService() = nil, want service")
		}
	})
}
