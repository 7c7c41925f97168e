package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/beblocky/dashboard/config"
	"github.com/beblocky/dashboard/internal/domain/gate"
	httpx "github.com/beblocky/dashboard/internal/http"
	"github.com/beblocky/dashboard/internal/observability/metrics"
	"github.com/beblocky/dashboard/internal/ports"
	"github.com/beblocky/dashboard/internal/service"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Identity ports.IdentityProvider
	Users    ports.UserStore
	// Auth is nil when sign-in is hosted by the identity provider.
	Auth   *service.AuthService
	Logger *slog.Logger
}

// BuildHTTPHandler assembles the gate, resolver, metrics and router.
func BuildHTTPHandler(cfg HTTPServerConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	var (
		authMetrics    *metrics.AuthMetrics
		metricsHandler http.Handler
	)
	if appCfg.Observability.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		authMetrics = metrics.NewAuthMetrics(metrics.Config{
			Namespace: appCfg.Observability.Metrics.Namespace,
			Registry:  reg,
		})
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	}

	resolver := service.NewSessionResolver(service.SessionResolverOptions{
		Identity: cfg.Identity,
		Users:    cfg.Users,
		Observer: authMetrics,
		Logger:   logger,
	})

	g := gate.New(gate.Config{
		CookieNames:   appCfg.Auth.CookieNames,
		PublicPaths:   appCfg.Auth.PublicPaths,
		ExcludedPaths: appCfg.Auth.ExcludedPaths,
		SignInPath:    appCfg.Auth.SignInPath,
		HomePath:      appCfg.Auth.HomePath,
	})

	services := httpx.RouterServices{
		Gate:            g,
		Resolver:        resolver,
		HostedSignInURL: appCfg.Auth.HostedSignInURL,
		GateMetrics:     authMetrics,
		RouteMetrics:    authMetrics,
		MetricsHandler:  metricsHandler,
		CookieDomain:    appCfg.HTTP.CookieDomain,
		RetryAfter:      appCfg.HTTP.RetryAfter,
		Logger:          logger,
	}
	if cfg.Auth != nil {
		services.Auth = cfg.Auth
	}

	return httpx.NewRouter(services)
}

// NewHTTPServer builds the server without starting it.
func NewHTTPServer(cfg HTTPServerConfig) *http.Server {
	addr := ""
	if cfg.Config != nil {
		addr = cfg.Config.HTTP.Addr
	}
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	return &http.Server{
		Addr:              addr,
		Handler:           BuildHTTPHandler(cfg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// RunHTTPServer serves on ln until ctx is cancelled, then shuts down within timeout.
func RunHTTPServer(ctx context.Context, server *http.Server, ln net.Listener, timeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return ShutdownHTTPServer(ShutdownConfig{
			Context: context.WithoutCancel(ctx),
			Server:  server,
			Timeout: timeout,
			Logger:  logger,
		})
	})

	return g.Wait()
}

// ListenAndRun binds server.Addr and calls RunHTTPServer.
func ListenAndRun(ctx context.Context, server *http.Server, timeout time.Duration, logger *slog.Logger) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", server.Addr, err)
	}
	return RunHTTPServer(ctx, server, ln, timeout, logger)
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Timeout time.Duration
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	parent := cfg.Context
	if parent == nil {
		parent = context.Background()
	}
	shutdownCtx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}
