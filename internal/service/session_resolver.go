package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	domainauth "github.com/beblocky/dashboard/internal/domain/auth"
	obserrors "github.com/beblocky/dashboard/internal/observability/errors"
	"github.com/beblocky/dashboard/internal/ports"
)

const resolverTracerName = "github.com/beblocky/dashboard/internal/service"

// ResolutionObserver receives one callback per Resolve call.
type ResolutionObserver interface {
	ObserveResolution(err error, elapsed time.Duration)
}

// SessionResolverOptions groups dependencies for SessionResolver.
type SessionResolverOptions struct {
	Identity ports.IdentityProvider
	Users    ports.UserStore
	Observer ResolutionObserver // optional
	Tracer   trace.Tracer       // optional, defaults to the global provider
	Logger   *slog.Logger       // optional
}

// SessionResolver turns a session token into a Principal. It keeps no state
// between calls and is safe for concurrent use.
type SessionResolver struct {
	identity ports.IdentityProvider
	users    ports.UserStore
	observer ResolutionObserver
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewSessionResolver constructs a SessionResolver.
func NewSessionResolver(opts SessionResolverOptions) *SessionResolver {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(resolverTracerName)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionResolver{
		identity: opts.Identity,
		users:    opts.Users,
		observer: opts.Observer,
		tracer:   tracer,
		logger:   logger,
	}
}

// Resolve verifies token with the identity provider and loads the matching
// profile. It performs exactly one profile lookup per call.
//
// Errors are *domainauth.ResolutionError values of kind ErrNoToken,
// ErrInvalidToken, ErrUserNotFound or ErrStoreUnavailable. If ctx is cancelled
// the context error is returned as is.
func (s *SessionResolver) Resolve(ctx context.Context, token string) (_ *domainauth.Principal, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "SessionResolver.Resolve")
	defer func() {
		outcome := obserrors.Outcome(err)
		span.SetAttributes(attribute.String("auth.outcome", outcome))
		if err != nil && !domainauth.IsAuthFailure(err) {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.End()
		if s.observer != nil {
			s.observer.ObserveResolution(err, time.Since(start))
		}
	}()

	if token == "" {
		return nil, domainauth.NewResolutionError(domainauth.ErrNoToken, nil)
	}

	identity, err := s.identity.VerifyToken(ctx, token)
	if err != nil {
		return nil, s.verifyError(ctx, err)
	}
	if identity.Subject == "" {
		return nil, domainauth.NewResolutionError(domainauth.ErrInvalidToken, errors.New("token has no subject"))
	}
	span.SetAttributes(attribute.String("auth.subject", identity.Subject))

	principal, err := s.users.FetchProfile(ports.WithTokenExpiry(ctx, identity.ExpiresAt), identity.Subject)
	if err != nil {
		return nil, s.fetchError(ctx, identity.Subject, err)
	}

	role, err := domainauth.ParseRole(string(principal.Role))
	if err != nil {
		s.logger.ErrorContext(ctx, "profile has unrecognized role",
			"user_id", identity.Subject,
			"role", string(principal.Role))
		return nil, domainauth.NewResolutionError(domainauth.ErrUserNotFound, err)
	}
	principal.Role = role
	if principal.ID == "" {
		principal.ID = identity.Subject
	}
	if principal.Email == "" {
		principal.Email = identity.Email
	}
	span.SetAttributes(attribute.String("auth.role", string(role)))

	return &principal, nil
}

func (s *SessionResolver) verifyError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, domainauth.ErrInvalidToken) {
		return domainauth.NewResolutionError(domainauth.ErrInvalidToken, err)
	}
	s.logger.WarnContext(ctx, "identity provider unavailable", "error", err)
	return domainauth.NewResolutionError(domainauth.ErrStoreUnavailable, fmt.Errorf("verify token: %w", err))
}

func (s *SessionResolver) fetchError(ctx context.Context, userID string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, domainauth.ErrUserNotFound) {
		s.logger.InfoContext(ctx, "session subject has no profile", "user_id", userID)
		return domainauth.NewResolutionError(domainauth.ErrUserNotFound, err)
	}
	s.logger.WarnContext(ctx, "user store unavailable", "user_id", userID, "error", err)
	return domainauth.NewResolutionError(domainauth.ErrStoreUnavailable, fmt.Errorf("fetch profile: %w", err))
}
