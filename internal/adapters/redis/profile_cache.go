package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/beblocky/dashboard/internal/domain/auth"
	"github.com/beblocky/dashboard/internal/ports"
)

var _ ports.UserStore = (*ProfileCache)(nil)

// ProfileCacheOptions configures ProfileCache.
type ProfileCacheOptions struct {
	Client redis.UniversalClient
	Next   ports.UserStore
	TTL    time.Duration
	Prefix string       // default "beblocky:profile:"
	Logger *slog.Logger // optional
}

// ProfileCache is a read-through UserStore decorator. Only successful lookups
// are cached, and an entry never outlives the token that loaded it.
type ProfileCache struct {
	client redis.UniversalClient
	next   ports.UserStore
	ttl    time.Duration
	prefix string
	logger *slog.Logger
	now    func() time.Time
}

// NewProfileCache wraps opts.Next with a Redis cache.
func NewProfileCache(opts ProfileCacheOptions) *ProfileCache {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "beblocky:profile:"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileCache{
		client: opts.Client,
		next:   opts.Next,
		ttl:    opts.TTL,
		prefix: prefix,
		logger: logger.With("component", "profile_cache"),
		now:    time.Now,
	}
}

// FetchProfile serves from cache when possible. Cache failures fall through to
// the wrapped store and never surface as errors.
func (c *ProfileCache) FetchProfile(ctx context.Context, userID string) (domainauth.Principal, error) {
	key := c.prefix + userID

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p domainauth.Principal
		if jsonErr := json.Unmarshal(data, &p); jsonErr == nil {
			return p, nil
		}
		c.logger.WarnContext(ctx, "discarding corrupt profile cache entry", "user_id", userID)
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "profile cache read failed", "user_id", userID, "error", err)
	}

	p, err := c.next.FetchProfile(ctx, userID)
	if err != nil {
		return domainauth.Principal{}, err
	}

	if ttl := c.entryTTL(ctx); ttl > 0 {
		if payload, jsonErr := json.Marshal(p); jsonErr == nil {
			if setErr := c.client.Set(ctx, key, payload, ttl).Err(); setErr != nil {
				c.logger.WarnContext(ctx, "profile cache write failed", "user_id", userID, "error", setErr)
			}
		}
	}
	return p, nil
}

// Invalidate drops the cached profile for userID.
func (c *ProfileCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, c.prefix+userID).Err()
}

// entryTTL is min(configured TTL, time until token expiry). Zero means do not cache.
func (c *ProfileCache) entryTTL(ctx context.Context) time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	exp, ok := ports.TokenExpiryFromContext(ctx)
	if !ok {
		return 0
	}
	remaining := exp.Sub(c.now())
	if remaining <= 0 {
		return 0
	}
	return min(c.ttl, remaining)
}
