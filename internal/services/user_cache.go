package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/isdelr/blog-be/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// UserFinder resolves a user ID to its public record.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (models.PublicUser, error)
}

// CachedUserLookup caches successful FindByID results in Redis for a short TTL.
// Misses and lookup failures are never cached, and cache errors fall through
// to the underlying store.
type CachedUserLookup struct {
	next   UserFinder
	client redis.Cmdable
	ttl    time.Duration
}

// NewCachedUserLookup wraps next with a Redis cache.
func NewCachedUserLookup(next UserFinder, client redis.Cmdable, ttl time.Duration) *CachedUserLookup {
	return &CachedUserLookup{next: next, client: client, ttl: ttl}
}

func userCacheKey(id string) string {
	return "auth:user:" + id
}

// FindByID returns the cached record when present, otherwise asks the store.
func (c *CachedUserLookup) FindByID(ctx context.Context, id string) (models.PublicUser, error) {
	key := userCacheKey(id)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var user models.PublicUser
		if err := json.Unmarshal(data, &user); err == nil {
			return user, nil
		}
		log.Warn().Str("key", key).Msg("Discarding undecodable cached user")
	case !errors.Is(err, redis.Nil):
		log.Warn().Err(err).Str("key", key).Msg("User cache read failed")
	}

	user, err := c.next.FindByID(ctx, id)
	if err != nil {
		return models.PublicUser{}, err
	}

	if data, err := json.Marshal(user); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("User cache write failed")
		}
	}
	return user, nil
}
