// Package cache provides the Redis-backed profile cache.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skillsync/skillsync/internal/domain"
)

const keyPrefix = "profile:"

// ProfileCache stores serialized user profiles with a TTL. Misses and expiry
// fall through to the database; the cache is never the source of truth.
type ProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New builds a ProfileCache on an existing client.
func New(client *redis.Client, ttl time.Duration) *ProfileCache {
	return &ProfileCache{client: client, ttl: ttl}
}

// NewClient dials Redis at addr.
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

func key(id string) string { return keyPrefix + id }

// Get returns the cached profile and whether it was present.
func (c *ProfileCache) Get(ctx domain.Context, id string) (domain.User, bool, error) {
	raw, err := c.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, fmt.Errorf("op=cache.get: %w", err)
	}
	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil {
		// A corrupt entry behaves like a miss; the next Set overwrites it.
		return domain.User{}, false, nil
	}
	return u, true, nil
}

// Set stores the profile under its TTL.
func (c *ProfileCache) Set(ctx domain.Context, u domain.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("op=cache.set: %w", err)
	}
	if err := c.client.Set(ctx, key(u.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("op=cache.set: %w", err)
	}
	return nil
}

// Invalidate drops the cached profile.
func (c *ProfileCache) Invalidate(ctx domain.Context, id string) error {
	if err := c.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("op=cache.invalidate: %w", err)
	}
	return nil
}
