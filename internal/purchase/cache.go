package purchase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"boleteria/internal/shared/constants"

	"github.com/redis/go-redis/v9"
)

// SessionCache mirrors the active session snapshot in redis with a sliding
// TTL. Every Put and Touch resets the TTL to the full window. The cache is a
// best-effort projection; the durable store stays authoritative.
type SessionCache interface {
	Get(ctx context.Context, userID string) (*CachedSession, error)
	Put(ctx context.Context, userID string, session *CachedSession) error
	Touch(ctx context.Context, userID string) (bool, error)
	Delete(ctx context.Context, userID string) error
	Exists(ctx context.Context, userID string) bool
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionCache(client *redis.Client, ttl time.Duration) SessionCache {
	return &sessionCache{client: client, ttl: ttl}
}

// Get returns the cached snapshot, or (nil, nil) on a miss.
func (c *sessionCache) Get(ctx context.Context, userID string) (*CachedSession, error) {
	val, err := c.client.Get(ctx, constants.BuildSessionKey(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("session cache get: %w", err)
	}

	var snapshot CachedSession
	if err := json.Unmarshal([]byte(val), &snapshot); err != nil {
		return nil, fmt.Errorf("session cache unmarshal: %w", err)
	}
	return &snapshot, nil
}

// Put replaces the whole snapshot and resets the TTL to the full window.
func (c *sessionCache) Put(ctx context.Context, userID string, session *CachedSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("session cache marshal: %w", err)
	}

	if err := c.client.Set(ctx, constants.BuildSessionKey(userID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("session cache put: %w", err)
	}
	return nil
}

// Touch resets the TTL to the full window. Returns false when no entry
// exists.
func (c *sessionCache) Touch(ctx context.Context, userID string) (bool, error) {
	ok, err := c.client.Expire(ctx, constants.BuildSessionKey(userID), c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("session cache touch: %w", err)
	}
	return ok, nil
}

func (c *sessionCache) Delete(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, constants.BuildSessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("session cache delete: %w", err)
	}
	return nil
}

func (c *sessionCache) Exists(ctx context.Context, userID string) bool {
	n, err := c.client.Exists(ctx, constants.BuildSessionKey(userID)).Result()
	return err == nil && n > 0
}
