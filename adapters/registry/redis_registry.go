package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/codeventure/warden/core"
	"github.com/codeventure/warden/ports"
)

// RedisRegistry is a Redis implementation of the Registry interface. Entries
// expire with the Redis TTL, so they never outlive the token they track.
type RedisRegistry struct {
	client *redis.Client
	prefix string
}

// NewRedisRegistry creates a new Redis registry.
func NewRedisRegistry(client *redis.Client) ports.Registry {
	return &RedisRegistry{
		client: client,
		prefix: "warden:refresh:",
	}
}

// Register stores jti -> subjectID with the token's remaining lifetime.
func (r *RedisRegistry) Register(ctx context.Context, jti, subjectID string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already past the signed expiry, nothing to track.
		return nil
	}

	if err := r.client.Set(ctx, r.prefix+jti, subjectID, ttl).Err(); err != nil {
		return fmt.Errorf("register jti: %w", core.ErrRegistryUnavailable)
	}

	return nil
}

// IsActive reports whether the jti is present in Redis.
func (r *RedisRegistry) IsActive(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check jti: %w", core.ErrRegistryUnavailable)
	}

	return n > 0, nil
}

// Revoke deletes the jti entry. Deleting an absent key is a no-op in Redis,
// which gives the idempotency the service relies on.
func (r *RedisRegistry) Revoke(ctx context.Context, jti string) error {
	if err := r.client.Del(ctx, r.prefix+jti).Err(); err != nil {
		return fmt.Errorf("revoke jti: %w", core.ErrRegistryUnavailable)
	}

	return nil
}
