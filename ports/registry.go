package ports

import (
	"context"
	"time"
)

// Registry tracks which refresh token jtis are currently valid.
type Registry interface {
	// Register stores jti -> subjectID with the given TTL. Idempotent on retry.
	Register(ctx context.Context, jti, subjectID string, ttl time.Duration) error

	// IsActive reports whether the jti is present and unexpired.
	IsActive(ctx context.Context, jti string) (bool, error)

	// Revoke deletes the entry. Revoking an absent jti is not an error.
	Revoke(ctx context.Context, jti string) error
}
