package ports

import (
	"context"

	"github.com/codeventure/warden/core"
)

// Directory is the external user store. Lookups return (nil, nil) when no
// principal matches.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (*core.Principal, error)
	FindByID(ctx context.Context, id string) (*core.Principal, error)

	// Create persists a new principal. passwordHash may be empty for
	// provider-only accounts. Returns core.ErrEmailTaken on duplicate email.
	Create(ctx context.Context, username, email, passwordHash string) (*core.Principal, error)
}
