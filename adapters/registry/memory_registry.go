package registry

import (
	"context"
	"sync"
	"time"

	"github.com/codeventure/warden/ports"
)

type memoryEntry struct {
	subjectID string
	expiresAt time.Time
}

// MemoryRegistry is an in-memory implementation of the Registry interface,
// intended for tests.
type MemoryRegistry struct {
	entries map[string]memoryEntry
	mu      sync.RWMutex
}

// NewMemoryRegistry creates a new in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		entries: make(map[string]memoryEntry),
	}
}

// Register stores jti -> subjectID with the given TTL.
func (r *MemoryRegistry) Register(ctx context.Context, jti, subjectID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[jti] = memoryEntry{
		subjectID: subjectID,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// IsActive reports whether the jti is present and unexpired.
func (r *MemoryRegistry) IsActive(ctx context.Context, jti string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(entry.expiresAt) {
		return false, nil
	}
	return true, nil
}

// Revoke deletes the jti entry; absent keys are a no-op.
func (r *MemoryRegistry) Revoke(ctx context.Context, jti string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, jti)
	return nil
}

// Subject returns the stored subject for a jti, for test assertions.
func (r *MemoryRegistry) Subject(jti string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[jti]
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.subjectID, true
}

var _ ports.Registry = (*MemoryRegistry)(nil)
