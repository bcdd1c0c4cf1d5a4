package ports

import (
	"context"

	"github.com/aretw0/naas/pkg/domain"
)

// StateStore defines the interface for persisting session snapshots.
// This allows a browser session to survive reloads and server restarts.
type StateStore interface {
	// Save persists the snapshot for a given session ID.
	Save(ctx context.Context, sessionID string, snap *domain.Snapshot) error

	// Load retrieves the snapshot for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Snapshot, error)

	// Delete removes the snapshot for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of stored sessions.
	List(ctx context.Context) ([]string, error)
}

// PreferenceStore persists small string preferences per profile.
type PreferenceStore interface {
	// Get returns domain.ErrPreferenceNotFound if the key was never set.
	Get(ctx context.Context, profile, key string) (string, error)
	Set(ctx context.Context, profile, key, value string) error
}
