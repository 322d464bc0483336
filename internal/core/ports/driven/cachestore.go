package driven

import (
	"context"

	"github.com/custodia-labs/reqsync/internal/core/domain"
)

// CacheStore persists the previous document snapshot.
// The contract is identical for local and remote backends.
type CacheStore interface {
	// Load returns the stored state, or an empty state when nothing was stored.
	Load(ctx context.Context) (*domain.CacheState, error)

	// Save overwrites the stored state.
	Save(ctx context.Context, content string, hash string) error

	// Clear removes the stored state.
	Clear(ctx context.Context) error
}
