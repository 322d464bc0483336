package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
	"github.com/custodia-labs/reqsync/internal/core/ports/driving"
)

// Ensure ChangeCache implements the interface.
var _ driving.CacheService = (*ChangeCache)(nil)

// ChangeCache remembers the previous requirements document between runs.
type ChangeCache struct {
	store driven.CacheStore
}

// NewChangeCache creates a change cache over a storage backend.
func NewChangeCache(store driven.CacheStore) *ChangeCache {
	return &ChangeCache{store: store}
}

// HashContent returns the hex SHA-256 of the document content.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Previous returns the cached document content, or nil on the first run.
func (c *ChangeCache) Previous(ctx context.Context) (*string, error) {
	state, err := c.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cache: %w", err)
	}
	if state.IsEmpty() {
		return nil, nil
	}
	return state.PreviousContent, nil
}

// SetCurrent stores content as the new previous snapshot.
func (c *ChangeCache) SetCurrent(ctx context.Context, content string) error {
	if err := c.store.Save(ctx, content, HashContent(content)); err != nil {
		return fmt.Errorf("save cache: %w", err)
	}
	return nil
}

// HasChanged compares the content hash with the cached hash.
// It returns true when nothing was cached yet.
func (c *ChangeCache) HasChanged(ctx context.Context, content string) (bool, error) {
	state, err := c.store.Load(ctx)
	if err != nil {
		return true, fmt.Errorf("load cache: %w", err)
	}
	if state == nil || state.PreviousHash == nil {
		return true, nil
	}
	return *state.PreviousHash != HashContent(content), nil
}

// Info returns the cached state.
func (c *ChangeCache) Info(ctx context.Context) (*domain.CacheState, error) {
	state, err := c.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cache: %w", err)
	}
	return state, nil
}

// Clear drops the cached snapshot so the next run treats everything as new.
func (c *ChangeCache) Clear(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}
