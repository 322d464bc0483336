package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
)

const defaultCacheName = "requirements"

// cacheStore implements driven.CacheStore over the cache_state table.
type cacheStore struct {
	store *Store
	name  string
}

var _ driven.CacheStore = (*cacheStore)(nil)

// Load returns the stored document, or an empty state.
func (s *cacheStore) Load(ctx context.Context) (*domain.CacheState, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT content, hash, updated_at FROM cache_state WHERE name = ?
	`, s.name)

	var content, hash, updatedAt string
	if err := row.Scan(&content, &hash, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.CacheState{}, nil
		}
		return nil, fmt.Errorf("loading cache: %w", err)
	}

	t, err := parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.CacheState{PreviousContent: &content, PreviousHash: &hash, UpdatedAt: t}, nil
}

// Save overwrites the stored document.
func (s *cacheStore) Save(ctx context.Context, content, hash string) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO cache_state (name, content, hash, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			content = excluded.content,
			hash = excluded.hash,
			updated_at = excluded.updated_at
	`, s.name, content, hash, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("saving cache: %w", err)
	}
	return nil
}

// Clear removes the stored document.
func (s *cacheStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM cache_state WHERE name = ?", s.name); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}
