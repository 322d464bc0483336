package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

// CacheStore is an in-memory implementation of driven.CacheStore.
type CacheStore struct {
	mu    sync.RWMutex
	state *domain.CacheState
}

// NewCacheStore creates an empty cache.
func NewCacheStore() *CacheStore {
	return &CacheStore{}
}

// Load returns the stored state, or an empty state.
func (s *CacheStore) Load(_ context.Context) (*domain.CacheState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return &domain.CacheState{}, nil
	}
	c := *s.state
	return &c, nil
}

// Save replaces the stored state.
func (s *CacheStore) Save(_ context.Context, content, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = &domain.CacheState{
		PreviousContent: &content,
		PreviousHash:    &hash,
		UpdatedAt:       time.Now(),
	}
	return nil
}

// Clear removes the stored state.
func (s *CacheStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = nil
	return nil
}
