package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs []*domain.RunReport
}

// NewRunStore creates an empty run history.
func NewRunStore() *RunStore {
	return &RunStore{}
}

// SaveRun appends a report.
func (s *RunStore) SaveRun(_ context.Context, report *domain.RunReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := *report
	s.runs = append(s.runs, &r)
	return nil
}

// LastRun returns the most recently saved report.
func (s *RunStore) LastRun(_ context.Context) (*domain.RunReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.runs) == 0 {
		return nil, domain.ErrNotFound
	}
	return s.runs[len(s.runs)-1], nil
}

// ListRuns returns up to limit reports, newest first. A limit of 0 returns all.
func (s *RunStore) ListRuns(_ context.Context, limit int) ([]*domain.RunReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.RunReport
	for i := len(s.runs) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, s.runs[i])
	}
	return out, nil
}
