package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is an in-memory implementation of driven.RecordStore.
type RecordStore struct {
	mu      sync.RWMutex
	records []domain.Record
	writes  int
	failErr error
}

// NewRecordStore creates a store seeded with records.
func NewRecordStore(records ...domain.Record) *RecordStore {
	s := &RecordStore{}
	s.records = cloneRecords(records)
	return s
}

// ReadExisting returns a copy of the snapshot.
func (s *RecordStore) ReadExisting(_ context.Context) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecords(s.records), nil
}

// Write replaces the snapshot.
func (s *RecordStore) Write(_ context.Context, records []domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	s.records = cloneRecords(records)
	s.writes++
	return nil
}

// Writes returns how many times Write succeeded.
func (s *RecordStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// FailWrites makes every later Write return err. Nil clears it.
func (s *RecordStore) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

func cloneRecords(in []domain.Record) []domain.Record {
	out := make([]domain.Record, len(in))
	for i, r := range in {
		out[i] = r.Clone()
		out[i].Status = ""
	}
	return out
}
