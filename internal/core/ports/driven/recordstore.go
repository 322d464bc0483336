package driven

import (
	"context"

	"github.com/custodia-labs/reqsync/internal/core/domain"
)

// RecordStore persists the record snapshot.
type RecordStore interface {
	// ReadExisting returns the current snapshot in identity order.
	// An empty store returns an empty slice, not an error.
	ReadExisting(ctx context.Context) ([]domain.Record, error)

	// Write replaces the snapshot atomically.
	Write(ctx context.Context, records []domain.Record) error
}

// RecordExporter writes a copy of the snapshot for people to read.
type RecordExporter interface {
	Export(ctx context.Context, template domain.RecordTemplate, records []domain.Record) error
}

// RunStore keeps the history of run reports.
type RunStore interface {
	SaveRun(ctx context.Context, report *domain.RunReport) error

	// LastRun returns domain.ErrNotFound when no run was recorded.
	LastRun(ctx context.Context) (*domain.RunReport, error)

	ListRuns(ctx context.Context, limit int) ([]*domain.RunReport, error)
}
