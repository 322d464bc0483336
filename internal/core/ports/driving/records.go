package driving

import (
	"context"

	"github.com/custodia-labs/reqsync/internal/core/domain"
)

// RecordService exposes the persisted record snapshot.
type RecordService interface {
	// List returns all records in identity order.
	List(ctx context.Context) ([]domain.Record, error)

	// Get returns one record by identity.
	Get(ctx context.Context, id string) (*domain.Record, error)

	// Template returns the record template in use.
	Template() domain.RecordTemplate

	// Export writes the snapshot through the configured exporter.
	Export(ctx context.Context) error
}

// CacheService exposes the change cache to the CLI.
type CacheService interface {
	Info(ctx context.Context) (*domain.CacheState, error)
	Clear(ctx context.Context) error
}
