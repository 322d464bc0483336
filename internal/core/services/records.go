package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
	"github.com/custodia-labs/reqsync/internal/core/ports/driving"
)

// Ensure RecordService implements the interface.
var _ driving.RecordService = (*RecordService)(nil)

// RecordService provides read access to the persisted snapshot.
type RecordService struct {
	store    driven.RecordStore
	exporter driven.RecordExporter
	template domain.RecordTemplate
}

// NewRecordService creates a record service. The exporter may be nil.
func NewRecordService(store driven.RecordStore, exporter driven.RecordExporter, template domain.RecordTemplate) *RecordService {
	return &RecordService{store: store, exporter: exporter, template: template}
}

// List returns all records in identity order.
func (s *RecordService) List(ctx context.Context) ([]domain.Record, error) {
	records, err := s.store.ReadExisting(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	SortByIdentity(s.template, records)
	return records, nil
}

// Get returns the record with the given identity.
func (s *RecordService) Get(ctx context.Context, id string) (*domain.Record, error) {
	records, err := s.store.ReadExisting(ctx)
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	for i := range records {
		if records[i].Get(s.template.IdentityField) == id {
			return &records[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// Template returns the record template in use.
func (s *RecordService) Template() domain.RecordTemplate {
	return s.template
}

// Export writes the snapshot through the configured exporter.
func (s *RecordService) Export(ctx context.Context) error {
	if s.exporter == nil {
		return &domain.ConfigurationError{Key: keyRecordsExportCSV, Reason: "no export path configured"}
	}
	records, err := s.List(ctx)
	if err != nil {
		return err
	}
	if err := s.exporter.Export(ctx, s.template, records); err != nil {
		return fmt.Errorf("export records: %w", err)
	}
	return nil
}
