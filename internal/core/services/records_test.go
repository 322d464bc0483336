package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/reqsync/internal/core/domain"
)

type captureExporter struct {
	records []domain.Record
	err     error
}

func (e *captureExporter) Export(_ context.Context, _ domain.RecordTemplate, records []domain.Record) error {
	e.records = records
	return e.err
}

func TestRecordService_ListAndGet(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRecordStore(testRecord("TC-002", "B", "R1"), testRecord("TC-001", "A", "R1"))
	service := NewRecordService(store, nil, domain.DefaultRecordTemplate())

	records, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "TC-001", records[0].Get("Test Case ID"))

	rec, err := service.Get(ctx, "TC-002")
	require.NoError(t, err)
	assert.Equal(t, "B", rec.Get("Test Case Title"))

	_, err = service.Get(ctx, "TC-404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "Test Case ID", service.Template().IdentityField)
}

func TestRecordService_Export(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRecordStore(testRecord("TC-001", "A", "R1"))

	var cfgErr *domain.ConfigurationError
	err := NewRecordService(store, nil, domain.DefaultRecordTemplate()).Export(ctx)
	require.True(t, errors.As(err, &cfgErr))

	exporter := &captureExporter{}
	require.NoError(t, NewRecordService(store, exporter, domain.DefaultRecordTemplate()).Export(ctx))
	assert.Len(t, exporter.records, 1)

	exporter.err = errors.New("permission denied")
	err = NewRecordService(store, exporter, domain.DefaultRecordTemplate()).Export(ctx)
	assert.ErrorContains(t, err, "permission denied")
}
