package mcp

import (
	"context"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driving"
)

// mockRecordService is a mock implementation of driving.RecordService.
type mockRecordService struct {
	records []domain.Record
	err     error
}

func (m *mockRecordService) List(_ context.Context) ([]domain.Record, error) {
	return m.records, m.err
}

func (m *mockRecordService) Get(_ context.Context, id string) (*domain.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.records {
		if m.records[i].Get("ID") == id {
			return &m.records[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockRecordService) Template() domain.RecordTemplate {
	return domain.RecordTemplate{
		Fields:         []domain.Field{{Name: "ID"}, {Name: "Requirement"}, {Name: "Title"}},
		IdentityField:  "ID",
		TitleField:     "Title",
		TraceField:     "Requirement",
		IdentityFormat: "TC-%03d",
		Delimiter:      "---TEST_CASE---",
	}
}

func (m *mockRecordService) Export(_ context.Context) error {
	return m.err
}

// mockReconciler is a mock implementation of driving.Reconciler.
type mockReconciler struct {
	report  *domain.RunReport
	err     error
	lastOpt driving.RunOptions
}

func (m *mockReconciler) Run(_ context.Context, opts driving.RunOptions) (*domain.RunReport, error) {
	m.lastOpt = opts
	return m.report, m.err
}

func (m *mockReconciler) LastRun(_ context.Context) (*domain.RunReport, error) {
	if m.report == nil {
		return nil, domain.ErrNotFound
	}
	return m.report, nil
}

func record(id, req, title string) domain.Record {
	r := domain.NewRecord()
	r.Set("ID", id)
	r.Set("Requirement", req)
	r.Set("Title", title)
	return r
}
