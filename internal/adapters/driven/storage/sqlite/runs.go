package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
)

// runStore implements driven.RunStore.
// The full report is kept as JSON; id, mode, start time and outcome are
// copied into columns for ordering.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// SaveRun stores or replaces a run report.
func (s *runStore) SaveRun(ctx context.Context, report *domain.RunReport) error {
	if report == nil || report.RunID == "" {
		return fmt.Errorf("saving run: %w", domain.ErrInvalidInput)
	}
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshalling run report: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO runs (id, mode, started_at, failed, report)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			mode = excluded.mode,
			started_at = excluded.started_at,
			failed = excluded.failed,
			report = excluded.report
	`, report.RunID, string(report.Mode), formatTime(report.StartedAt), report.Failed, string(data))
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// LastRun returns the most recently started run.
func (s *runStore) LastRun(ctx context.Context) (*domain.RunReport, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT report FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1
	`)
	var data string
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	return decodeRun(data)
}

// ListRuns returns up to limit runs, newest first. A limit of zero or less returns all.
func (s *runStore) ListRuns(ctx context.Context, limit int) ([]*domain.RunReport, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT report FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.RunReport
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run, err := decodeRun(data)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

func decodeRun(data string) (*domain.RunReport, error) {
	var run domain.RunReport
	if err := json.Unmarshal([]byte(data), &run); err != nil {
		return nil, fmt.Errorf("unmarshalling run report: %w", err)
	}
	return &run, nil
}
