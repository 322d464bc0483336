package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
)

// recordStore implements driven.RecordStore.
type recordStore struct {
	store         *Store
	identityField string
}

var _ driven.RecordStore = (*recordStore)(nil)

// ReadExisting returns the snapshot in the order it was written.
func (s *recordStore) ReadExisting(ctx context.Context) ([]domain.Record, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT fields, created_at, updated_at FROM records ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	records := make([]domain.Record, 0)
	for rows.Next() {
		var fieldsJSON, createdAt, updatedAt string
		if err := rows.Scan(&fieldsJSON, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		r := domain.NewRecord()
		if err := json.Unmarshal([]byte(fieldsJSON), &r.Fields); err != nil {
			return nil, fmt.Errorf("unmarshalling record fields: %w", err)
		}
		if r.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return records, nil
}

// Write replaces the whole snapshot in one transaction.
func (s *recordStore) Write(ctx context.Context, records []domain.Record) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM records"); err != nil {
		return fmt.Errorf("clearing records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (position, identity, fields, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		fieldsJSON, err := json.Marshal(r.Fields)
		if err != nil {
			return fmt.Errorf("marshalling record fields: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, i, r.Get(s.identityField), string(fieldsJSON),
			formatTime(r.CreatedAt), formatTime(r.UpdatedAt)); err != nil {
			return fmt.Errorf("inserting record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing records: %w", err)
	}
	return nil
}
