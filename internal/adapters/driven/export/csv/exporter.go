// Package csv exports the record snapshot as a CSV file for spreadsheet tools.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
	"github.com/custodia-labs/reqsync/internal/logger"
)

// Ensure Exporter implements the interface.
var _ driven.RecordExporter = (*Exporter)(nil)

// Timestamp columns appended after the template fields.
const (
	ColumnCreated = "Created"
	ColumnUpdated = "Updated"
)

const timeLayout = "2006-01-02 15:04:05"

// Exporter writes the snapshot to a CSV file, keeping the previous export
// as <path>.backup.
type Exporter struct {
	path   string
	backup bool
}

// New creates a CSV exporter writing to path.
func New(path string, backup bool) *Exporter {
	return &Exporter{path: path, backup: backup}
}

// Path returns the export path.
func (e *Exporter) Path() string {
	return e.path
}

// Export writes records with one column per template field plus Created
// and Updated. The file is replaced atomically.
func (e *Exporter) Export(ctx context.Context, template domain.RecordTemplate, records []domain.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(e.path), 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	if e.backup {
		if err := copyFile(e.path, e.path+".backup"); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("backup export: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(e.path), ".export-*.csv")
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeCSV(tmp, template, records); err != nil {
		tmp.Close()
		return fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close export: %w", err)
	}
	if err := os.Rename(tmp.Name(), e.path); err != nil {
		return fmt.Errorf("replace export: %w", err)
	}

	logger.Info("Exported %d record(s) to %s", len(records), e.path)
	return nil
}

func writeCSV(w io.Writer, template domain.RecordTemplate, records []domain.Record) error {
	cw := csv.NewWriter(w)

	header := append(template.FieldNames(), ColumnCreated, ColumnUpdated)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range records {
		row := make([]string, 0, len(header))
		for _, name := range template.FieldNames() {
			row = append(row, r.Get(name))
		}
		row = append(row, formatTime(r.CreatedAt), formatTime(r.UpdatedAt))
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV reads an export back into records. Columns not in the template
// other than the timestamps are ignored.
func ReadCSV(r io.Reader, template domain.RecordTemplate) ([]domain.Record, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return []domain.Record{}, nil
	}

	header := rows[0]
	records := make([]domain.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := domain.NewRecord()
		for i, col := range header {
			if i >= len(row) {
				break
			}
			switch {
			case col == ColumnCreated:
				rec.CreatedAt = parseTime(row[i])
			case col == ColumnUpdated:
				rec.UpdatedAt = parseTime(row[i])
			case template.Has(col):
				rec.Set(col, row[i])
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.ParseInLocation(timeLayout, s, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644) //nolint:gosec // G306: exports are meant to be shared
}
