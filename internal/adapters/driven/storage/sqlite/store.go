package sqlite

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
)

// Timestamps are stored as fixed-width text so that string order is time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const dbFile = "reqsync.db"

//go:embed migrations/*.up.sql
var migrationFiles embed.FS

// Store owns the SQLite database. The record, run and cache stores are
// views over it and share its connection pool.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens dataDir/reqsync.db, creating it and applying pending
// migrations as needed. dataDir defaults to ~/.reqsync/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("sqlite: locate home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".reqsync", "data")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("sqlite: create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", dbPath, err)
	}

	s := &Store{db: db, path: dbPath}
	pending, err := loadMigrations(migrationFiles)
	if err == nil {
		err = s.migrate(pending)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: migrate %s: %w", dbPath, err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file.
func (s *Store) Path() string {
	return s.path
}

// RecordStore returns the record snapshot store. identityField is copied
// into the indexed identity column.
func (s *Store) RecordStore(identityField string) driven.RecordStore {
	return &recordStore{store: s, identityField: identityField}
}

// RunStore returns the run report history.
func (s *Store) RunStore() driven.RunStore {
	return &runStore{store: s}
}

// CacheStore returns the change cache kept in the cache_state table.
func (s *Store) CacheStore() driven.CacheStore {
	return &cacheStore{store: s, name: defaultCacheName}
}

// SchemaVersion returns the newest applied migration, 0 for a new database.
func (s *Store) SchemaVersion() (int, error) {
	var v int
	err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

type migration struct {
	version int
	name    string
	sql     string
}

// loadMigrations reads NNN_name.up.sql files in version order.
func loadMigrations(fsys fs.FS) ([]migration, error) {
	names, err := fs.Glob(fsys, "migrations/*.up.sql")
	if err != nil {
		return nil, err
	}

	out := make([]migration, 0, len(names))
	for _, name := range names {
		base := path.Base(name)
		prefix, _, ok := strings.Cut(base, "_")
		v, err := strconv.Atoi(prefix)
		if !ok || err != nil || v <= 0 {
			return nil, fmt.Errorf("migration %s: file name must start with a positive version", base)
		}
		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		out = append(out, migration{version: v, name: base, sql: string(body)})
	}
	slices.SortFunc(out, func(a, b migration) int { return a.version - b.version })
	return out, nil
}

// migrate applies every migration newer than the schema version, one
// transaction each.
func (s *Store) migrate(all []migration) error {
	const bootstrap = `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`
	if _, err := s.db.Exec(bootstrap); err != nil {
		return err
	}
	current, err := s.SchemaVersion()
	if err != nil {
		return err
	}

	for _, m := range all {
		if m.version <= current {
			continue
		}
		if err := s.apply(m); err != nil {
			return fmt.Errorf("%s: %w", m.name, err)
		}
	}
	return nil
}

func (s *Store) apply(m migration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	if _, err := tx.Exec(m.sql); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
		m.version, formatTime(time.Now())); err != nil {
		return err
	}
	return tx.Commit()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}
