// Package sqlite stores reqsync state in a single SQLite file using the
// pure Go modernc.org/sqlite driver, so no cgo is needed.
//
// One database backs three stores:
//
//   - RecordStore: the record snapshot, replaced atomically on every write
//   - RunStore: run report history
//   - CacheStore: the previous requirements document (cache.backend = sqlite)
//
// The schema comes from the embedded migrations/NNN_name.up.sql files.
// Applied versions are recorded in schema_migrations; the .down.sql
// companions are kept for manual rollbacks and are not embedded.
//
// The database lives at ~/.reqsync/data/reqsync.db unless records.db_dir
// says otherwise.
package sqlite
