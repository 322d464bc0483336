// Package cache groups the change cache backends.
//
// Every backend implements driven.CacheStore with the same contract: Load
// returns an empty state when nothing was saved, Save overwrites, Clear removes.
// The SQLite backend lives with the SQLite store.
//
//   - filecache: requirements.txt and metadata.json in a directory
//   - badger: an embedded key-value store
//   - gcs: a Google Cloud Storage object, for runs on ephemeral machines
package cache
