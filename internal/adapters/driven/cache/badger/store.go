// Package badger keeps the change cache in an embedded BadgerDB.
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
	"github.com/custodia-labs/reqsync/internal/logger"
)

const keyPrefix = "cache/requirements/"

var (
	keyContent = []byte(keyPrefix + "content")
	keyHash    = []byte(keyPrefix + "hash")
	keyUpdated = []byte(keyPrefix + "updated")
)

// Ensure Store implements the interface.
var _ driven.CacheStore = (*Store)(nil)

// Config configures the database.
type Config struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path string

	// InMemory keeps everything in memory. Used by tests.
	InMemory bool
}

// Store is a BadgerDB-backed cache.
type Store struct {
	db *badger.DB
}

// badgerLogger routes BadgerDB's internal logging through the reqsync logger.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...any) {
	logger.Error("badger: "+strings.TrimSuffix(format, "\n"), args...)
}

func (badgerLogger) Warningf(format string, args ...any) {
	logger.Warn("badger: "+strings.TrimSuffix(format, "\n"), args...)
}

func (badgerLogger) Infof(format string, args ...any) {
	logger.Debug("badger: "+strings.TrimSuffix(format, "\n"), args...)
}

func (badgerLogger) Debugf(format string, args ...any) {
	logger.Debug("badger: "+strings.TrimSuffix(format, "\n"), args...)
}

// Open opens or creates the database.
func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("badger path: %w", domain.ErrInvalidInput)
		}
		if err := os.MkdirAll(cfg.Path, 0700); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path).WithSyncWrites(true)
	}
	opts = opts.WithNumVersionsToKeep(1).WithLogger(badgerLogger{})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the cached document, or an empty state.
func (s *Store) Load(_ context.Context) (*domain.CacheState, error) {
	state := &domain.CacheState{}
	err := s.db.View(func(txn *badger.Txn) error {
		content, err := get(txn, keyContent)
		if err != nil || content == nil {
			return err
		}
		text := string(content)
		state.PreviousContent = &text

		hash, err := get(txn, keyHash)
		if err != nil {
			return err
		}
		if hash != nil {
			h := string(hash)
			state.PreviousHash = &h
		}

		updated, err := get(txn, keyUpdated)
		if err != nil || updated == nil {
			return err
		}
		return state.UpdatedAt.UnmarshalText(updated)
	})
	if err != nil {
		return nil, fmt.Errorf("load cache: %w", err)
	}
	return state, nil
}

// Save writes content, hash and timestamp in one transaction.
func (s *Store) Save(_ context.Context, content, hash string) error {
	updated, err := time.Now().MarshalText()
	if err != nil {
		return fmt.Errorf("encode timestamp: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(keyContent, []byte(content)); err != nil {
			return err
		}
		if err := txn.Set(keyHash, []byte(hash)); err != nil {
			return err
		}
		return txn.Set(keyUpdated, updated)
	})
	if err != nil {
		return fmt.Errorf("save cache: %w", err)
	}
	return nil
}

// Clear deletes all cache keys.
func (s *Store) Clear(_ context.Context) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, k := range [][]byte{keyContent, keyHash, keyUpdated} {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// get returns nil without error when the key is missing.
func get(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}
