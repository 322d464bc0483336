// Package filecache keeps the change cache as plain files in a directory:
// requirements.txt holds the previous document and metadata.json its hash.
package filecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
)

const (
	contentFile  = "requirements.txt"
	metadataFile = "metadata.json"
)

// Ensure Store implements the interface.
var _ driven.CacheStore = (*Store)(nil)

// Store is a directory-backed cache.
type Store struct {
	dir string
}

// New creates a cache in dir, creating it if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache directory: %w", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the cache directory.
func (s *Store) Dir() string {
	return s.dir
}

type metadata struct {
	Hash    string    `json:"requirements_hash"`
	Updated time.Time `json:"requirements_updated"`
}

// Load reads the cached document and its metadata.
// A document without metadata is returned without a hash, which makes the
// next comparison report a change.
func (s *Store) Load(_ context.Context) (*domain.CacheState, error) {
	content, err := os.ReadFile(filepath.Join(s.dir, contentFile))
	if errors.Is(err, os.ErrNotExist) {
		return &domain.CacheState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cached document: %w", err)
	}
	text := string(content)
	state := &domain.CacheState{PreviousContent: &text}

	data, err := os.ReadFile(filepath.Join(s.dir, metadataFile))
	if errors.Is(err, os.ErrNotExist) {
		return state, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache metadata: %w", err)
	}

	var meta metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse cache metadata: %w", err)
	}
	if meta.Hash != "" {
		state.PreviousHash = &meta.Hash
	}
	state.UpdatedAt = meta.Updated
	return state, nil
}

// Save writes the document first and the metadata last, each through a
// temp file and rename.
func (s *Store) Save(_ context.Context, content, hash string) error {
	if err := s.writeAtomic(contentFile, []byte(content)); err != nil {
		return err
	}
	data, err := json.MarshalIndent(metadata{Hash: hash, Updated: time.Now()}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache metadata: %w", err)
	}
	return s.writeAtomic(metadataFile, data)
}

// Clear removes both files.
func (s *Store) Clear(_ context.Context) error {
	for _, name := range []string{metadataFile, contentFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) writeAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}
