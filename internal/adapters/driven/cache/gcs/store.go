// Package gcs keeps the change cache as a Google Cloud Storage object.
// The document is the object body; hash and timestamp travel as object metadata.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
)

const (
	metaHash    = "reqsync-sha256"
	metaUpdated = "reqsync-updated"
)

// errObjectNotExist is returned by objectStore implementations for missing objects.
var errObjectNotExist = errors.New("object does not exist")

// objectStore is the slice of the bucket API the cache needs.
type objectStore interface {
	read(ctx context.Context, name string) ([]byte, map[string]string, error)
	write(ctx context.Context, name string, data []byte, meta map[string]string) error
	remove(ctx context.Context, name string) error
}

// Ensure Store implements the interface.
var _ driven.CacheStore = (*Store)(nil)

// Store is a GCS-backed cache.
type Store struct {
	objects objectStore
	object  string
	close   func() error
}

// Config locates the cache object.
type Config struct {
	Bucket string
	Object string

	// CredentialsFile is a service account key. Empty uses application default credentials.
	CredentialsFile string
}

// New creates a cache over a GCS bucket.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" || cfg.Object == "" {
		return nil, fmt.Errorf("gcs bucket and object: %w", domain.ErrInvalidInput)
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GCS storage client: %w", err)
	}

	return &Store{
		objects: &bucketObjects{bucket: client.Bucket(cfg.Bucket)},
		object:  cfg.Object,
		close:   client.Close,
	}, nil
}

// Close releases the storage client.
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Load downloads the cached document.
func (s *Store) Load(ctx context.Context) (*domain.CacheState, error) {
	data, meta, err := s.objects.read(ctx, s.object)
	if errors.Is(err, errObjectNotExist) {
		return &domain.CacheState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cache: %w: %w", domain.ErrCacheUnavailable, err)
	}

	content := string(data)
	state := &domain.CacheState{PreviousContent: &content}
	if h, ok := meta[metaHash]; ok && h != "" {
		state.PreviousHash = &h
	}
	if u, ok := meta[metaUpdated]; ok {
		if t, err := time.Parse(time.RFC3339Nano, u); err == nil {
			state.UpdatedAt = t
		}
	}
	return state, nil
}

// Save uploads the document, replacing the previous object.
func (s *Store) Save(ctx context.Context, content, hash string) error {
	meta := map[string]string{
		metaHash:    hash,
		metaUpdated: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := s.objects.write(ctx, s.object, []byte(content), meta); err != nil {
		return fmt.Errorf("save cache: %w: %w", domain.ErrCacheUnavailable, err)
	}
	return nil
}

// Clear deletes the object. A missing object is not an error.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.objects.remove(ctx, s.object); err != nil && !errors.Is(err, errObjectNotExist) {
		return fmt.Errorf("clear cache: %w: %w", domain.ErrCacheUnavailable, err)
	}
	return nil
}

// bucketObjects implements objectStore over a real bucket.
type bucketObjects struct {
	bucket *storage.BucketHandle
}

func (b *bucketObjects) read(ctx context.Context, name string) ([]byte, map[string]string, error) {
	obj := b.bucket.Object(name)
	r, err := obj.NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, nil, errObjectNotExist
	}
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}

	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return nil, nil, err
	}
	return data, attrs.Metadata, nil
}

func (b *bucketObjects) write(ctx context.Context, name string, data []byte, meta map[string]string) error {
	w := b.bucket.Object(name).NewWriter(ctx)
	w.ContentType = "text/plain; charset=utf-8"
	w.CacheControl = "no-cache, no-store, must-revalidate"
	w.Metadata = meta

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (b *bucketObjects) remove(ctx context.Context, name string) error {
	err := b.bucket.Object(name).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return errObjectNotExist
	}
	return err
}
