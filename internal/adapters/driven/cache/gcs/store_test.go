package gcs

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqsync/internal/core/domain"
)

type fakeObjects struct {
	mu   sync.Mutex
	data map[string][]byte
	meta map[string]map[string]string
	err  error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{data: map[string][]byte{}, meta: map[string]map[string]string{}}
}

func (f *fakeObjects) read(_ context.Context, name string) ([]byte, map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, nil, f.err
	}
	d, ok := f.data[name]
	if !ok {
		return nil, nil, errObjectNotExist
	}
	return d, f.meta[name], nil
}

func (f *fakeObjects) write(_ context.Context, name string, data []byte, meta map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.data[name] = data
	f.meta[name] = meta
	return nil
}

func (f *fakeObjects) remove(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[name]; !ok {
		return errObjectNotExist
	}
	delete(f.data, name)
	delete(f.meta, name)
	return nil
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	objects := newFakeObjects()
	s := &Store{objects: objects, object: "reqsync/requirements"}

	state, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, state.IsEmpty())

	require.NoError(t, s.Save(ctx, "REQ-1", "abc"))
	assert.Equal(t, "abc", objects.meta["reqsync/requirements"][metaHash])

	state, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "REQ-1", *state.PreviousContent)
	assert.Equal(t, "abc", *state.PreviousHash)
	assert.False(t, state.UpdatedAt.IsZero())

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx))
	state, err = s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, state.IsEmpty())
	assert.NoError(t, s.Close())
}

func TestStore_BackendFailure(t *testing.T) {
	objects := newFakeObjects()
	objects.err = errors.New("503 backend error")
	s := &Store{objects: objects, object: "o"}

	_, err := s.Load(context.Background())
	assert.True(t, errors.Is(err, domain.ErrCacheUnavailable))

	err = s.Save(context.Background(), "x", "y")
	assert.True(t, errors.Is(err, domain.ErrCacheUnavailable))
}

func TestNew_RequiresBucketAndObject(t *testing.T) {
	_, err := New(context.Background(), Config{Bucket: "b"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
