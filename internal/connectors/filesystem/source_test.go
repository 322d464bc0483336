package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/normalisers"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestSource_ReadCurrentContent(t *testing.T) {
	dir := t.TempDir()

	t.Run("markdown", func(t *testing.T) {
		path := writeFile(t, dir, "reqs.md", "## REQ-001: Login\n\n**Users** log in.")
		src := New(path, normalisers.Default())

		text, err := src.ReadCurrentContent(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "## REQ-001: Login\n\nUsers log in.", text)
		assert.Equal(t, path, src.Describe())
	})

	t.Run("text via file uri", func(t *testing.T) {
		path := writeFile(t, dir, "reqs.txt", "REQ-1: A\r\nbody\r\n")
		src := New("file://"+path, normalisers.Default())

		text, err := src.ReadCurrentContent(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "REQ-1: A\nbody", text)
		assert.Equal(t, path, src.Path())
	})

	t.Run("missing file", func(t *testing.T) {
		src := New(filepath.Join(dir, "absent.md"), normalisers.Default())

		_, err := src.ReadCurrentContent(context.Background())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("directory", func(t *testing.T) {
		src := New(dir, normalisers.Default())

		_, err := src.ReadCurrentContent(context.Background())
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("invalid docx", func(t *testing.T) {
		path := writeFile(t, dir, "broken.docx", "not a zip")
		src := New(path, normalisers.Default())

		_, err := src.ReadCurrentContent(context.Background())
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestSource_HandleFsEvent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reqs.md")
	src := New(path, normalisers.Default())

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write", fsnotify.Event{Name: path, Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: path, Op: fsnotify.Create}, true},
		{"rename", fsnotify.Event{Name: path, Op: fsnotify.Rename}, true},
		{"write and chmod", fsnotify.Event{Name: path, Op: fsnotify.Write | fsnotify.Chmod}, true},
		{"chmod only", fsnotify.Event{Name: path, Op: fsnotify.Chmod}, false},
		{"remove", fsnotify.Event{Name: path, Op: fsnotify.Remove}, false},
		{"other file", fsnotify.Event{Name: filepath.Join(dir, "other.md"), Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, src.handleFsEvent(tt.event))
		})
	}
}

func TestSource_Watch(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "reqs.md", "initial")
	src := New(path, normalisers.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := src.Watch(ctx, 20*time.Millisecond)
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(path, []byte("first"), 0600)
		_ = os.WriteFile(path, []byte("second"), 0600)
	}()

	select {
	case _, ok := <-changes:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change notification")
	}

	cancel()
	select {
	case _, ok := <-changes:
		for ok {
			_, ok = <-changes
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch channel not closed after cancel")
	}
}

func TestSource_Watch_MissingDirectory(t *testing.T) {
	src := New(filepath.Join(t.TempDir(), "nope", "reqs.md"), normalisers.Default())

	_, err := src.Watch(context.Background(), 0)
	assert.Error(t, err)
}
