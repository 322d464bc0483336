// Package filesystem reads the requirements document from a local file.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// MaxDocumentSize caps the file size read into memory (50MB).
const MaxDocumentSize = 50 * 1024 * 1024

// Source reads a .docx, .md or .txt file and normalises it to text.
type Source struct {
	path     string
	registry driven.NormaliserRegistry
}

// New creates a file source. uri may be a path or a file:// URI.
func New(uri string, registry driven.NormaliserRegistry) *Source {
	return &Source{
		path:     filepath.Clean(ResolvePath(uri)),
		registry: registry,
	}
}

// Path returns the resolved file path.
func (s *Source) Path() string {
	return s.path
}

// ReadCurrentContent reads and normalises the file.
func (s *Source) ReadCurrentContent(ctx context.Context) (string, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("requirements document %s: %w", s.path, domain.ErrNotFound)
		}
		return "", fmt.Errorf("stat requirements document: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("requirements document %s is a directory: %w", s.path, domain.ErrInvalidInput)
	}
	if info.Size() > MaxDocumentSize {
		return "", fmt.Errorf("requirements document %s exceeds %d bytes: %w", s.path, MaxDocumentSize, domain.ErrInvalidInput)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("read requirements document: %w", err)
	}

	return s.registry.Normalise(ctx, &domain.RawDocument{
		URI:      s.path,
		MIMEType: domain.MIMETypeForPath(s.path),
		Content:  data,
	})
}

// Describe returns the file path.
func (s *Source) Describe() string {
	return s.path
}
