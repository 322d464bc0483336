// Package drive reads the requirements document from Google Drive.
package drive

import (
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"

	"github.com/custodia-labs/reqsync/internal/connectors/google"
	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
	"github.com/custodia-labs/reqsync/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// Source reads one Drive file and normalises it to text.
type Source struct {
	svc      *drive.Service
	fileID   string
	maxSize  int64
	registry driven.NormaliserRegistry
	limiter  *google.Limiter
}

// New creates a Drive source. cfg.FileID may be an id or a sharing URL.
func New(svc *drive.Service, cfg Config, registry driven.NormaliserRegistry) (*Source, error) {
	fileID := ExtractFileID(cfg.FileID)
	if fileID == "" {
		return nil, &domain.ConfigurationError{
			Key:    "source.drive_file_id",
			Reason: fmt.Sprintf("cannot extract a file id from %q", cfg.FileID),
			Err:    domain.ErrInvalidInput,
		}
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = MaxDownloadSize
	}
	return &Source{
		svc:      svc,
		fileID:   fileID,
		maxSize:  cfg.MaxSize,
		registry: registry,
		limiter:  google.NewDriveLimiter(),
	}, nil
}

// ReadCurrentContent downloads and normalises the file.
func (s *Source) ReadCurrentContent(ctx context.Context) (string, error) {
	// 1. Metadata decides between export and download
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	file, err := fetchMetadata(ctx, s.svc, s.fileID)
	if err != nil {
		return "", s.limiter.Observe(err)
	}

	// 2. Content
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	raw, err := fetchRawDocument(ctx, s.svc, file, s.maxSize)
	if err != nil {
		return "", s.limiter.Observe(err)
	}
	logger.Debug("downloaded %s (%s, %d bytes)", file.Name, raw.MIMEType, len(raw.Content))

	// 3. Text
	return s.registry.Normalise(ctx, raw)
}

// Describe returns the Drive viewer URL.
func (s *Source) Describe() string {
	return ResolveWebURL(s.fileID, "")
}
