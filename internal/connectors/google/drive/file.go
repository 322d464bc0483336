package drive

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"google.golang.org/api/drive/v3"

	"github.com/custodia-labs/reqsync/internal/connectors/google"
	"github.com/custodia-labs/reqsync/internal/core/domain"
)

// Google Workspace MIME types.
const (
	MimeTypeGoogleDoc = "application/vnd.google-apps.document"
	MimeTypeFolder    = "application/vnd.google-apps.folder"
)

// MaxDownloadSize is the default maximum document size (20MB).
const MaxDownloadSize = 20 * 1024 * 1024

const fileFields = "id, name, mimeType, size, webViewLink, trashed"

// fetchMetadata returns the file's metadata.
func fetchMetadata(ctx context.Context, svc *drive.Service, fileID string) (*drive.File, error) {
	file, err := svc.Files.Get(fileID).
		Fields(fileFields).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("get drive file %s: %w", fileID, google.WrapError(err))
	}
	return file, nil
}

// fetchRawDocument downloads file content. Google Docs are exported as
// .docx so headings survive; other files are downloaded as stored.
func fetchRawDocument(ctx context.Context, svc *drive.Service, file *drive.File, maxSize int64) (*domain.RawDocument, error) {
	if file.MimeType == MimeTypeFolder {
		return nil, fmt.Errorf("drive file %s is a folder: %w", file.Id, domain.ErrInvalidInput)
	}
	if file.Trashed {
		return nil, fmt.Errorf("drive file %s is in the trash: %w", file.Id, domain.ErrNotFound)
	}

	var (
		resp     *http.Response
		err      error
		mimeType = file.MimeType
	)
	if file.MimeType == MimeTypeGoogleDoc {
		mimeType = domain.MIMETypeDocx
		resp, err = svc.Files.Export(file.Id, domain.MIMETypeDocx).Context(ctx).Download()
	} else {
		if file.Size > maxSize {
			return nil, fmt.Errorf("drive file %s is %d bytes, limit %d: %w", file.Id, file.Size, maxSize, domain.ErrInvalidInput)
		}
		if mimeType == "" || mimeType == "application/octet-stream" {
			mimeType = domain.MIMETypeForPath(file.Name)
		}
		resp, err = svc.Files.Get(file.Id).SupportsAllDrives(true).Context(ctx).Download()
	}
	if err != nil {
		return nil, fmt.Errorf("download drive file %s: %w", file.Id, google.WrapError(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read drive file %s: %w", file.Id, err)
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("drive file %s exceeds %d bytes: %w", file.Id, maxSize, domain.ErrInvalidInput)
	}

	return &domain.RawDocument{
		URI:      ResolveWebURL(file.Id, file.WebViewLink),
		MIMEType: mimeType,
		Content:  data,
	}, nil
}
