package domain

import (
	"path/filepath"
	"strings"
)

// MIME types of requirements documents.
const (
	MIMETypeDocx     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMETypeMarkdown = "text/markdown"
	MIMETypeText     = "text/plain"
)

// RawDocument is the requirements document as fetched, before normalisation.
type RawDocument struct {
	// URI is the original location (file path, Drive URL).
	URI string

	// MIMEType is the content type (e.g., MIMETypeDocx).
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}

// MIMETypeForPath guesses a requirements MIME type from a file extension.
// Unknown extensions are treated as plain text.
func MIMETypeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return MIMETypeDocx
	case ".md", ".markdown":
		return MIMETypeMarkdown
	default:
		return MIMETypeText
	}
}
