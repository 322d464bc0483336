package drive

import (
	"regexp"
	"strings"
)

var fileIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/document/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`),
}

var bareFileID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Config holds Google Drive source configuration.
type Config struct {
	// FileID is a Drive file id or sharing URL.
	FileID string

	// MaxSize caps the downloaded size (default: MaxDownloadSize).
	MaxSize int64
}

// ExtractFileID returns the file id from a Drive or Docs URL, or the input
// itself when it already is an id. It returns "" when nothing matches.
//
// Supported forms:
//   - https://drive.google.com/file/d/{id}/view
//   - https://docs.google.com/document/d/{id}/edit
//   - https://drive.google.com/open?id={id}
func ExtractFileID(ref string) string {
	ref = strings.TrimSpace(ref)
	for _, p := range fileIDPatterns {
		if m := p.FindStringSubmatch(ref); m != nil {
			return m[1]
		}
	}
	if bareFileID.MatchString(ref) {
		return ref
	}
	return ""
}

// IsDriveURL reports whether ref points at Google Drive or Docs.
func IsDriveURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.Contains(lower, "drive.google.com") || strings.Contains(lower, "docs.google.com")
}
