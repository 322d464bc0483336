package filesystem

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath turns what a user typed for source.path into a local path.
// It accepts file:// URIs (percent-encoded or not) and a leading ~/.
func ResolvePath(uri string) string {
	if rest, ok := strings.CutPrefix(uri, "file://"); ok {
		if decoded, err := url.PathUnescape(rest); err == nil {
			rest = decoded
		}
		// file://localhost/path names the same file as file:///path.
		if host, path, found := strings.Cut(rest, "/"); found && (host == "" || host == "localhost") {
			rest = "/" + path
		}
		return rest
	}
	if rest, ok := strings.CutPrefix(uri, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return uri
}
