package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveWebURL(t *testing.T) {
	assert.Equal(t, "https://docs.google.com/document/d/1abc/edit", ResolveWebURL("1abc", "https://docs.google.com/document/d/1abc/edit"))
	assert.Equal(t, "https://drive.google.com/file/d/1abc/view", ResolveWebURL("1abc", ""))
	assert.Equal(t, "", ResolveWebURL("", ""))
}

func TestExtractFileID(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"file url", "https://drive.google.com/file/d/1AbC_-9/view?usp=sharing", "1AbC_-9"},
		{"docs url", "https://docs.google.com/document/d/XyZ123/edit", "XyZ123"},
		{"open url", "https://drive.google.com/open?id=Q1w2e3", "Q1w2e3"},
		{"bare id", "  1AbC_-9  ", "1AbC_-9"},
		{"unrelated url", "https://example.com/reqs.docx", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractFileID(tt.ref))
		})
	}
}

func TestIsDriveURL(t *testing.T) {
	assert.True(t, IsDriveURL("https://drive.google.com/file/d/x/view"))
	assert.True(t, IsDriveURL("https://DOCS.google.com/document/d/x"))
	assert.False(t, IsDriveURL("/tmp/reqs.docx"))
}
