package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMIMETypeForPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"requirements.docx", MIMETypeDocx},
		{"/tmp/Spec.DOCX", MIMETypeDocx},
		{"reqs.md", MIMETypeMarkdown},
		{"reqs.markdown", MIMETypeMarkdown},
		{"reqs.txt", MIMETypeText},
		{"README", MIMETypeText},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, MIMETypeForPath(tt.path))
		})
	}
}
