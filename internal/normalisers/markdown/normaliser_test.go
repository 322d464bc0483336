package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqsync/internal/core/domain"
)

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()

	assert.Contains(t, mimeTypes, "text/markdown")
	assert.Contains(t, mimeTypes, "text/x-markdown")
	assert.Len(t, mimeTypes, 2)
}

func TestNormalise_KeepsStructure(t *testing.T) {
	raw := &domain.RawDocument{
		URI:     "reqs.md",
		Content: []byte("---\ntitle: Reqs\n---\n# Auth\r\n\r\n## REQ-001: Login\n\nUsers **must** log in via [SSO](https://sso).\n\n\n\n- one\n- two\n<!-- draft -->\n![diagram](d.png)"),
	}

	text, err := New().Normalise(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, "# Auth\n\n## REQ-001: Login\n\nUsers must log in via SSO.\n\n- one\n- two", text)
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStripMarkdown_Empty(t *testing.T) {
	assert.Equal(t, "", stripMarkdown("  \n\n "))
}
