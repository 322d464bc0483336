package file

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqsync/internal/core/domain"
)

func writeTemplate(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestTemplateLoader_EmptyPathReturnsDefault(t *testing.T) {
	tmpl, err := NewTemplateLoader().Load("")

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultRecordTemplate(), tmpl)
}

func TestTemplateLoader_Load(t *testing.T) {
	path := writeTemplate(t, `
identity_field: Key
title_field: Summary
trace_field: Story
identity_format: QA-%04d
fields:
  - name: Key
  - name: Story
  - name: Summary
  - name: Priority
    default: Low
`)

	tmpl, err := NewTemplateLoader().Load(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"Key", "Story", "Summary", "Priority"}, tmpl.FieldNames())
	assert.Equal(t, "Low", tmpl.Fields[3].Default)
	assert.Equal(t, "QA-0007", tmpl.FormatID(7))
	assert.Equal(t, domain.DefaultDelimiter, tmpl.Delimiter)
}

func TestTemplateLoader_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		reason  string
	}{
		{
			name:    "no fields",
			content: "identity_field: ID\ntitle_field: Title\n",
			reason:  "Fields",
		},
		{
			name:    "title not declared",
			content: "identity_field: ID\ntitle_field: Title\nfields:\n  - name: ID\n",
			reason:  `title_field "Title"`,
		},
		{
			name:    "duplicate field",
			content: "identity_field: ID\ntitle_field: ID\nfields:\n  - name: ID\n  - name: ID\n",
			reason:  "duplicate field",
		},
		{
			name:    "bad identity format",
			content: "identity_field: ID\ntitle_field: ID\nidentity_format: fixed\nfields:\n  - name: ID\n",
			reason:  "round-trip",
		},
		{
			name:    "not yaml",
			content: "fields: [unterminated",
			reason:  "parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTemplateLoader().Load(writeTemplate(t, tt.content))

			var cfgErr *domain.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, "template.path", cfgErr.Key)
			assert.Contains(t, cfgErr.Reason, tt.reason)
		})
	}
}

func TestTemplateLoader_MissingFile(t *testing.T) {
	_, err := NewTemplateLoader().Load(filepath.Join(t.TempDir(), "none.yaml"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestTemplateLoader_SaveRoundTrip(t *testing.T) {
	loader := NewTemplateLoader()
	path := filepath.Join(t.TempDir(), "nested", "template.yaml")

	require.NoError(t, loader.Save(path, domain.DefaultRecordTemplate()))
	tmpl, err := loader.Load(path)

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultRecordTemplate(), tmpl)
}
