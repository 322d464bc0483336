package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqsync/internal/core/domain"
)

// createTestDOCX creates a minimal valid DOCX file in memory.
func createTestDOCX(documentXML string) []byte {
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	contentTypes, _ := w.Create("[Content_Types].xml")
	contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))

	if documentXML != "" {
		doc, _ := w.Create("word/document.xml")
		doc.Write([]byte(documentXML))
	}

	w.Close()
	return buf.Bytes()
}

func wrapBody(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>` + body + `</w:body>
</w:document>`
}

func TestSupportedMIMETypes(t *testing.T) {
	assert.Equal(t, []string{domain.MIMETypeDocx}, New().SupportedMIMETypes())
}

func TestNormalise_ParagraphsAndHeadings(t *testing.T) {
	body := `
<w:p><w:pPr><w:pStyle w:val="Title"/></w:pPr><w:r><w:t>Login Service</w:t></w:r></w:p>
<w:p><w:pPr><w:pStyle w:val="Heading2"/></w:pPr><w:r><w:t>REQ-001: Login</w:t></w:r></w:p>
<w:p><w:r><w:t>Users log in </w:t></w:r><w:r><w:t>with email.</w:t></w:r></w:p>
<w:p></w:p>
<w:p><w:r><w:t>Passwords are hashed.</w:t></w:r></w:p>`

	raw := &domain.RawDocument{URI: "reqs.docx", Content: createTestDOCX(wrapBody(body))}
	text, err := New().Normalise(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, "# Login Service\n\n\n## REQ-001: Login\n\nUsers log in with email.\nPasswords are hashed.", text)
}

func TestNormalise_TablesFollowParagraphs(t *testing.T) {
	body := `
<w:p><w:r><w:t>Intro</w:t></w:r></w:p>
<w:tbl>
<w:tr><w:tc><w:p><w:r><w:t>ID</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Text</w:t></w:r></w:p></w:tc></w:tr>
<w:tr><w:tc><w:p><w:r><w:t>REQ-2</w:t></w:r></w:p></w:tc><w:tc><w:p></w:p></w:tc></w:tr>
</w:tbl>`

	raw := &domain.RawDocument{Content: createTestDOCX(wrapBody(body))}
	text, err := New().Normalise(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, "Intro\nID | Text\nREQ-2", text)
}

func TestNormalise_Errors(t *testing.T) {
	n := New()

	_, err := n.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = n.Normalise(context.Background(), &domain.RawDocument{Content: []byte("not a zip")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_MissingDocumentXML(t *testing.T) {
	text, err := New().Normalise(context.Background(), &domain.RawDocument{Content: createTestDOCX("")})

	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestNormalise_MalformedXML(t *testing.T) {
	text, err := New().Normalise(context.Background(), &domain.RawDocument{Content: createTestDOCX("<w:document><w:body>")})

	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestHeadingLevel(t *testing.T) {
	tests := []struct {
		style string
		want  int
	}{
		{"Heading1", 1},
		{"Heading 3", 3},
		{"heading2", 2},
		{"Heading", 1},
		{"Title", 1},
		{"Normal", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			var p paragraph
			p.Props.Style.Val = tt.style
			assert.Equal(t, tt.want, p.headingLevel())
		})
	}
}
