package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{domain.MIMETypeDocx}
}

// Normalise extracts the document text.
// Heading paragraphs become markdown headings of the same level and table
// rows become "cell | cell" lines after the body paragraphs.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return "", fmt.Errorf("open docx %s: %w", raw.URI, domain.ErrInvalidInput)
	}

	content, err := extractDocumentXML(reader)
	if err != nil {
		return "", fmt.Errorf("read docx %s: %w", raw.URI, err)
	}

	return renderDocument(content), nil
}

// extractDocumentXML returns word/document.xml.
func extractDocumentXML(reader *zip.Reader) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		defer rc.Close()

		content, err := io.ReadAll(rc)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		return content, nil
	}
	return nil, nil
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
		Tables     []table     `xml:"tbl"`
	} `xml:"body"`
}

type paragraph struct {
	Props struct {
		Style struct {
			Val string `xml:"val,attr"`
		} `xml:"pStyle"`
	} `xml:"pPr"`
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

type table struct {
	Rows []struct {
		Cells []struct {
			Paragraphs []paragraph `xml:"p"`
		} `xml:"tc"`
	} `xml:"tr"`
}

func (p paragraph) text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		for _, t := range r.Text {
			b.WriteString(t.Content)
		}
	}
	return strings.TrimSpace(b.String())
}

// headingLevel returns the level of a "Heading1".."Heading9" or "Title" style, else 0.
func (p paragraph) headingLevel() int {
	style := strings.ReplaceAll(p.Props.Style.Val, " ", "")
	if strings.EqualFold(style, "Title") {
		return 1
	}
	if len(style) < len("Heading") || !strings.EqualFold(style[:len("Heading")], "Heading") {
		return 0
	}
	level, err := strconv.Atoi(style[len("Heading"):])
	if err != nil || level < 1 {
		return 1
	}
	return level
}

// renderDocument converts document XML to text. Malformed XML yields "".
func renderDocument(content []byte) string {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return ""
	}

	var lines []string
	for _, para := range doc.Body.Paragraphs {
		text := para.text()
		if text == "" {
			continue
		}
		if level := para.headingLevel(); level > 0 {
			lines = append(lines, "", strings.Repeat("#", level)+" "+text, "")
			continue
		}
		lines = append(lines, text)
	}

	for _, tbl := range doc.Body.Tables {
		for _, row := range tbl.Rows {
			var cells []string
			for _, cell := range row.Cells {
				var parts []string
				for _, p := range cell.Paragraphs {
					if t := p.text(); t != "" {
						parts = append(parts, t)
					}
				}
				if len(parts) > 0 {
					cells = append(cells, strings.Join(parts, " "))
				}
			}
			if len(cells) > 0 {
				lines = append(lines, strings.Join(cells, " | "))
			}
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
