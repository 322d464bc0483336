// Package extractor splits requirements document text into requirements.
package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
	"github.com/custodia-labs/reqsync/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.RequirementExtractor = (*Extractor)(nil)

// Chunking limits for documents without requirement headers.
const (
	maxParagraphs    = 50
	largeDocument    = 5000
	chunkSize        = 2000
	titlePreviewSize = 50
)

var (
	// "REQ-001: Title", "## FR_12 - Title", "US-7 | Title", "NFR-3"
	idHeader = regexp.MustCompile(`(?i)^#*\s*((?:REQ|FR|NFR|US)[-_][A-Za-z0-9._-]*[A-Za-z0-9])\s*(?:[:|–-]\s*(.*))?$`)

	// "Requirement 4: Title", "User Story 2.1 - Title"
	wordHeader = regexp.MustCompile(`(?i)^#*\s*((?:functional requirement|non-functional requirement|requirement|user story)\s+[A-Za-z0-9._-]+)\s*[:|–-]\s*(.*)$`)

	markdownHeading = regexp.MustCompile(`^#+\s+(.+)$`)
)

// Extractor finds requirement headers and falls back to heading,
// paragraph or size based chunks when the document has none.
type Extractor struct {
	idFormat string
}

// New creates an extractor. Synthesised ids use "REQ-%03d".
func New() *Extractor {
	return &Extractor{idFormat: "REQ-%03d"}
}

// Extract splits content into requirements. Empty content yields none.
func (e *Extractor) Extract(content string) []domain.Requirement {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	if reqs := e.byHeaders(content); len(reqs) > 0 {
		return uniqueIDs(reqs)
	}

	logger.Warn("no requirement headers found, chunking document")
	return e.chunk(content)
}

// byHeaders collects the lines under each requirement header.
func (e *Extractor) byHeaders(content string) []domain.Requirement {
	var (
		reqs    []domain.Requirement
		current *domain.Requirement
		body    []string
	)
	flush := func() {
		if current != nil {
			current.Content = strings.Join(body, "\n")
			reqs = append(reqs, *current)
		}
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if id, title, ok := parseHeader(line); ok {
			flush()
			current = &domain.Requirement{ID: id, Title: title}
			body = nil
			continue
		}
		if current != nil {
			body = append(body, line)
		}
	}
	flush()
	return reqs
}

func parseHeader(line string) (id, title string, ok bool) {
	for _, re := range []*regexp.Regexp{idHeader, wordHeader} {
		if m := re.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
		}
	}
	return "", "", false
}

// chunk applies, in order: markdown headings, paragraphs, fixed size
// chunks for large documents, and finally the whole document.
func (e *Extractor) chunk(content string) []domain.Requirement {
	if reqs := e.byHeadings(content); len(reqs) > 1 {
		logger.Info("chunked by headings: %d section(s)", len(reqs))
		return reqs
	}

	if reqs := e.byParagraphs(content); len(reqs) > 1 && len(reqs) <= maxParagraphs {
		logger.Info("chunked by paragraphs: %d requirement(s)", len(reqs))
		return reqs
	}

	if len(content) > largeDocument {
		reqs := e.bySize(content)
		logger.Info("chunked by size: %d chunk(s)", len(reqs))
		return reqs
	}

	return []domain.Requirement{{
		ID:      e.id(1),
		Title:   "Complete Requirements Document",
		Content: strings.TrimSpace(content),
	}}
}

func (e *Extractor) byHeadings(content string) []domain.Requirement {
	type section struct {
		title string
		lines []string
	}
	var sections []section
	current := section{title: "Introduction"}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if m := markdownHeading.FindStringSubmatch(trimmed); m != nil {
			if len(current.lines) > 0 {
				sections = append(sections, current)
			}
			current = section{title: strings.TrimSpace(m[1])}
			continue
		}
		if trimmed != "" {
			current.lines = append(current.lines, line)
		}
	}
	if len(current.lines) > 0 {
		sections = append(sections, current)
	}

	reqs := make([]domain.Requirement, 0, len(sections))
	for i, s := range sections {
		reqs = append(reqs, domain.Requirement{
			ID:      e.id(i + 1),
			Title:   s.title,
			Content: strings.Join(s.lines, "\n"),
		})
	}
	return reqs
}

func (e *Extractor) byParagraphs(content string) []domain.Requirement {
	var reqs []domain.Requirement
	for _, para := range strings.Split(content, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		reqs = append(reqs, domain.Requirement{
			ID:      e.id(len(reqs) + 1),
			Title:   preview(para),
			Content: para,
		})
	}
	return reqs
}

// bySize cuts chunkSize pieces, ending early at a sentence boundary in the
// last 30% of a chunk.
func (e *Extractor) bySize(content string) []domain.Requirement {
	var reqs []domain.Requirement
	for start := 0; start < len(content); {
		end := min(start+chunkSize, len(content))
		if end < len(content) {
			if dot := strings.LastIndex(content[start:end], "."); dot > chunkSize*7/10 {
				end = start + dot + 1
			}
		}
		reqs = append(reqs, domain.Requirement{
			ID:      e.id(len(reqs) + 1),
			Title:   fmt.Sprintf("Requirement Section %d", len(reqs)+1),
			Content: strings.TrimSpace(content[start:end]),
		})
		start = end
	}
	return reqs
}

func (e *Extractor) id(n int) string {
	return fmt.Sprintf(e.idFormat, n)
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= titlePreviewSize {
		return s
	}
	return string(r[:titlePreviewSize]) + "..."
}

// uniqueIDs suffixes repeated ids ("REQ-1", "REQ-1#2") so change detection
// can key on them.
func uniqueIDs(reqs []domain.Requirement) []domain.Requirement {
	seen := make(map[string]int, len(reqs))
	for i := range reqs {
		id := reqs[i].ID
		seen[id]++
		if n := seen[id]; n > 1 {
			reqs[i].ID = fmt.Sprintf("%s#%d", id, n)
			logger.Warn("duplicate requirement id %s renamed to %s", id, reqs[i].ID)
		}
	}
	return reqs
}
