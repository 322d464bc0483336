package services

import (
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/logger"
)

// ParseResult holds the records recovered from one generated reply.
type ParseResult struct {
	Records []domain.Record
	Dropped []domain.ParseRecoveryWarning
}

// RecordParser recovers template records from delimited generated text.
type RecordParser struct {
	template domain.RecordTemplate
	labels   []*regexp.Regexp
}

// NewRecordParser compiles label patterns for every template field.
func NewRecordParser(template domain.RecordTemplate) *RecordParser {
	labels := make([]*regexp.Regexp, len(template.Fields))
	for i, f := range template.Fields {
		// "Field:" at a line start, case-insensitive, optional bullet dash.
		labels[i] = regexp.MustCompile(`(?im)(?:^|\n)\s*-?\s*(` + regexp.QuoteMeta(f.Name) + `)\s*:`)
	}
	return &RecordParser{template: template, labels: labels}
}

// Template returns the template records are parsed into.
func (p *RecordParser) Template() domain.RecordTemplate {
	return p.template
}

// Parse splits text on the delimiter and parses each block. Accepted records
// take their identity from seq in order; blocks with too few fields are
// dropped and reported.
func (p *RecordParser) Parse(text string, seq *domain.IDSequence) ParseResult {
	var result ParseResult

	delim := p.template.Delimiter
	blocks := []string{text}
	if delim != "" && strings.Contains(text, delim) {
		blocks = strings.Split(text, delim)
	}

	for i, block := range blocks {
		if strings.TrimSpace(block) == "" {
			continue
		}
		rec, warn, ok := p.parseBlock(block, i+1)
		if !ok {
			logger.Warn("%s", warn.Error())
			logger.Debug("block preview: %s", warn.Excerpt)
			result.Dropped = append(result.Dropped, warn)
			continue
		}
		if p.template.IdentityField != "" {
			rec.Set(p.template.IdentityField, p.template.FormatID(seq.Next()))
		}
		result.Records = append(result.Records, rec)
	}
	return result
}

type labelHit struct {
	field      string
	start      int
	valueStart int
}

func (p *RecordParser) parseBlock(block string, index int) (domain.Record, domain.ParseRecoveryWarning, bool) {
	block = strings.ReplaceAll(block, "**", "")

	var hits []labelHit
	for i, re := range p.labels {
		for _, m := range re.FindAllStringIndex(block, -1) {
			hits = append(hits, labelHit{field: p.template.Fields[i].Name, start: m[0], valueStart: m[1]})
		}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].start < hits[b].start })

	rec := domain.NewRecord()
	for i, h := range hits {
		end := len(block)
		if i+1 < len(hits) {
			end = hits[i+1].start
		}
		if h.valueStart > end {
			continue
		}
		value := p.cleanValue(block[h.valueStart:end])
		if value != "" {
			rec.Set(h.field, value)
		}
	}

	required := len(p.template.Fields) / 2
	if len(rec.Fields) < required {
		return domain.Record{}, domain.ParseRecoveryWarning{
			Block:     index,
			Recovered: len(rec.Fields),
			Required:  required,
			Excerpt:   excerpt(block, 200),
		}, false
	}

	for _, f := range p.template.Fields {
		if _, ok := rec.Fields[f.Name]; !ok {
			rec.Set(f.Name, f.Default)
		}
	}
	return rec, domain.ParseRecoveryWarning{}, true
}

// cleanValue trims whitespace and anything from a stray delimiter onwards.
func (p *RecordParser) cleanValue(v string) string {
	v = strings.TrimSpace(v)
	if d := p.template.Delimiter; d != "" {
		if idx := strings.Index(v, d); idx >= 0 {
			v = v[:idx]
		}
	}
	return strings.TrimSpace(v)
}

func excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
