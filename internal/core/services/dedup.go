package services

import (
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/logger"
)

const (
	jaccardThreshold     = 0.6
	containmentThreshold = 0.8
)

// titlePrefixes are imperative openers stripped before comparison, longest first.
var titlePrefixes = func() []string {
	base := []string{"verify", "test", "check", "validate", "ensure", "confirm"}
	out := make([]string, 0, len(base)*2)
	for _, p := range base {
		out = append(out, p+" that")
	}
	out = append(out, base...)
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}()

var stopWords = toSet(
	"the", "a", "an", "is", "are", "was", "were", "be", "been",
	"being", "have", "has", "had", "do", "does", "did", "will",
	"would", "could", "should", "may", "might", "must", "shall",
	"can", "with", "for", "of", "to", "and", "or", "but", "if",
	"then", "else", "when", "where", "why", "how", "all", "each",
	"every", "both", "few", "more", "most", "other", "some", "such",
	"no", "nor", "not", "only", "own", "same", "so", "than", "too",
	"very", "just", "that", "this", "these", "those", "what", "which",
	"who", "whom", "after", "before", "during", "on", "in", "at", "by",
)

var wordPattern = regexp.MustCompile(`\w+`)

func toSet(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// NormalizeTitle reduces a record title to its significant keywords.
func NormalizeTitle(title string) map[string]struct{} {
	t := strings.ToLower(strings.TrimSpace(title))
	for _, p := range titlePrefixes {
		if strings.HasPrefix(t, p+" ") {
			t = t[len(p)+1:]
			break
		}
	}

	tokens := make(map[string]struct{})
	for _, w := range wordPattern.FindAllString(t, -1) {
		if _, stop := stopWords[w]; stop || len(w) <= 2 {
			continue
		}
		tokens[w] = struct{}{}
	}
	return tokens
}

// Similar reports whether two titles describe the same scenario.
// Titles with no significant keywords are never similar.
func Similar(a, b string) bool {
	return similarTokens(NormalizeTitle(a), NormalizeTitle(b))
}

func similarTokens(a, b map[string]struct{}) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	smaller := min(len(a), len(b))

	jaccard := float64(inter) / float64(union)
	containment := float64(inter) / float64(smaller)
	return jaccard >= jaccardThreshold || containment >= containmentThreshold
}

// DedupResult is the outcome of a deduplication pass.
type DedupResult struct {
	Records []domain.Record
	Dropped []domain.Record
}

// Deduplicator removes near-duplicate records by title.
type Deduplicator struct {
	template domain.RecordTemplate
}

// NewDeduplicator creates a deduplicator for the given template.
func NewDeduplicator(template domain.RecordTemplate) *Deduplicator {
	return &Deduplicator{template: template}
}

// Dedupe keeps the first record of every group of similar titles.
// Input order is priority order. Later duplicates are dropped, never merged.
func (d *Deduplicator) Dedupe(records []domain.Record) DedupResult {
	type kept struct {
		title  string
		tokens map[string]struct{}
	}

	var result DedupResult
	var seen []kept
	for _, rec := range records {
		title := rec.Get(d.template.TitleField)
		tokens := NormalizeTitle(title)

		duplicate := false
		for _, k := range seen {
			if similarTokens(tokens, k.tokens) {
				logger.Debug("dropping duplicate %q (similar to %q)", title, k.title)
				duplicate = true
				break
			}
		}
		if duplicate {
			result.Dropped = append(result.Dropped, rec)
			continue
		}
		seen = append(seen, kept{title: title, tokens: tokens})
		result.Records = append(result.Records, rec)
	}

	if n := len(result.Dropped); n > 0 {
		logger.Info("Removed %d duplicate record(s)", n)
	}
	return result
}

// Renumber assigns identities 1..K in the template format, preserving the
// order of records. Returns how many identities changed.
func Renumber(template domain.RecordTemplate, records []domain.Record) int {
	changed := 0
	for i := range records {
		id := template.FormatID(i + 1)
		if records[i].Get(template.IdentityField) != id {
			changed++
			records[i] = records[i].Clone()
			records[i].Set(template.IdentityField, id)
		}
	}
	return changed
}

// SortByIdentity orders records by their identity number. Records whose
// identity does not match the template format keep their relative order
// and sort last.
func SortByIdentity(template domain.RecordTemplate, records []domain.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, aok := template.ParseID(records[i].Get(template.IdentityField))
		b, bok := template.ParseID(records[j].Get(template.IdentityField))
		switch {
		case aok && bok:
			return a < b
		case aok:
			return true
		default:
			return false
		}
	})
}

// MaxIdentity returns the highest identity number among records, or 0.
func MaxIdentity(template domain.RecordTemplate, records []domain.Record) int {
	highest := 0
	for _, r := range records {
		if n, ok := template.ParseID(r.Get(template.IdentityField)); ok && n > highest {
			highest = n
		}
	}
	return highest
}
