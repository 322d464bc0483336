package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
	"github.com/custodia-labs/reqsync/internal/logger"
)

// ChangeDetector classifies requirements as added, modified or removed between runs.
type ChangeDetector struct {
	cache     *ChangeCache
	extractor driven.RequirementExtractor
}

// NewChangeDetector creates a detector. Cache and extractor are optional; when
// both are set, a nil previous list is rebuilt from the cached document.
func NewChangeDetector(cache *ChangeCache, extractor driven.RequirementExtractor) *ChangeDetector {
	return &ChangeDetector{cache: cache, extractor: extractor}
}

// Detect compares the current requirements with the previous ones.
// A nil previous list falls back to the cache, then to "no previous run",
// in which case every current requirement is added.
func (d *ChangeDetector) Detect(
	ctx context.Context,
	current, previous []domain.Requirement,
) ([]domain.Change, bool, error) {
	if previous == nil {
		var err error
		previous, err = d.previousFromCache(ctx)
		if err != nil {
			return nil, false, err
		}
	}

	changes := Diff(current, previous)
	logger.Debug("change detection: %s", Summarize(changes))
	return changes, len(changes) > 0, nil
}

func (d *ChangeDetector) previousFromCache(ctx context.Context) ([]domain.Requirement, error) {
	if d.cache == nil || d.extractor == nil {
		return nil, nil
	}
	content, err := d.cache.Previous(ctx)
	if err != nil {
		return nil, fmt.Errorf("read previous requirements: %w", err)
	}
	if content == nil {
		logger.Info("no previous document cached, treating all requirements as new")
		return nil, nil
	}
	return d.extractor.Extract(*content), nil
}

// Diff computes changes between two requirement lists.
// Added and modified follow current order, removed follow previous order.
func Diff(current, previous []domain.Requirement) []domain.Change {
	prevByID := make(map[string]domain.Requirement, len(previous))
	for _, r := range previous {
		prevByID[r.ID] = r
	}
	currIDs := make(map[string]bool, len(current))

	var changes []domain.Change
	for _, req := range current {
		currIDs[req.ID] = true
		newContent := req.Content

		old, ok := prevByID[req.ID]
		if !ok {
			changes = append(changes, domain.Change{
				Type:          domain.ChangeAdded,
				RequirementID: req.ID,
				Title:         req.Title,
				NewContent:    &newContent,
				DiffSummary:   "New requirement: " + req.Label(),
			})
			continue
		}
		if old.Content != req.Content {
			oldContent := old.Content
			changes = append(changes, domain.Change{
				Type:          domain.ChangeModified,
				RequirementID: req.ID,
				Title:         req.Title,
				OldContent:    &oldContent,
				NewContent:    &newContent,
				DiffSummary:   DiffSummary(old.Content, req.Content),
			})
		}
	}

	for _, req := range previous {
		if currIDs[req.ID] {
			continue
		}
		oldContent := req.Content
		changes = append(changes, domain.Change{
			Type:          domain.ChangeRemoved,
			RequirementID: req.ID,
			Title:         req.Title,
			OldContent:    &oldContent,
			DiffSummary:   "Removed requirement: " + req.Label(),
		})
	}
	return changes
}

// DiffSummary counts added and removed lines of a unified diff with one line of context.
func DiffSummary(oldContent, newContent string) string {
	if oldContent == newContent {
		return "No changes detected"
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(oldContent),
		B:        splitLines(newContent),
		FromFile: "previous",
		ToFile:   "current",
		Context:  1,
	})
	if err != nil {
		return "Content modified"
	}

	var added, removed int
	inHunk := false
	for _, line := range strings.Split(diff, "\n") {
		// The file headers precede the first hunk; inside hunks "---" is content.
		switch {
		case strings.HasPrefix(line, "@@"):
			inHunk = true
		case !inHunk:
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}

	var parts []string
	if added > 0 {
		parts = append(parts, fmt.Sprintf("%d line(s) added", added))
	}
	if removed > 0 {
		parts = append(parts, fmt.Sprintf("%d line(s) removed", removed))
	}
	if len(parts) == 0 {
		return "Content modified"
	}
	return strings.Join(parts, ", ")
}

// splitLines splits without keeping terminators and terminates every line
// with a newline so the diff sees whole lines.
func splitLines(s string) []string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i := range lines {
		lines[i] += "\n"
	}
	return lines
}

// Summarize counts changes by type.
func Summarize(changes []domain.Change) domain.ChangeSummary {
	s := domain.ChangeSummary{Total: len(changes)}
	for _, c := range changes {
		switch c.Type {
		case domain.ChangeAdded:
			s.Added++
		case domain.ChangeModified:
			s.Modified++
		case domain.ChangeRemoved:
			s.Removed++
		}
		s.IDs = append(s.IDs, c.RequirementID)
	}
	return s
}
