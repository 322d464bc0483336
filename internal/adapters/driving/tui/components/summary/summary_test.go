package summary

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/reqsync/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/reqsync/internal/core/domain"
)

func TestRender(t *testing.T) {
	started := time.Date(2025, 6, 2, 14, 5, 9, 0, time.UTC)
	report := &domain.RunReport{
		RunID:                 "0f8fad5b-d9cb-469f-a165-70867728950e",
		Mode:                  domain.ModeIntelligent,
		StartedAt:             started,
		FinishedAt:            started.Add(1500 * time.Millisecond),
		RequirementsProcessed: 3,
		Changes: []domain.Change{
			{Type: domain.ChangeAdded, RequirementID: "REQ-003"},
			{Type: domain.ChangeModified, RequirementID: "REQ-001"},
		},
		Stats:             domain.RunStatistics{Created: 1, Updated: 1, Unchanged: 1, Total: 3},
		Coverage:          domain.CoverageSummary{Complete: 1, None: 2},
		DuplicatesDropped: 1,
		Errors:            []string{"export failed"},
	}

	out := Render(styles.NewStylesFor(&bytes.Buffer{}, nil), report)

	assert.Contains(t, out, "Run 0f8fad5b (intelligent, 1.5s)")
	assert.Contains(t, out, "Requirement changes     1 added, 1 modified, 0 removed")
	assert.Contains(t, out, "1 complete, 0 partial, 2 none, 0 outdated, 0 unknown")
	assert.Contains(t, out, "Duplicates dropped")
	assert.Contains(t, out, "error: export failed")
	assert.Contains(t, out, "SUCCESS")
}

func TestRender_OmitsEmptySections(t *testing.T) {
	out := Render(nil, &domain.RunReport{RunID: "abc", Skipped: true})

	assert.NotContains(t, out, "Requirement changes")
	assert.NotContains(t, out, "Coverage")
	assert.NotContains(t, out, "Duplicates dropped")
	assert.Contains(t, out, "SKIPPED")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", ShortID("abc"))
	assert.Equal(t, "01234567", ShortID("0123456789"))
}
