package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/reqsync/internal/core/domain"
)

func TestDiff_Modified(t *testing.T) {
	current := []domain.Requirement{{ID: "R1", Content: "Login with email"}}
	previous := []domain.Requirement{{ID: "R1", Content: "Login"}}

	changes := Diff(current, previous)

	require.Len(t, changes, 1)
	assert.Equal(t, domain.ChangeModified, changes[0].Type)
	assert.Equal(t, "R1", changes[0].RequirementID)
	assert.Contains(t, changes[0].DiffSummary, "added")
	require.NotNil(t, changes[0].OldContent)
	assert.Equal(t, "Login", *changes[0].OldContent)
}

func TestDetect_NoPreviousTreatsAllAsAdded(t *testing.T) {
	detector := NewChangeDetector(NewChangeCache(memory.NewCacheStore()), lineExtractor{})
	current := []domain.Requirement{{ID: "R1", Title: "Login", Content: "Login"}}

	changes, hasChanges, err := detector.Detect(context.Background(), current, nil)

	require.NoError(t, err)
	assert.True(t, hasChanges)
	require.Len(t, changes, 1)
	assert.Equal(t, domain.ChangeAdded, changes[0].Type)
	assert.Equal(t, "New requirement: Login", changes[0].DiffSummary)
}

func TestDetect_FallsBackToCache(t *testing.T) {
	ctx := context.Background()
	cache := NewChangeCache(memory.NewCacheStore())
	require.NoError(t, cache.SetCurrent(ctx, "R1: Login\nR2: Logout"))
	detector := NewChangeDetector(cache, lineExtractor{})

	current := lineExtractor{}.Extract("R1: Login\nR3: Reset password")
	changes, hasChanges, err := detector.Detect(ctx, current, nil)

	require.NoError(t, err)
	assert.True(t, hasChanges)
	sum := Summarize(changes)
	assert.Equal(t, 1, sum.Added)
	assert.Equal(t, 1, sum.Removed)
	assert.Equal(t, 0, sum.Modified)
	assert.Equal(t, []string{"R3", "R2"}, sum.IDs)
}

func TestDetect_NoChanges(t *testing.T) {
	reqs := []domain.Requirement{{ID: "R1", Content: "Login"}}
	changes, hasChanges, err := NewChangeDetector(nil, nil).Detect(context.Background(), reqs, reqs)

	require.NoError(t, err)
	assert.False(t, hasChanges)
	assert.Empty(t, changes)
}

func TestDiff_Completeness(t *testing.T) {
	previous := []domain.Requirement{
		{ID: "A", Content: "same"},
		{ID: "B", Content: "old"},
		{ID: "C", Content: "gone"},
		{ID: "D", Content: "gone too"},
	}
	current := []domain.Requirement{
		{ID: "A", Content: "same"},
		{ID: "B", Content: "new"},
		{ID: "E", Content: "fresh"},
	}

	changes := Diff(current, previous)
	sum := Summarize(changes)

	// B modified, C and D removed, E added.
	assert.Equal(t, 4, sum.Added+sum.Modified+sum.Removed)
	assert.Equal(t, 1, sum.Added)
	assert.Equal(t, 1, sum.Modified)
	assert.Equal(t, 2, sum.Removed)
	assert.Equal(t, "Removed requirement: C", changes[2].DiffSummary)
}

func TestDiffSummary(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		want     string
	}{
		{"identical", "a\nb", "a\nb", "No changes detected"},
		{"line added", "a\nb", "a\nb\nc", "1 line(s) added"},
		{"line replaced", "a\nb\nc", "a\nx\nc", "1 line(s) added, 1 line(s) removed"},
		{"line removed", "a\nb\nc", "a\nc", "1 line(s) removed"},
		{"dash note removed", "Login\n-- admins only", "Login", "1 line(s) removed"},
		{"rule added", "a\nb", "a\n---\nb", "1 line(s) added"},
		{"plus line added", "a", "a\n++ extra", "1 line(s) added"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DiffSummary(tt.old, tt.new))
		})
	}
}
