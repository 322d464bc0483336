package services

import (
	"time"

	"github.com/custodia-labs/reqsync/internal/core/domain"
)

// MergeResult is the next record snapshot and its statistics.
type MergeResult struct {
	Records []domain.Record
	Stats   domain.RunStatistics
}

// Merger combines existing and incoming records under an update mode.
type Merger struct {
	template domain.RecordTemplate
	now      func() time.Time
}

// NewMerger creates a merger keyed on the template's identity field.
func NewMerger(template domain.RecordTemplate) *Merger {
	return &Merger{template: template, now: time.Now}
}

// Merge produces the next snapshot. Existing records with no incoming
// counterpart are always kept.
func (m *Merger) Merge(existing, incoming []domain.Record, mode domain.UpdateMode) MergeResult {
	if mode == domain.ModeNewOnly {
		return m.appendOnly(existing, incoming)
	}
	return m.sync(existing, incoming)
}

// appendOnly passes existing records through and appends incoming records
// whose identity is not already taken. Colliding incoming records are discarded.
func (m *Merger) appendOnly(existing, incoming []domain.Record) MergeResult {
	now := m.now()
	out := make([]domain.Record, 0, len(existing)+len(incoming))
	taken := make(map[string]bool, len(existing))

	for _, r := range existing {
		r.Status = domain.StatusUnchanged
		out = append(out, r)
		taken[r.Get(m.template.IdentityField)] = true
	}

	created := 0
	for _, r := range incoming {
		id := r.Get(m.template.IdentityField)
		if taken[id] {
			continue
		}
		taken[id] = true
		out = append(out, m.stamp(r, now))
		created++
	}

	return MergeResult{
		Records: out,
		Stats: domain.RunStatistics{
			Created:   created,
			Unchanged: len(existing),
			Total:     len(out),
		},
	}
}

func (m *Merger) sync(existing, incoming []domain.Record) MergeResult {
	now := m.now()
	byID := make(map[string]int, len(existing))
	for i, r := range existing {
		byID[r.Get(m.template.IdentityField)] = i
	}

	var stats domain.RunStatistics
	matched := make(map[int]bool, len(existing))
	out := make([]domain.Record, 0, len(existing)+len(incoming))

	for _, r := range incoming {
		idx, ok := byID[r.Get(m.template.IdentityField)]
		if !ok || matched[idx] {
			out = append(out, m.stamp(r, now))
			stats.Created++
			continue
		}
		matched[idx] = true
		prev := existing[idx]

		if prev.SameContent(r) {
			prev.Status = domain.StatusUnchanged
			out = append(out, prev)
			stats.Unchanged++
			continue
		}

		r = r.Clone()
		r.CreatedAt = prev.CreatedAt
		r.UpdatedAt = now
		r.Status = domain.StatusUpdated
		out = append(out, r)
		stats.Updated++
	}

	for i, r := range existing {
		if matched[i] {
			continue
		}
		r.Status = domain.StatusUnchanged
		out = append(out, r)
		stats.Unchanged++
	}

	stats.Total = len(out)
	return MergeResult{Records: out, Stats: stats}
}

func (m *Merger) stamp(r domain.Record, now time.Time) domain.Record {
	r = r.Clone()
	r.CreatedAt = now
	r.UpdatedAt = now
	r.Status = domain.StatusCreated
	return r
}
