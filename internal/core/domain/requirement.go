package domain

import "fmt"

// Requirement is a single requirement extracted from the requirements document.
type Requirement struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Label returns the title, or the ID when the requirement has no title.
func (r Requirement) Label() string {
	if r.Title != "" {
		return r.Title
	}
	return r.ID
}

// ChangeType classifies a requirement difference between two runs.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeRemoved  ChangeType = "removed"
)

// Change describes one requirement difference.
// OldContent is nil for added requirements, NewContent is nil for removed ones.
type Change struct {
	Type          ChangeType `json:"type"`
	RequirementID string     `json:"requirement_id"`
	Title         string     `json:"title,omitempty"`
	OldContent    *string    `json:"old_content,omitempty"`
	NewContent    *string    `json:"new_content,omitempty"`
	DiffSummary   string     `json:"diff_summary"`
}

// ChangeSummary counts changes by type.
type ChangeSummary struct {
	Total    int      `json:"total"`
	Added    int      `json:"added"`
	Modified int      `json:"modified"`
	Removed  int      `json:"removed"`
	IDs      []string `json:"ids"`
}

// String renders the summary on one line.
func (s ChangeSummary) String() string {
	return fmt.Sprintf("%d change(s): %d added, %d modified, %d removed", s.Total, s.Added, s.Modified, s.Removed)
}
