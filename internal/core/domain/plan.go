package domain

// UpdateMode selects the update policy for a run.
type UpdateMode string

const (
	// ModeNewOnly generates records for added requirements only.
	ModeNewOnly UpdateMode = "new_only"

	// ModeFullSync regenerates records for added and modified requirements.
	ModeFullSync UpdateMode = "full_sync"

	// ModeIntelligent classifies coverage of every requirement.
	ModeIntelligent UpdateMode = "intelligent"
)

// IsValid checks if the mode is a known value.
func (m UpdateMode) IsValid() bool {
	switch m {
	case ModeNewOnly, ModeFullSync, ModeIntelligent:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m UpdateMode) String() string {
	return string(m)
}

// Description returns a human-readable description.
func (m UpdateMode) Description() string {
	switch m {
	case ModeNewOnly:
		return "New only (records for added requirements)"
	case ModeFullSync:
		return "Full sync (added and modified requirements)"
	case ModeIntelligent:
		return "Intelligent (coverage driven)"
	default:
		return "Unknown"
	}
}

// Action is what the plan does for a requirement.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionReview Action = "review"
)

// Recommendation is one planned action.
// Requirement is nil for review recommendations about orphaned records.
type Recommendation struct {
	Action         Action       `json:"action"`
	Requirement    *Requirement `json:"requirement,omitempty"`
	RelatedRecords []string     `json:"related_records,omitempty"`
	Reason         string       `json:"reason"`
}

// UpdatePlan is the output of the update strategy.
type UpdatePlan struct {
	Mode            UpdateMode         `json:"mode"`
	Recommendations []Recommendation   `json:"recommendations"`
	Coverage        []CoverageAnalysis `json:"coverage,omitempty"`
	CoverageSummary CoverageSummary    `json:"coverage_summary"`
	Orphans         []string           `json:"orphans,omitempty"`
	Reason          string             `json:"reason"`
}

// ToCreate returns the requirements needing new records, in plan order.
func (p *UpdatePlan) ToCreate() []Requirement {
	return p.requirementsFor(ActionCreate)
}

// ToUpdate returns the requirements whose records are regenerated, in plan order.
func (p *UpdatePlan) ToUpdate() []Requirement {
	return p.requirementsFor(ActionUpdate)
}

// Superseded returns the record ids replaced by update recommendations.
func (p *UpdatePlan) Superseded() map[string]string {
	out := make(map[string]string)
	for _, rec := range p.Recommendations {
		if rec.Action != ActionUpdate || rec.Requirement == nil {
			continue
		}
		for _, id := range rec.RelatedRecords {
			out[id] = rec.Requirement.ID
		}
	}
	return out
}

// IsEmpty reports whether the plan generates nothing.
func (p *UpdatePlan) IsEmpty() bool {
	return len(p.ToCreate()) == 0 && len(p.ToUpdate()) == 0
}

func (p *UpdatePlan) requirementsFor(action Action) []Requirement {
	var out []Requirement
	seen := make(map[string]bool)
	for _, rec := range p.Recommendations {
		if rec.Action != action || rec.Requirement == nil || seen[rec.Requirement.ID] {
			continue
		}
		seen[rec.Requirement.ID] = true
		out = append(out, *rec.Requirement)
	}
	return out
}
