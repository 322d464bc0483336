package domain

// CoverageStatus classifies how well existing records cover a requirement.
type CoverageStatus string

const (
	CoverageComplete CoverageStatus = "complete"
	CoveragePartial  CoverageStatus = "partial"
	CoverageNone     CoverageStatus = "none"
	CoverageOutdated CoverageStatus = "outdated"

	// CoverageUnknown is the degraded status used when the oracle reply cannot be read.
	CoverageUnknown CoverageStatus = "unknown"
)

// ParseCoverageStatus normalises an oracle-supplied status.
// Anything outside the fixed taxonomy becomes CoverageUnknown.
func ParseCoverageStatus(s string) CoverageStatus {
	switch CoverageStatus(s) {
	case CoverageComplete, CoveragePartial, CoverageNone, CoverageOutdated:
		return CoverageStatus(s)
	default:
		return CoverageUnknown
	}
}

// CoverageAnalysis is the classification of one requirement against existing records.
type CoverageAnalysis struct {
	RequirementID    string         `json:"requirement_id"`
	Status           CoverageStatus `json:"status"`
	Percentage       int            `json:"percentage"`
	MatchedRecordIDs []string       `json:"matched_record_ids"`
	MissingScenarios []string       `json:"missing_scenarios"`
	UpdateNeeded     bool           `json:"update_needed"`
	UpdateReason     string         `json:"update_reason"`
}

// UnknownCoverage is the degraded analysis used when the oracle reply is malformed.
func UnknownCoverage(requirementID string) CoverageAnalysis {
	return CoverageAnalysis{RequirementID: requirementID, Status: CoverageUnknown}
}

// CoverageSummary aggregates analyses for reporting.
type CoverageSummary struct {
	Complete int `json:"complete"`
	Partial  int `json:"partial"`
	None     int `json:"none"`
	Outdated int `json:"outdated"`
	Unknown  int `json:"unknown"`
	Orphaned int `json:"orphaned"`
}

// Add counts one analysis.
func (s *CoverageSummary) Add(a CoverageAnalysis) {
	switch a.Status {
	case CoverageComplete:
		s.Complete++
	case CoveragePartial:
		s.Partial++
	case CoverageNone:
		s.None++
	case CoverageOutdated:
		s.Outdated++
	default:
		s.Unknown++
	}
}

// Outcome carries a value that is either a true success or a degraded fallback.
type Outcome[T any] struct {
	Value    T
	Degraded bool
	Reason   string
}

// OK wraps a successful value.
func OK[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

// Fallback wraps a degraded value with the reason it was used.
func Fallback[T any](v T, reason string) Outcome[T] {
	return Outcome[T]{Value: v, Degraded: true, Reason: reason}
}
