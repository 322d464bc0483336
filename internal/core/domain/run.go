package domain

import (
	"fmt"
	"time"
)

// RunStatistics counts merge outcomes.
type RunStatistics struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Total     int `json:"total"`
}

// Valid reports whether created+updated+unchanged equals total.
func (s RunStatistics) Valid() bool {
	return s.Created+s.Updated+s.Unchanged == s.Total
}

// String renders the statistics on one line.
func (s RunStatistics) String() string {
	return fmt.Sprintf("created=%d updated=%d unchanged=%d total=%d", s.Created, s.Updated, s.Unchanged, s.Total)
}

// CacheState is the previous document snapshot.
// Nil fields mean no previous run was recorded.
type CacheState struct {
	PreviousContent *string   `json:"-"`
	PreviousHash    *string   `json:"requirements_hash"`
	UpdatedAt       time.Time `json:"requirements_updated"`
}

// IsEmpty reports whether no previous snapshot exists.
func (c *CacheState) IsEmpty() bool {
	return c == nil || c.PreviousContent == nil
}

// RunReport is the outcome of one reconciliation run.
type RunReport struct {
	RunID                 string          `json:"run_id"`
	Mode                  UpdateMode      `json:"mode"`
	StartedAt             time.Time       `json:"started_at"`
	FinishedAt            time.Time       `json:"finished_at"`
	RequirementsProcessed int             `json:"requirements_processed"`
	Changes               []Change        `json:"changes"`
	Stats                 RunStatistics   `json:"stats"`
	Coverage              CoverageSummary `json:"coverage"`
	Orphans               []string        `json:"orphans,omitempty"`
	DuplicatesDropped     int             `json:"duplicates_dropped"`
	Renumbered            int             `json:"renumbered"`
	Skipped               bool            `json:"skipped"`
	Warnings              []string        `json:"warnings,omitempty"`
	Errors                []string        `json:"errors,omitempty"`
	Failed                bool            `json:"failed"`
}

// Duration returns the run's wall-clock time.
func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Warn appends a formatted warning.
func (r *RunReport) Warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Fail marks the report failed and resets statistics to zero records processed.
func (r *RunReport) Fail(err error) {
	r.Failed = true
	r.Errors = append(r.Errors, err.Error())
	r.Stats = RunStatistics{}
	r.RequirementsProcessed = 0
}
