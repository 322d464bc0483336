// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/reqsync/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewRecords lists the stored test records.
	ViewRecords
	// ViewRecordDetail shows one record field by field.
	ViewRecordDetail
	// ViewRun shows the last run and starts new ones.
	ViewRun
	// ViewHelp is the keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewRecords:
		return "records"
	case ViewRecordDetail:
		return "record_detail"
	case ViewRun:
		return "run"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// RecordsLoaded carries the record snapshot and the template describing it.
type RecordsLoaded struct {
	Records  []domain.Record
	Template domain.RecordTemplate
	Err      error
}

// RecordSelected opens a record in the detail view.
type RecordSelected struct {
	Record domain.Record
}

// LastRunLoaded carries the most recent stored report.
// Report is nil when no run has been recorded.
type LastRunLoaded struct {
	Report *domain.RunReport
	Err    error
}

// RunCompleted carries the outcome of a run started from the TUI.
// A failed run carries both a report and an error.
type RunCompleted struct {
	Report *domain.RunReport
	Err    error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
