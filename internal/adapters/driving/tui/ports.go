// Package tui provides an interactive terminal browser for test records
// and reconciliation runs.
package tui

import (
	"github.com/custodia-labs/reqsync/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Records reads the persisted record snapshot.
	Records driving.RecordService

	// Reconciler triggers runs and reads the last report.
	// Optional: without it the run view only explains how to configure a source.
	Reconciler driving.Reconciler
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Records == nil {
		return ErrMissingRecordService
	}
	return nil
}
