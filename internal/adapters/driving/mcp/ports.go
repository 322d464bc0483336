package mcp

import (
	"github.com/custodia-labs/reqsync/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Records exposes the persisted record snapshot.
	Records driving.RecordService

	// Reconciler runs reconciliations. Without it run tools report an error.
	Reconciler driving.Reconciler
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Records == nil {
		return ErrMissingRecordService
	}
	return nil
}
