package driving

import (
	"context"

	"github.com/custodia-labs/reqsync/internal/core/domain"
)

// Reconciler runs the requirements to records reconciliation.
type Reconciler interface {
	// Run performs one reconciliation. A failed run still returns a report
	// alongside the error.
	Run(ctx context.Context, opts RunOptions) (*domain.RunReport, error)

	// LastRun returns the most recent stored report.
	LastRun(ctx context.Context) (*domain.RunReport, error)
}

// RunOptions adjusts a single run.
type RunOptions struct {
	// Mode overrides the configured update mode when set.
	Mode domain.UpdateMode

	// Force processes the document even when its hash is unchanged.
	Force bool

	// DryRun plans and generates but does not write the store or cache.
	DryRun bool
}
