package driven

import (
	"context"

	"github.com/custodia-labs/reqsync/internal/core/domain"
)

// ReportWriter renders a run report somewhere a person can read it.
// It returns the location written to.
type ReportWriter interface {
	WriteReport(ctx context.Context, report *domain.RunReport) (string, error)
}

// MetricsSink records run metrics.
type MetricsSink interface {
	ObserveRun(report *domain.RunReport) error
}
