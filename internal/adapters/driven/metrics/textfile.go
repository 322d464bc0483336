// Package metrics exports run metrics in the Prometheus text format, for
// the node_exporter textfile collector or a Pushgateway scrape.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
)

// Ensure Textfile implements the interface.
var _ driven.MetricsSink = (*Textfile)(nil)

const namespace = "reqsync"

// Textfile keeps gauges for the last run and rewrites a .prom file after
// every observation.
type Textfile struct {
	path     string
	registry *prometheus.Registry

	records       *prometheus.GaugeVec
	changes       *prometheus.GaugeVec
	coverage      *prometheus.GaugeVec
	requirements  prometheus.Gauge
	duplicates    prometheus.Gauge
	renumbered    prometheus.Gauge
	duration      prometheus.Gauge
	failed        prometheus.Gauge
	lastRun       prometheus.Gauge
	runsTotal     *prometheus.CounterVec
	warningsTotal prometheus.Counter

	mu sync.Mutex
}

// NewTextfile creates a sink writing to path.
func NewTextfile(path string) *Textfile {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Textfile{
		path:     path,
		registry: reg,
		records: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Records in the snapshot after the last run, by merge outcome.",
		}, []string{"outcome"}),
		changes: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requirement_changes",
			Help:      "Requirement changes detected by the last run, by type.",
		}, []string{"type"}),
		coverage: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "coverage_requirements",
			Help:      "Requirements by coverage status in the last intelligent run.",
		}, []string{"status"}),
		requirements: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requirements_processed",
			Help:      "Requirements processed by the last run.",
		}),
		duplicates: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "duplicates_dropped",
			Help:      "Records dropped as duplicates in the last run.",
		}),
		renumbered: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "identities_renumbered",
			Help:      "Record identities renumbered in the last run.",
		}),
		duration: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall-clock duration of the last run.",
		}),
		failed: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_failed",
			Help:      "1 if the last run failed, 0 otherwise.",
		}),
		lastRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
		runsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Runs observed by this process, by result.",
		}, []string{"result"}),
		warningsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warnings_total",
			Help:      "Warnings raised by runs observed by this process.",
		}),
	}
}

// Path returns the textfile location.
func (t *Textfile) Path() string {
	return t.path
}

// Registry exposes the underlying registry for an HTTP handler.
func (t *Textfile) Registry() *prometheus.Registry {
	return t.registry
}

// ObserveRun updates the gauges from report and rewrites the textfile.
func (t *Textfile) ObserveRun(report *domain.RunReport) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.records.WithLabelValues(string(domain.StatusCreated)).Set(float64(report.Stats.Created))
	t.records.WithLabelValues(string(domain.StatusUpdated)).Set(float64(report.Stats.Updated))
	t.records.WithLabelValues(string(domain.StatusUnchanged)).Set(float64(report.Stats.Unchanged))
	t.records.WithLabelValues("total").Set(float64(report.Stats.Total))

	counts := map[domain.ChangeType]int{}
	for _, c := range report.Changes {
		counts[c.Type]++
	}
	for _, typ := range []domain.ChangeType{domain.ChangeAdded, domain.ChangeModified, domain.ChangeRemoved} {
		t.changes.WithLabelValues(string(typ)).Set(float64(counts[typ]))
	}

	cov := report.Coverage
	t.coverage.WithLabelValues(string(domain.CoverageComplete)).Set(float64(cov.Complete))
	t.coverage.WithLabelValues(string(domain.CoveragePartial)).Set(float64(cov.Partial))
	t.coverage.WithLabelValues(string(domain.CoverageNone)).Set(float64(cov.None))
	t.coverage.WithLabelValues(string(domain.CoverageOutdated)).Set(float64(cov.Outdated))
	t.coverage.WithLabelValues(string(domain.CoverageUnknown)).Set(float64(cov.Unknown))
	t.coverage.WithLabelValues("orphaned").Set(float64(len(report.Orphans)))

	t.requirements.Set(float64(report.RequirementsProcessed))
	t.duplicates.Set(float64(report.DuplicatesDropped))
	t.renumbered.Set(float64(report.Renumbered))
	t.duration.Set(report.Duration().Seconds())
	if !report.FinishedAt.IsZero() {
		t.lastRun.Set(float64(report.FinishedAt.Unix()))
	}

	result := "success"
	switch {
	case report.Failed:
		result = "failed"
		t.failed.Set(1)
	case report.Skipped:
		result = "skipped"
		t.failed.Set(0)
	default:
		t.failed.Set(0)
	}
	t.runsTotal.WithLabelValues(result).Inc()
	t.warningsTotal.Add(float64(len(report.Warnings)))

	if t.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(t.path), 0755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(t.path, t.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
