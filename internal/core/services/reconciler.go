package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
	"github.com/custodia-labs/reqsync/internal/core/ports/driving"
	"github.com/custodia-labs/reqsync/internal/logger"
)

// Ensure Reconciler implements the interface.
var _ driving.Reconciler = (*Reconciler)(nil)

// Errors returned by ReconcilerPorts.Validate.
var (
	ErrMissingSource    = errors.New("document source is required")
	ErrMissingExtractor = errors.New("requirement extractor is required")
	ErrMissingRecords   = errors.New("record store is required")
	ErrMissingCache     = errors.New("cache store is required")
)

// ReconcilerPorts groups the adapters a Reconciler talks to.
// Oracle, Prompts, Runs, Reports, Metrics and Exporter are optional.
type ReconcilerPorts struct {
	Source    driven.DocumentSource
	Extractor driven.RequirementExtractor
	Records   driven.RecordStore
	Cache     driven.CacheStore
	Oracle    driven.Oracle
	Prompts   driven.PromptStore
	Runs      driven.RunStore
	Reports   driven.ReportWriter
	Metrics   driven.MetricsSink
	Exporter  driven.RecordExporter
}

// Validate checks that all required ports are set.
func (p ReconcilerPorts) Validate() error {
	switch {
	case p.Source == nil:
		return ErrMissingSource
	case p.Extractor == nil:
		return ErrMissingExtractor
	case p.Records == nil:
		return ErrMissingRecords
	case p.Cache == nil:
		return ErrMissingCache
	}
	return nil
}

// ReconcilerConfig holds run settings.
type ReconcilerConfig struct {
	Template  domain.RecordTemplate
	Mode      domain.UpdateMode
	Retry     RetryPolicy
	Generator GeneratorConfig
}

// Reconciler runs one reconciliation at a time against the record store.
type Reconciler struct {
	ports      ReconcilerPorts
	cfg        ReconcilerConfig
	cache      *ChangeCache
	detector   *ChangeDetector
	classifier *CoverageClassifier
	generator  *RecordGenerator
	dedup      *Deduplicator
	merger     *Merger
	now        func() time.Time

	mu sync.Mutex
}

// NewReconciler creates a reconciler. Without an oracle only runs that need
// no generation succeed.
func NewReconciler(ports ReconcilerPorts, cfg ReconcilerConfig) (*Reconciler, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}
	cache := NewChangeCache(ports.Cache)
	r := &Reconciler{
		ports:    ports,
		cfg:      cfg,
		cache:    cache,
		detector: NewChangeDetector(cache, ports.Extractor),
		dedup:    NewDeduplicator(cfg.Template),
		merger:   NewMerger(cfg.Template),
		now:      time.Now,
	}
	if ports.Oracle != nil {
		r.classifier = NewCoverageClassifier(ports.Oracle, cfg.Template, cfg.Retry)
		r.classifier.SetPromptStore(ports.Prompts)
		r.generator = NewRecordGenerator(ports.Oracle, NewRecordParser(cfg.Template), cfg.Retry, cfg.Generator)
		r.generator.SetPromptStore(ports.Prompts)
	}
	return r, nil
}

// LastRun returns the most recent stored report.
func (r *Reconciler) LastRun(ctx context.Context) (*domain.RunReport, error) {
	if r.ports.Runs == nil {
		return nil, domain.ErrNotFound
	}
	return r.ports.Runs.LastRun(ctx)
}

// Run performs one reconciliation. A failed run still produces a report with
// zero records processed, and leaves the change cache untouched.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (r *Reconciler) Run(ctx context.Context, opts driving.RunOptions) (*domain.RunReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mode := r.cfg.Mode
	if opts.Mode != "" {
		mode = opts.Mode
	}
	report := &domain.RunReport{RunID: uuid.NewString(), Mode: mode, StartedAt: r.now()}

	// 1. Resolve the strategy before touching any store
	strategy, err := NewUpdateStrategy(mode, r.cfg.Template, r.classifier, r.cfg.Generator.Concurrency)
	if err != nil {
		report.Fail(err)
		report.FinishedAt = r.now()
		return report, err
	}

	logger.Info("Starting %s run %s from %s", mode, report.RunID, r.ports.Source.Describe())

	// 2. Read the document and the current snapshot
	content, err := r.ports.Source.ReadCurrentContent(ctx)
	if err != nil {
		return r.fail(ctx, report, fmt.Errorf("read document: %w", err))
	}
	if strings.TrimSpace(content) == "" {
		return r.fail(ctx, report, domain.ErrEmptyDocument)
	}
	existing, err := r.ports.Records.ReadExisting(ctx)
	if err != nil {
		return r.fail(ctx, report, fmt.Errorf("read records: %w", err))
	}

	// 3. Skip unchanged documents unless coverage has to be re-checked
	changed, err := r.cache.HasChanged(ctx, content)
	if err != nil {
		logger.Warn("change cache unavailable, treating document as changed: %v", err)
		changed = true
	}
	if !changed && len(existing) > 0 && !opts.Force && mode != domain.ModeIntelligent {
		logger.Info("Document unchanged since last run, nothing to do")
		report.Skipped = true
		report.Stats = domain.RunStatistics{Unchanged: len(existing), Total: len(existing)}
		return r.finish(ctx, report)
	}

	// 4. Extract requirements and detect changes
	reqs := r.ports.Extractor.Extract(content)
	if len(reqs) == 0 {
		return r.fail(ctx, report, fmt.Errorf("no requirements found: %w", domain.ErrEmptyDocument))
	}
	var changes []domain.Change
	if len(existing) == 0 {
		logger.Info("Record store is empty, treating all %d requirement(s) as new", len(reqs))
		changes = Diff(reqs, nil)
	} else {
		changes, _, err = r.detector.Detect(ctx, reqs, nil)
		if err != nil {
			return r.fail(ctx, report, fmt.Errorf("detect changes: %w", err))
		}
	}
	report.Changes = changes
	logger.Info("Changes: %s", Summarize(changes))

	// 5. Plan
	planned := logger.Stage("plan")
	plan, err := strategy.Plan(ctx, PlanInput{Changes: changes, Requirements: reqs, Existing: existing})
	if err != nil {
		return r.fail(ctx, report, fmt.Errorf("plan update: %w", err))
	}
	report.Coverage = plan.CoverageSummary
	report.Orphans = plan.Orphans
	if len(plan.Orphans) > 0 {
		report.Warn("%d record(s) match no requirement and need review: %s",
			len(plan.Orphans), strings.Join(plan.Orphans, ", "))
	}
	logger.Info("Plan: %s", plan.Reason)
	planned()

	// 6. Generate
	seq := domain.NewIDSequence(MaxIdentity(r.cfg.Template, existing) + 1)
	created, updated, err := r.generate(ctx, plan, seq, report)
	if err != nil {
		return r.fail(ctx, report, err)
	}

	// 7. Supersede, dedupe and merge
	incoming := r.supersede(plan, existing, updated, report)
	incoming = append(created, incoming...)

	deduped := r.dedup.Dedupe(incoming)
	report.DuplicatesDropped = len(deduped.Dropped)
	for _, d := range deduped.Dropped {
		if d.Status == domain.StatusUnchanged {
			report.Warn("existing record %s resembles a newer record and was kept; review it",
				d.Get(r.cfg.Template.IdentityField))
		}
	}

	merged := r.merger.Merge(existing, deduped.Records, mode)
	SortByIdentity(r.cfg.Template, merged.Records)
	report.Renumbered = Renumber(r.cfg.Template, merged.Records)
	if report.Renumbered > 0 {
		report.Warn("%d record identity(ies) renumbered", report.Renumbered)
	}
	report.Stats = merged.Stats
	report.RequirementsProcessed = len(reqs)

	if opts.DryRun {
		logger.Info("Dry run, store and cache left untouched")
		return r.finish(ctx, report)
	}

	// 8. Persist, then commit the cache
	if err := r.ports.Records.Write(ctx, merged.Records); err != nil {
		return r.fail(ctx, report, &domain.MergeError{Op: "write records", Err: err})
	}
	if err := r.cache.SetCurrent(ctx, content); err != nil {
		report.Warn("records saved but change cache not updated: %v", err)
	}
	if r.ports.Exporter != nil {
		if err := r.ports.Exporter.Export(ctx, r.cfg.Template, merged.Records); err != nil {
			report.Warn("export failed: %v", err)
		}
	}

	return r.finish(ctx, report)
}

// generate produces records for the plan's create and update requirements.
func (r *Reconciler) generate(
	ctx context.Context,
	plan *domain.UpdatePlan,
	seq *domain.IDSequence,
	report *domain.RunReport,
) (created, updated []domain.Record, err error) {
	toCreate, toUpdate := plan.ToCreate(), plan.ToUpdate()
	if len(toCreate)+len(toUpdate) == 0 {
		logger.Info("Nothing to generate")
		return nil, nil, nil
	}
	if r.generator == nil {
		return nil, nil, fmt.Errorf("generate records: %w", domain.ErrOracleUnavailable)
	}
	defer logger.Stage("generate")()

	for _, batch := range []struct {
		reqs   []domain.Requirement
		status domain.RecordStatus
		out    *[]domain.Record
	}{
		{toCreate, domain.StatusCreated, &created},
		{toUpdate, domain.StatusUpdated, &updated},
	} {
		if len(batch.reqs) == 0 {
			continue
		}
		res, err := r.generator.Generate(ctx, batch.reqs, seq)
		if err != nil {
			return nil, nil, err
		}
		for _, d := range res.Dropped {
			report.Warn("%s", d.Error())
		}
		for i := range res.Records {
			res.Records[i].Status = batch.status
		}
		*batch.out = res.Records
		logger.Info("Generated %d %s record(s) for %d requirement(s)", len(res.Records), batch.status, len(batch.reqs))
	}
	return created, updated, nil
}

// supersede hands the identities of superseded records to the regenerated
// records of the same requirement, in store order, and returns updated
// records followed by the carried-over existing records. Superseded records
// left without a replacement are carried over.
func (r *Reconciler) supersede(
	plan *domain.UpdatePlan,
	existing, updated []domain.Record,
	report *domain.RunReport,
) []domain.Record {
	tmpl := r.cfg.Template
	superseded := plan.Superseded()

	var reqOrder []string
	byReq := make(map[string][]string)
	for _, rec := range existing {
		id := rec.Get(tmpl.IdentityField)
		reqID := superseded[id]
		if reqID == "" {
			continue
		}
		if _, ok := byReq[reqID]; !ok {
			reqOrder = append(reqOrder, reqID)
		}
		byReq[reqID] = append(byReq[reqID], id)
	}

	replaced := make(map[string]bool)
	taken := make([]bool, len(updated))
	for _, reqID := range reqOrder {
		ids := byReq[reqID]
		for i := range updated {
			if len(ids) == 0 {
				break
			}
			if taken[i] || !tmpl.TracesTo(updated[i], reqID) {
				continue
			}
			updated[i].Set(tmpl.IdentityField, ids[0])
			replaced[ids[0]] = true
			taken[i] = true
			ids = ids[1:]
		}
		for _, id := range ids {
			report.Warn("record %s was due for update but no replacement was generated; kept as is", id)
		}
	}

	out := make([]domain.Record, 0, len(updated)+len(existing))
	out = append(out, updated...)
	for _, rec := range existing {
		if replaced[rec.Get(tmpl.IdentityField)] {
			continue
		}
		rec.Status = domain.StatusUnchanged
		out = append(out, rec)
	}
	return out
}

func (r *Reconciler) fail(ctx context.Context, report *domain.RunReport, err error) (*domain.RunReport, error) {
	logger.Error("Run %s failed: %v", report.RunID, err)
	report.Fail(err)
	_, _ = r.finish(ctx, report)
	return report, err
}

// finish stamps the report and hands it to the optional outputs.
// Output failures are logged and never fail the run.
func (r *Reconciler) finish(ctx context.Context, report *domain.RunReport) (*domain.RunReport, error) {
	report.FinishedAt = r.now()

	if r.ports.Reports != nil {
		if loc, err := r.ports.Reports.WriteReport(ctx, report); err != nil {
			logger.Warn("write report: %v", err)
		} else {
			logger.Info("Report written to %s", loc)
		}
	}
	if r.ports.Runs != nil {
		if err := r.ports.Runs.SaveRun(ctx, report); err != nil {
			logger.Warn("save run: %v", err)
		}
	}
	if r.ports.Metrics != nil {
		if err := r.ports.Metrics.ObserveRun(report); err != nil {
			logger.Warn("record metrics: %v", err)
		}
	}

	if !report.Failed {
		logger.Info("Run %s finished in %s: %s", report.RunID, report.Duration().Round(time.Millisecond), report.Stats)
	}
	return report, nil
}
