package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/logger"
)

// PlanInput is everything an update strategy decides from.
type PlanInput struct {
	Changes      []domain.Change
	Requirements []domain.Requirement
	Existing     []domain.Record
}

// UpdateStrategy turns change and coverage signals into an update plan.
type UpdateStrategy interface {
	Mode() domain.UpdateMode
	Plan(ctx context.Context, in PlanInput) (*domain.UpdatePlan, error)
}

// NewUpdateStrategy returns the strategy for mode. The classifier is only
// required by the intelligent mode.
func NewUpdateStrategy(
	mode domain.UpdateMode,
	template domain.RecordTemplate,
	classifier *CoverageClassifier,
	concurrency int,
) (UpdateStrategy, error) {
	switch mode {
	case domain.ModeNewOnly:
		return &newOnlyStrategy{}, nil
	case domain.ModeFullSync:
		return &fullSyncStrategy{template: template}, nil
	case domain.ModeIntelligent:
		if classifier == nil {
			return nil, &domain.ConfigurationError{
				Key:    "run.mode",
				Reason: "intelligent mode needs a configured oracle",
				Err:    domain.ErrOracleUnavailable,
			}
		}
		return &intelligentStrategy{template: template, classifier: classifier, concurrency: max(concurrency, 1)}, nil
	default:
		return nil, &domain.ConfigurationError{
			Key:    "run.mode",
			Reason: fmt.Sprintf("unknown mode %q", mode),
			Err:    domain.ErrInvalidMode,
		}
	}
}

func indexRequirements(reqs []domain.Requirement) map[string]domain.Requirement {
	m := make(map[string]domain.Requirement, len(reqs))
	for _, r := range reqs {
		m[r.ID] = r
	}
	return m
}

type newOnlyStrategy struct{}

func (s *newOnlyStrategy) Mode() domain.UpdateMode { return domain.ModeNewOnly }

func (s *newOnlyStrategy) Plan(_ context.Context, in PlanInput) (*domain.UpdatePlan, error) {
	reqs := indexRequirements(in.Requirements)
	plan := &domain.UpdatePlan{Mode: domain.ModeNewOnly}

	for _, ch := range in.Changes {
		if ch.Type != domain.ChangeAdded {
			continue
		}
		req, ok := reqs[ch.RequirementID]
		if !ok {
			continue
		}
		plan.Recommendations = append(plan.Recommendations, domain.Recommendation{
			Action:      domain.ActionCreate,
			Requirement: &req,
			Reason:      ch.DiffSummary,
		})
	}
	plan.Reason = fmt.Sprintf("%d added requirement(s)", len(plan.Recommendations))
	return plan, nil
}

type fullSyncStrategy struct {
	template domain.RecordTemplate
}

func (s *fullSyncStrategy) Mode() domain.UpdateMode { return domain.ModeFullSync }

func (s *fullSyncStrategy) Plan(_ context.Context, in PlanInput) (*domain.UpdatePlan, error) {
	reqs := indexRequirements(in.Requirements)
	plan := &domain.UpdatePlan{Mode: domain.ModeFullSync}

	var added, modified int
	for _, ch := range in.Changes {
		req, ok := reqs[ch.RequirementID]
		if !ok {
			continue
		}
		switch ch.Type {
		case domain.ChangeAdded:
			added++
			plan.Recommendations = append(plan.Recommendations, domain.Recommendation{
				Action:      domain.ActionCreate,
				Requirement: &req,
				Reason:      ch.DiffSummary,
			})
		case domain.ChangeModified:
			modified++
			plan.Recommendations = append(plan.Recommendations, domain.Recommendation{
				Action:         domain.ActionUpdate,
				Requirement:    &req,
				RelatedRecords: s.tracedTo(req.ID, in.Existing),
				Reason:         ch.DiffSummary,
			})
		}
	}
	plan.Reason = fmt.Sprintf("%d added, %d modified requirement(s)", added, modified)
	return plan, nil
}

// tracedTo returns the identities of records generated from requirement id.
func (s *fullSyncStrategy) tracedTo(id string, existing []domain.Record) []string {
	if s.template.TraceField == "" {
		return nil
	}
	var ids []string
	for _, r := range existing {
		if s.template.TracesTo(r, id) {
			ids = append(ids, r.Get(s.template.IdentityField))
		}
	}
	return ids
}

type intelligentStrategy struct {
	template    domain.RecordTemplate
	classifier  *CoverageClassifier
	concurrency int
}

func (s *intelligentStrategy) Mode() domain.UpdateMode { return domain.ModeIntelligent }

// Plan classifies every current requirement, changed or not.
func (s *intelligentStrategy) Plan(ctx context.Context, in PlanInput) (*domain.UpdatePlan, error) {
	plan := &domain.UpdatePlan{Mode: domain.ModeIntelligent}
	analyses, err := s.classifyAll(ctx, in)
	if err != nil {
		return nil, err
	}

	matched := make(map[string]bool)
	for i, a := range analyses {
		req := in.Requirements[i]
		plan.Coverage = append(plan.Coverage, a)
		plan.CoverageSummary.Add(a)
		for _, id := range a.MatchedRecordIDs {
			matched[id] = true
		}

		switch {
		case a.UpdateNeeded:
			// Regeneration replaces the matched records, so it also
			// fills any scenarios a partial analysis reported missing.
			// Without matches the new records are added alongside.
			plan.Recommendations = append(plan.Recommendations, domain.Recommendation{
				Action:         domain.ActionUpdate,
				Requirement:    &req,
				RelatedRecords: a.MatchedRecordIDs,
				Reason:         a.UpdateReason,
			})
		case a.Status == domain.CoverageNone || a.Status == domain.CoveragePartial:
			plan.Recommendations = append(plan.Recommendations, domain.Recommendation{
				Action:      domain.ActionCreate,
				Requirement: &req,
				Reason:      createReason(a),
			})
		}
	}

	for _, r := range in.Existing {
		id := r.Get(s.template.IdentityField)
		if id != "" && !matched[id] {
			plan.Orphans = append(plan.Orphans, id)
		}
	}
	if len(plan.Orphans) > 0 {
		plan.CoverageSummary.Orphaned = len(plan.Orphans)
		plan.Recommendations = append(plan.Recommendations, domain.Recommendation{
			Action:         domain.ActionReview,
			RelatedRecords: plan.Orphans,
			Reason:         "Records found with no matching requirement",
		})
	}

	sum := plan.CoverageSummary
	plan.Reason = fmt.Sprintf("coverage: %d complete, %d partial, %d none, %d outdated, %d unknown",
		sum.Complete, sum.Partial, sum.None, sum.Outdated, sum.Unknown)
	return plan, nil
}

// classifyAll runs the classifier for each requirement, keeping input order.
// With no existing records every requirement is uncovered and the oracle is skipped.
func (s *intelligentStrategy) classifyAll(ctx context.Context, in PlanInput) ([]domain.CoverageAnalysis, error) {
	out := make([]domain.CoverageAnalysis, len(in.Requirements))
	if len(in.Existing) == 0 {
		for i, r := range in.Requirements {
			out[i] = domain.CoverageAnalysis{RequirementID: r.ID, Status: domain.CoverageNone}
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, req := range in.Requirements {
		g.Go(func() error {
			res := s.classifier.Classify(gctx, req, in.Existing)
			if res.Degraded {
				logger.Warn("coverage for %s degraded: %s", req.ID, res.Reason)
			}
			out[i] = res.Value
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("classify coverage: %w", err)
	}
	return out, nil
}

func createReason(a domain.CoverageAnalysis) string {
	if a.Status == domain.CoveragePartial {
		return fmt.Sprintf("Partial coverage (%d%%)", a.Percentage)
	}
	return "No records found for this requirement"
}
