package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqsync/internal/core/domain"
)

func TestNewUpdateStrategy_InvalidMode(t *testing.T) {
	_, err := NewUpdateStrategy("everything", domain.DefaultRecordTemplate(), nil, 1)

	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "run.mode", cfgErr.Key)
	assert.ErrorIs(t, err, domain.ErrInvalidMode)
}

func TestNewUpdateStrategy_IntelligentNeedsClassifier(t *testing.T) {
	_, err := NewUpdateStrategy(domain.ModeIntelligent, domain.DefaultRecordTemplate(), nil, 1)
	assert.ErrorIs(t, err, domain.ErrOracleUnavailable)
}

func planInput() PlanInput {
	current := []domain.Requirement{
		{ID: "R1", Title: "Login", Content: "Login with email"},
		{ID: "R2", Title: "Logout", Content: "Logout"},
		{ID: "R3", Title: "Reset", Content: "Reset password"},
	}
	previous := []domain.Requirement{
		{ID: "R1", Title: "Login", Content: "Login"},
		{ID: "R2", Title: "Logout", Content: "Logout"},
		{ID: "R4", Title: "Export", Content: "Export"},
	}
	return PlanInput{
		Changes:      Diff(current, previous),
		Requirements: current,
		Existing: []domain.Record{
			testRecord("TC-001", "Login works", "R1"),
			testRecord("TC-002", "Login fails", "R1"),
			testRecord("TC-003", "Logout works", "R2"),
			testRecord("TC-004", "Export works", "R4"),
		},
	}
}

func TestNewOnlyStrategy(t *testing.T) {
	s, err := NewUpdateStrategy(domain.ModeNewOnly, domain.DefaultRecordTemplate(), nil, 1)
	require.NoError(t, err)

	plan, err := s.Plan(context.Background(), planInput())

	require.NoError(t, err)
	assert.Equal(t, domain.ModeNewOnly, plan.Mode)
	require.Len(t, plan.ToCreate(), 1)
	assert.Equal(t, "R3", plan.ToCreate()[0].ID)
	assert.Empty(t, plan.ToUpdate())
	assert.Empty(t, plan.Superseded())
}

func TestFullSyncStrategy(t *testing.T) {
	s, err := NewUpdateStrategy(domain.ModeFullSync, domain.DefaultRecordTemplate(), nil, 1)
	require.NoError(t, err)

	plan, err := s.Plan(context.Background(), planInput())

	require.NoError(t, err)
	require.Len(t, plan.ToCreate(), 1)
	assert.Equal(t, "R3", plan.ToCreate()[0].ID)
	require.Len(t, plan.ToUpdate(), 1)
	assert.Equal(t, "R1", plan.ToUpdate()[0].ID)
	assert.Equal(t, map[string]string{"TC-001": "R1", "TC-002": "R1"}, plan.Superseded())
	assert.Equal(t, "1 added, 1 modified requirement(s)", plan.Reason)
}

func TestIntelligentStrategy(t *testing.T) {
	replies := map[string]string{
		"R1": `{"coverage_status":"outdated","coverage_percentage":40,"matched_test_case_ids":["TC-001","TC-002"],"update_needed":true,"update_reason":"email login added"}`,
		"R2": `{"coverage_status":"complete","coverage_percentage":100,"matched_test_case_ids":["TC-003"]}`,
		"R3": `{"coverage_status":"none","coverage_percentage":0,"matched_test_case_ids":[]}`,
	}
	oracle := &fakeOracle{respond: func(prompt string) (string, error) {
		for id, reply := range replies {
			if strings.Contains(prompt, "ID: "+id+"\n") {
				return reply, nil
			}
		}
		return "", errors.New("unexpected prompt")
	}}
	tmpl := domain.DefaultRecordTemplate()
	classifier := NewCoverageClassifier(oracle, tmpl, NewRetryPolicy(1, 0))
	s, err := NewUpdateStrategy(domain.ModeIntelligent, tmpl, classifier, 2)
	require.NoError(t, err)

	plan, err := s.Plan(context.Background(), planInput())

	require.NoError(t, err)
	assert.Equal(t, 3, oracle.calls(), "every requirement is classified, changed or not")
	require.Len(t, plan.Coverage, 3)
	assert.Equal(t, "R1", plan.Coverage[0].RequirementID)
	assert.Equal(t, domain.CoverageSummary{Complete: 1, None: 1, Outdated: 1, Orphaned: 1}, plan.CoverageSummary)

	require.Len(t, plan.ToCreate(), 1)
	assert.Equal(t, "R3", plan.ToCreate()[0].ID)
	require.Len(t, plan.ToUpdate(), 1)
	assert.Equal(t, "R1", plan.ToUpdate()[0].ID)
	assert.Equal(t, map[string]string{"TC-001": "R1", "TC-002": "R1"}, plan.Superseded())

	assert.Equal(t, []string{"TC-004"}, plan.Orphans)
	last := plan.Recommendations[len(plan.Recommendations)-1]
	assert.Equal(t, domain.ActionReview, last.Action)
	assert.Nil(t, last.Requirement)
	assert.Equal(t, []string{"TC-004"}, last.RelatedRecords)
}

func TestIntelligentStrategy_EmptyStoreSkipsOracle(t *testing.T) {
	oracle := &fakeOracle{respond: func(string) (string, error) { return "", errors.New("should not be called") }}
	tmpl := domain.DefaultRecordTemplate()
	s, err := NewUpdateStrategy(domain.ModeIntelligent, tmpl, NewCoverageClassifier(oracle, tmpl, NewRetryPolicy(1, 0)), 1)
	require.NoError(t, err)

	in := planInput()
	in.Existing = nil
	plan, err := s.Plan(context.Background(), in)

	require.NoError(t, err)
	assert.Zero(t, oracle.calls())
	assert.Len(t, plan.ToCreate(), 3)
	assert.Equal(t, 3, plan.CoverageSummary.None)
	assert.Empty(t, plan.Orphans)
}

func TestIntelligentStrategy_DegradedClassificationCreatesNothing(t *testing.T) {
	oracle := &fakeOracle{respond: func(string) (string, error) { return "not json", nil }}
	tmpl := domain.DefaultRecordTemplate()
	s, err := NewUpdateStrategy(domain.ModeIntelligent, tmpl, NewCoverageClassifier(oracle, tmpl, NewRetryPolicy(1, 0)), 1)
	require.NoError(t, err)

	plan, err := s.Plan(context.Background(), planInput())

	require.NoError(t, err)
	assert.True(t, plan.IsEmpty())
	assert.Equal(t, 3, plan.CoverageSummary.Unknown)
	assert.Len(t, plan.Orphans, 4)
}

func TestIntelligentStrategy_UpdateNeededAlwaysRegenerates(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		superseded map[string]string
		orphans    []string
	}{
		{
			name:       "unpadded identity",
			reply:      `{"coverage_status":"outdated","matched_test_case_ids":["TC-1"],"update_needed":true}`,
			superseded: map[string]string{"TC-001": "R1"},
		},
		{
			name:       "no usable match",
			reply:      `{"coverage_status":"complete","matched_test_case_ids":["TC-404"],"update_needed":true}`,
			superseded: map[string]string{},
			orphans:    []string{"TC-001"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle := &fakeOracle{respond: func(string) (string, error) { return tt.reply, nil }}
			tmpl := domain.DefaultRecordTemplate()
			s, err := NewUpdateStrategy(domain.ModeIntelligent, tmpl, NewCoverageClassifier(oracle, tmpl, NewRetryPolicy(1, 0)), 1)
			require.NoError(t, err)

			plan, err := s.Plan(context.Background(), PlanInput{
				Requirements: []domain.Requirement{{ID: "R1", Title: "Login", Content: "Login with email"}},
				Existing:     []domain.Record{testRecord("TC-001", "Login works", "R1")},
			})

			require.NoError(t, err)
			assert.Empty(t, plan.ToCreate())
			require.Len(t, plan.ToUpdate(), 1)
			assert.Equal(t, "R1", plan.ToUpdate()[0].ID)
			assert.Equal(t, tt.superseded, plan.Superseded())
			assert.Equal(t, tt.orphans, plan.Orphans)
		})
	}
}

func TestFullSyncStrategy_TraceMatchingIgnoresCaseAndLists(t *testing.T) {
	s, err := NewUpdateStrategy(domain.ModeFullSync, domain.DefaultRecordTemplate(), nil, 1)
	require.NoError(t, err)
	current := []domain.Requirement{{ID: "R1", Content: "Login with email"}}
	previous := []domain.Requirement{{ID: "R1", Content: "Login"}}

	plan, err := s.Plan(context.Background(), PlanInput{
		Changes:      Diff(current, previous),
		Requirements: current,
		Existing: []domain.Record{
			testRecord("TC-001", "Login and logout", "R1, R2"),
			testRecord("TC-002", "Login works", "r1"),
			testRecord("TC-003", "Logout works", "R2"),
		},
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"TC-001": "R1", "TC-002": "R1"}, plan.Superseded())
}
