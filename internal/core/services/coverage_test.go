package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqsync/internal/core/domain"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare", `{"a":1}`, `{"a":1}`, true},
		{"prose around", "Here you go:\n{\"a\":{\"b\":2}}\nHope it helps {x}", `{"a":{"b":2}}`, true},
		{"code fence", "```json\n{\"s\":\"}\"}\n```", `{"s":"}"}`, true},
		{"escaped quote", `{"s":"say \"}\" loudly"}`, `{"s":"say \"}\" loudly"}`, true},
		{"unbalanced then balanced", `{ oops {"a":1}`, `{"a":1}`, true},
		{"none", "no json here", "", false},
		{"unterminated", `{"a":1`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoverageClassifier_Classify(t *testing.T) {
	existing := []domain.Record{
		testRecord("TC-001", "Login with valid password", "R1"),
		testRecord("TC-002", "Login with invalid password", "R1"),
	}
	oracle := &fakeOracle{respond: func(string) (string, error) {
		return "Analysis follows.\n```json\n" + `{
  "coverage_status": "Partial",
  "coverage_percentage": 62.5,
  "matched_test_case_ids": ["TC-002", "TC-404", "TC-002"],
  "missing_scenarios": ["locked account"],
  "update_needed": true,
  "update_reason": "wording changed"
}` + "\n```", nil
	}}
	c := NewCoverageClassifier(oracle, domain.DefaultRecordTemplate(), NewRetryPolicy(1, 0))

	res := c.Classify(context.Background(), domain.Requirement{ID: "R1", Content: "Login"}, existing)

	require.False(t, res.Degraded)
	a := res.Value
	assert.Equal(t, "R1", a.RequirementID)
	assert.Equal(t, domain.CoveragePartial, a.Status)
	assert.Equal(t, 62, a.Percentage)
	assert.Equal(t, []string{"TC-002"}, a.MatchedRecordIDs)
	assert.Equal(t, []string{"locked account"}, a.MissingScenarios)
	assert.True(t, a.UpdateNeeded)
	assert.Equal(t, "wording changed", a.UpdateReason)

	require.Len(t, oracle.params, 1)
	assert.Equal(t, 800, oracle.params[0].MaxTokens)
	assert.InDelta(t, 0.2, oracle.params[0].Temperature, 1e-9)
}

func TestCoverageClassifier_NormalisesMatchedIdentities(t *testing.T) {
	existing := []domain.Record{testRecord("TC-001", "Login works", "R1"), testRecord("TC-012", "Logout", "R2")}
	oracle := &fakeOracle{respond: func(string) (string, error) {
		return `{"coverage_status":"complete","matched_test_case_ids":["TC-1"," TC-012","TC-01","TC-7"]}`, nil
	}}
	c := NewCoverageClassifier(oracle, domain.DefaultRecordTemplate(), NewRetryPolicy(1, 0))

	res := c.Classify(context.Background(), domain.Requirement{ID: "R1"}, existing)

	require.False(t, res.Degraded)
	assert.Equal(t, []string{"TC-001", "TC-012"}, res.Value.MatchedRecordIDs)
}

func TestCoverageClassifier_MalformedReplyIsUnknown(t *testing.T) {
	oracle := &fakeOracle{respond: func(string) (string, error) {
		return `{"coverage_status": "complete", "matched_test_case_ids": "TC-001"}`, nil
	}}
	c := NewCoverageClassifier(oracle, domain.DefaultRecordTemplate(), NewRetryPolicy(1, 0))

	res := c.Classify(context.Background(), domain.Requirement{ID: "R1"}, nil)

	assert.True(t, res.Degraded)
	assert.Equal(t, domain.UnknownCoverage("R1"), res.Value)
	assert.NotEmpty(t, res.Reason)
}

func TestCoverageClassifier_NoJSONIsUnknown(t *testing.T) {
	oracle := &fakeOracle{respond: func(string) (string, error) { return "I cannot help with that.", nil }}
	c := NewCoverageClassifier(oracle, domain.DefaultRecordTemplate(), NewRetryPolicy(1, 0))

	res := c.Classify(context.Background(), domain.Requirement{ID: "R1"}, nil)

	assert.True(t, res.Degraded)
	assert.Equal(t, domain.CoverageUnknown, res.Value.Status)
	assert.False(t, res.Value.UpdateNeeded)
}

func TestCoverageClassifier_OracleErrorIsNone(t *testing.T) {
	oracle := &fakeOracle{respond: func(string) (string, error) { return "", errors.New("connection refused") }}
	c := NewCoverageClassifier(oracle, domain.DefaultRecordTemplate(), NewRetryPolicy(3, 0))

	res := c.Classify(context.Background(), domain.Requirement{ID: "R9"}, nil)

	assert.True(t, res.Degraded)
	assert.Equal(t, domain.CoverageNone, res.Value.Status)
	assert.Empty(t, res.Value.MatchedRecordIDs)
	assert.False(t, res.Value.UpdateNeeded)
	assert.Contains(t, res.Reason, "connection refused")
	assert.Equal(t, 1, oracle.calls())
}

func TestCoverageClassifier_RetriesRateLimits(t *testing.T) {
	calls := 0
	oracle := &fakeOracle{respond: func(string) (string, error) {
		calls++
		if calls == 1 {
			return "", domain.ErrRateLimited
		}
		return `{"coverage_status":"complete","coverage_percentage":100}`, nil
	}}
	retry := NewRetryPolicy(3, 0)
	retry.Sleep = noSleep
	c := NewCoverageClassifier(oracle, domain.DefaultRecordTemplate(), retry)

	res := c.Classify(context.Background(), domain.Requirement{ID: "R1"}, nil)

	assert.False(t, res.Degraded)
	assert.Equal(t, domain.CoverageComplete, res.Value.Status)
	assert.Equal(t, 100, res.Value.Percentage)
}

func TestBuildCoveragePrompt_TruncatesRecords(t *testing.T) {
	tmpl := domain.DefaultRecordTemplate()
	var existing []domain.Record
	for i := 1; i <= 53; i++ {
		existing = append(existing, testRecord(tmpl.FormatID(i), fmt.Sprintf("Scenario %d", i), "R1"))
	}

	prompt := buildCoveragePrompt(nil, tmpl, domain.Requirement{ID: "R7", Title: "Login", Content: "Users log in"}, existing)

	assert.Contains(t, prompt, "ID: R7\nTitle: Login\nContent: Users log in")
	assert.Contains(t, prompt, "- TC-050: Scenario 50")
	assert.NotContains(t, prompt, "TC-051")
	assert.Contains(t, prompt, "... and 3 more test cases")
	assert.Contains(t, prompt, "requirement (R7)")
}

func TestSummarizeRecords_Empty(t *testing.T) {
	assert.Equal(t, "No existing test cases", summarizeRecords(domain.DefaultRecordTemplate(), nil))
	out := summarizeRecords(domain.DefaultRecordTemplate(), []domain.Record{domain.NewRecord()})
	assert.Equal(t, "- N/A: N/A", strings.TrimSpace(out))
}
