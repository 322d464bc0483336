package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
	"github.com/custodia-labs/reqsync/internal/logger"
)

// Classification requests are short and should be as deterministic as possible.
var coverageParams = driven.GenerateParams{MaxTokens: 800, Temperature: 0.2}

// CoverageClassifier asks the oracle how well existing records cover a requirement.
type CoverageClassifier struct {
	oracle   driven.Oracle
	retry    RetryPolicy
	template domain.RecordTemplate
	prompts  driven.PromptStore
}

// NewCoverageClassifier creates a classifier.
func NewCoverageClassifier(oracle driven.Oracle, template domain.RecordTemplate, retry RetryPolicy) *CoverageClassifier {
	return &CoverageClassifier{oracle: oracle, template: template, retry: retry}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (c *CoverageClassifier) SetPromptStore(store driven.PromptStore) {
	c.prompts = store
}

// Classify never fails. Oracle errors degrade to status none and unreadable
// replies degrade to status unknown, both with no matches.
func (c *CoverageClassifier) Classify(
	ctx context.Context,
	req domain.Requirement,
	existing []domain.Record,
) domain.Outcome[domain.CoverageAnalysis] {
	prompt := buildCoveragePrompt(c.prompts, c.template, req, existing)

	reply, _, err := c.retry.Do(ctx, func(ctx context.Context) (string, error) {
		return c.oracle.Generate(ctx, prompt, coverageParams)
	})
	if err != nil {
		logger.Warn("coverage analysis failed for %s: %v", req.ID, err)
		fallback := domain.CoverageAnalysis{RequirementID: req.ID, Status: domain.CoverageNone}
		return domain.Fallback(fallback, fmt.Sprintf("oracle error: %v", err))
	}

	analysis, err := parseCoverageReply(reply, req.ID, existing, c.template)
	if err != nil {
		logger.Warn("coverage reply for %s unreadable: %v", req.ID, err)
		return domain.Fallback(domain.UnknownCoverage(req.ID), err.Error())
	}
	return domain.OK(analysis)
}

// coverageReply is the JSON shape requested from the oracle.
type coverageReply struct {
	CoverageStatus     string      `json:"coverage_status"`
	CoveragePercentage json.Number `json:"coverage_percentage"`
	MatchedIDs         []string    `json:"matched_test_case_ids"`
	MissingScenarios   []string    `json:"missing_scenarios"`
	UpdateNeeded       bool        `json:"update_needed"`
	UpdateReason       string      `json:"update_reason"`
}

var errNoJSONObject = errors.New("no JSON object in reply")

func parseCoverageReply(
	reply, requirementID string,
	existing []domain.Record,
	tmpl domain.RecordTemplate,
) (domain.CoverageAnalysis, error) {
	raw, ok := ExtractJSONObject(reply)
	if !ok {
		return domain.CoverageAnalysis{}, errNoJSONObject
	}

	var parsed coverageReply
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return domain.CoverageAnalysis{}, fmt.Errorf("decode coverage reply: %w", err)
	}

	known := make(map[string]bool, len(existing))
	for _, r := range existing {
		known[r.Get(tmpl.IdentityField)] = true
	}
	matched := make([]string, 0, len(parsed.MatchedIDs))
	seen := make(map[string]bool)
	for _, id := range parsed.MatchedIDs {
		id = strings.TrimSpace(id)
		if !known[id] {
			// "TC-1" for "TC-001"
			if n, ok := tmpl.ParseID(id); ok {
				id = tmpl.FormatID(n)
			}
		}
		if known[id] && !seen[id] {
			seen[id] = true
			matched = append(matched, id)
		}
	}

	pct := 0
	if parsed.CoveragePercentage != "" {
		if f, err := parsed.CoveragePercentage.Float64(); err == nil {
			pct = int(f)
		}
	}
	pct = max(0, min(100, pct))

	return domain.CoverageAnalysis{
		RequirementID:    requirementID,
		Status:           domain.ParseCoverageStatus(strings.ToLower(strings.TrimSpace(parsed.CoverageStatus))),
		Percentage:       pct,
		MatchedRecordIDs: matched,
		MissingScenarios: parsed.MissingScenarios,
		UpdateNeeded:     parsed.UpdateNeeded,
		UpdateReason:     parsed.UpdateReason,
	}, nil
}

// ExtractJSONObject returns the first balanced {...} span in text.
// Braces inside JSON strings are ignored.
func ExtractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	for start >= 0 {
		depth := 0
		inString, escaped := false, false
		for i := start; i < len(text); i++ {
			ch := text[i]
			switch {
			case escaped:
				escaped = false
			case inString && ch == '\\':
				escaped = true
			case ch == '"':
				inString = !inString
			case inString:
			case ch == '{':
				depth++
			case ch == '}':
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		}
		// Unbalanced from this brace; try the next one.
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}
