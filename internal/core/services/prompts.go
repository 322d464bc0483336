package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
)

// maxCoverageRecords caps the record summary sent with a coverage request.
const maxCoverageRecords = 50

// defaultGeneratePrompt is used when no PromptStore is configured.
const defaultGeneratePrompt = `You are a QA expert generating test cases from multiple software requirements.

REQUIREMENTS:
%[3]s

TASK:
Generate comprehensive test cases for ALL the above requirements.

OUTPUT FORMAT:
For each test case, provide:
%[1]s

Separate each test case with "%[2]s".
Put each field on its own line. Do not use markdown formatting.

GUIDELINES:
1. Generate 3-5 test cases per requirement
2. Cover positive, negative, and edge cases
3. Be specific in test steps and expected results
4. Reference the correct requirement ID for each test case
5. Each test case must cover a different scenario

TEST CASES:
`

// defaultCoveragePrompt is used when no PromptStore is configured.
const defaultCoveragePrompt = `You are a QA expert analysing requirement coverage.

REQUIREMENT:
%[1]s

EXISTING TEST CASES:
%[3]s

TASK:
Analyse if the existing test cases adequately cover this requirement (%[2]s).

Provide your analysis in the following JSON format:
{
  "coverage_status": "complete|partial|none|outdated",
  "coverage_percentage": 0-100,
  "matched_test_case_ids": ["TC-001", "TC-002"],
  "missing_scenarios": ["scenario 1", "scenario 2"],
  "update_needed": true|false,
  "update_reason": "explanation if update needed"
}

COVERAGE STATUS DEFINITIONS:
- "complete": All aspects of requirement are tested, test cases are current
- "partial": Some aspects tested, but missing scenarios exist
- "none": No test cases match this requirement
- "outdated": Test cases exist but don't match current requirement wording

ANALYSIS (JSON only):
`

// DefaultPrompts returns the built-in prompt templates keyed by prompt name.
func DefaultPrompts() map[string]string {
	return map[string]string{
		driven.PromptGenerate: defaultGeneratePrompt,
		driven.PromptCoverage: defaultCoveragePrompt,
	}
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func loadPrompt(store driven.PromptStore, name, fallback string) string {
	if store == nil {
		return fallback
	}
	prompt, err := store.Load(name)
	if err != nil || prompt == "" {
		return fallback
	}
	return prompt
}

// buildGeneratePrompt renders the generation request for a batch of requirements.
func buildGeneratePrompt(store driven.PromptStore, tmpl domain.RecordTemplate, batch []domain.Requirement) string {
	fields := make([]string, len(tmpl.Fields))
	for i, f := range tmpl.Fields {
		fields[i] = "- " + f.Name + ": <value>"
	}

	reqs := make([]string, len(batch))
	for i, r := range batch {
		reqs[i] = fmt.Sprintf("REQUIREMENT %d (ID: %s):\n%s", i+1, r.ID, r.Content)
	}

	return fmt.Sprintf(loadPrompt(store, driven.PromptGenerate, defaultGeneratePrompt),
		strings.Join(fields, "\n"), tmpl.Delimiter, strings.Join(reqs, "\n\n"))
}

// buildCoveragePrompt renders the classification request for one requirement.
// At most maxCoverageRecords records are listed; the omitted count is stated.
func buildCoveragePrompt(
	store driven.PromptStore,
	tmpl domain.RecordTemplate,
	req domain.Requirement,
	existing []domain.Record,
) string {
	reqText := fmt.Sprintf("ID: %s\nTitle: %s\nContent: %s", req.ID, orNA(req.Title), orNA(req.Content))
	return fmt.Sprintf(loadPrompt(store, driven.PromptCoverage, defaultCoveragePrompt),
		reqText, req.ID, summarizeRecords(tmpl, existing))
}

func summarizeRecords(tmpl domain.RecordTemplate, existing []domain.Record) string {
	if len(existing) == 0 {
		return "No existing test cases"
	}
	shown := existing
	if len(shown) > maxCoverageRecords {
		shown = shown[:maxCoverageRecords]
	}
	lines := make([]string, 0, len(shown)+1)
	for _, r := range shown {
		lines = append(lines, fmt.Sprintf("- %s: %s", orNA(r.Get(tmpl.IdentityField)), orNA(r.Get(tmpl.TitleField))))
	}
	if omitted := len(existing) - len(shown); omitted > 0 {
		lines = append(lines, fmt.Sprintf("... and %d more test cases", omitted))
	}
	return strings.Join(lines, "\n")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
