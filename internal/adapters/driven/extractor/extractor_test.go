package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqsync/internal/core/domain"
)

func TestExtract_Empty(t *testing.T) {
	assert.Nil(t, New().Extract(""))
	assert.Nil(t, New().Extract(" \n\t"))
}

func TestExtract_Headers(t *testing.T) {
	content := `# Login Service

Preamble that belongs to no requirement.

## REQ-001: Login
Users log in with email.
Passwords are checked.

REQ-002 - Logout
Users can log out.

Requirement 3: Audit
All logins are logged.

US_4 | Remember me
NFR-5
Response under 200ms.`

	reqs := New().Extract(content)

	assert.Equal(t, []domain.Requirement{
		{ID: "REQ-001", Title: "Login", Content: "Users log in with email.\nPasswords are checked."},
		{ID: "REQ-002", Title: "Logout", Content: "Users can log out."},
		{ID: "Requirement 3", Title: "Audit", Content: "All logins are logged."},
		{ID: "US_4", Title: "Remember me", Content: ""},
		{ID: "NFR-5", Title: "", Content: "Response under 200ms."},
	}, reqs)
}

func TestExtract_ProseMentioningRequirementIsNotAHeader(t *testing.T) {
	content := "REQ-1: Export\nThis requirement covers CSV export.\nThe requirement owner is QA."

	reqs := New().Extract(content)

	require.Len(t, reqs, 1)
	assert.Equal(t, "This requirement covers CSV export.\nThe requirement owner is QA.", reqs[0].Content)
}

func TestExtract_DuplicateIDs(t *testing.T) {
	reqs := New().Extract("REQ-1: A\nfirst\nREQ-1: B\nsecond\nREQ-1: C\nthird")

	require.Len(t, reqs, 3)
	assert.Equal(t, "REQ-1", reqs[0].ID)
	assert.Equal(t, "REQ-1#2", reqs[1].ID)
	assert.Equal(t, "REQ-1#3", reqs[2].ID)
}

func TestExtract_StableForUnchangedText(t *testing.T) {
	content := "## REQ-9: Search\nFull text search."
	assert.Equal(t, New().Extract(content), New().Extract(content))
}

func TestExtract_ChunkByHeadings(t *testing.T) {
	content := "Intro text.\n\n# Accounts\nCreate accounts.\n\n# Billing\nCharge cards.\nSend invoices.\n\n# Empty"

	reqs := New().Extract(content)

	assert.Equal(t, []domain.Requirement{
		{ID: "REQ-001", Title: "Introduction", Content: "Intro text."},
		{ID: "REQ-002", Title: "Accounts", Content: "Create accounts."},
		{ID: "REQ-003", Title: "Billing", Content: "Charge cards.\nSend invoices."},
	}, reqs)
}

func TestExtract_ChunkByParagraphs(t *testing.T) {
	long := strings.Repeat("word ", 15)
	content := "The system stores orders.\n\n" + long + "\n\n\n\nThe system ships orders."

	reqs := New().Extract(content)

	require.Len(t, reqs, 3)
	assert.Equal(t, "REQ-001", reqs[0].ID)
	assert.Equal(t, "The system stores orders.", reqs[0].Title)
	assert.Equal(t, strings.TrimSpace(long)[:50]+"...", reqs[1].Title)
	assert.Equal(t, "REQ-003", reqs[2].ID)
}

func TestExtract_ChunkBySize(t *testing.T) {
	sentence := strings.Repeat("a", 99) + "."
	content := strings.Repeat(sentence, 60) // 6000 chars, one paragraph

	reqs := New().Extract(content)

	require.Len(t, reqs, 3)
	assert.Equal(t, "Requirement Section 1", reqs[0].Title)
	assert.Len(t, reqs[0].Content, 2000)
	assert.True(t, strings.HasSuffix(reqs[0].Content, "."))
	total := 0
	for _, r := range reqs {
		total += len(r.Content)
	}
	assert.Equal(t, len(content), total)
}

func TestExtract_SingleDocument(t *testing.T) {
	reqs := New().Extract("One short requirement with no structure.")

	assert.Equal(t, []domain.Requirement{{
		ID:      "REQ-001",
		Title:   "Complete Requirements Document",
		Content: "One short requirement with no structure.",
	}}, reqs)
}
