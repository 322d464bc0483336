package driven

import (
	"context"

	"github.com/custodia-labs/reqsync/internal/core/domain"
)

// DocumentSource reads the current requirements document as plain text.
type DocumentSource interface {
	ReadCurrentContent(ctx context.Context) (string, error)

	// Describe returns a short location string for logs and reports.
	Describe() string
}

// RequirementExtractor splits document text into requirements.
// Identity is assigned here and must be stable for unchanged text.
type RequirementExtractor interface {
	Extract(content string) []domain.Requirement
}
