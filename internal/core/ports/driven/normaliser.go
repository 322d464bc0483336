package driven

import (
	"context"

	"github.com/custodia-labs/reqsync/internal/core/domain"
)

// Normaliser turns a raw requirements document into plain text.
// Headings are rendered as markdown "#" lines so the requirement extractor
// can split on them regardless of the source format.
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Normalise returns the document text.
	Normalise(ctx context.Context, raw *domain.RawDocument) (string, error)
}
