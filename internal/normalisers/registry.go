package normalisers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
	"github.com/custodia-labs/reqsync/internal/normalisers/docx"
	"github.com/custodia-labs/reqsync/internal/normalisers/markdown"
	"github.com/custodia-labs/reqsync/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches documents by MIME type.
// Types without a normaliser fall back to the fallback normaliser, if set.
type Registry struct {
	mu       sync.RWMutex
	byMIME   map[string]driven.Normaliser
	fallback driven.Normaliser
}

// NewRegistry creates an empty registry with the given fallback (may be nil).
func NewRegistry(fallback driven.Normaliser) *Registry {
	return &Registry{
		byMIME:   make(map[string]driven.Normaliser),
		fallback: fallback,
	}
}

// Default returns a registry with the docx, markdown and plain text
// normalisers. Plain text is the fallback.
func Default() *Registry {
	text := plaintext.New()
	r := NewRegistry(text)
	r.Register(docx.New())
	r.Register(markdown.New())
	r.Register(text)
	return r
}

// Register adds a normaliser. A later registration for the same MIME type wins.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, mime := range n.SupportedMIMETypes() {
		r.byMIME[strings.ToLower(mime)] = n
	}
}

// Normalise converts raw with the normaliser for its MIME type.
// MIME parameters such as "; charset=utf-8" are ignored.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	mime := strings.ToLower(strings.TrimSpace(strings.SplitN(raw.MIMEType, ";", 2)[0]))

	r.mu.RLock()
	n, ok := r.byMIME[mime]
	if !ok {
		n = r.fallback
	}
	r.mu.RUnlock()

	if n == nil {
		return "", fmt.Errorf("no normaliser for %q: %w", raw.MIMEType, domain.ErrInvalidInput)
	}
	return n.Normalise(ctx, raw)
}

// SupportedMIMETypes returns the registered MIME types, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.byMIME))
	for mime := range r.byMIME {
		types = append(types, mime)
	}
	sort.Strings(types)
	return types
}
