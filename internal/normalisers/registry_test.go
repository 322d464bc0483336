package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqsync/internal/core/domain"
)

type upperNormaliser struct{}

func (upperNormaliser) SupportedMIMETypes() []string { return []string{"text/markdown"} }
func (upperNormaliser) Normalise(_ context.Context, _ *domain.RawDocument) (string, error) {
	return "OVERRIDE", nil
}

func TestDefault_SupportedMIMETypes(t *testing.T) {
	types := Default().SupportedMIMETypes()

	assert.Contains(t, types, domain.MIMETypeDocx)
	assert.Contains(t, types, domain.MIMETypeMarkdown)
	assert.Contains(t, types, domain.MIMETypeText)
}

func TestRegistry_Normalise(t *testing.T) {
	r := Default()
	ctx := context.Background()

	text, err := r.Normalise(ctx, &domain.RawDocument{MIMEType: "text/markdown; charset=utf-8", Content: []byte("# A\n\n**b**")})
	require.NoError(t, err)
	assert.Equal(t, "# A\n\nb", text)

	text, err = r.Normalise(ctx, &domain.RawDocument{MIMEType: "application/octet-stream", Content: []byte("fallback\r\n")})
	require.NoError(t, err)
	assert.Equal(t, "fallback", text)
}

func TestRegistry_RegisterOverrides(t *testing.T) {
	r := Default()
	r.Register(upperNormaliser{})

	text, err := r.Normalise(context.Background(), &domain.RawDocument{MIMEType: "text/markdown"})

	require.NoError(t, err)
	assert.Equal(t, "OVERRIDE", text)
}

func TestRegistry_NoFallback(t *testing.T) {
	r := NewRegistry(nil)

	_, err := r.Normalise(context.Background(), &domain.RawDocument{MIMEType: "text/plain"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = r.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
