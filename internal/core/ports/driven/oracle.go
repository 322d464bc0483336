package driven

import "context"

// Oracle is an external text generation service.
// It is used both for record generation and for coverage classification.
//
// Implementations include:
//   - Gemini (google.golang.org/genai)
//   - OpenAI and DeepSeek (go-openai)
//   - Anthropic
//   - Ollama (local models)
//   - A local command reading the prompt on stdin
//
// Implementations must wrap rate limit and quota failures with
// domain.ErrRateLimited so callers can retry them.
type Oracle interface {
	// Generate produces text completion from a prompt.
	Generate(ctx context.Context, prompt string, params GenerateParams) (string, error)

	// Name returns the provider and model in use.
	Name() string

	// Close releases resources.
	Close() error
}

// GenerateParams configures text generation behaviour.
type GenerateParams struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
