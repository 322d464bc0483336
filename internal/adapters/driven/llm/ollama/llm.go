// Package ollama is the oracle adapter for a local Ollama server.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/reqsync/internal/adapters/driven/llm/httpjson"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
)

// Ensure Oracle implements the interface.
var _ driven.Oracle = (*Oracle)(nil)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"

	// Local models are slow on large batches.
	DefaultTimeout = 300 * time.Second
)

// Config holds configuration for the Ollama oracle. Zero values fall back
// to the defaults above.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Oracle calls /api/generate with streaming off.
type Oracle struct {
	api   *httpjson.Client
	model string
}

type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Options *options `json:"options,omitempty"`
}

type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// New creates an Ollama oracle.
func New(cfg Config) *Oracle {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	api := httpjson.New("ollama", cfg.BaseURL, cfg.Timeout)
	// Ollama answers 503 while a model is still loading.
	api.Throttled = []int{http.StatusServiceUnavailable}
	api.ErrorMessage = func(body []byte) string {
		var r generateResponse
		_ = json.Unmarshal(body, &r)
		return r.Error
	}
	return &Oracle{api: api, model: cfg.Model}
}

// Generate returns the full completion.
func (o *Oracle) Generate(ctx context.Context, prompt string, params driven.GenerateParams) (string, error) {
	req := generateRequest{Model: o.model, Prompt: prompt}
	if params.MaxTokens > 0 || params.Temperature > 0 {
		req.Options = &options{NumPredict: params.MaxTokens, Temperature: params.Temperature}
	}

	var resp generateResponse
	if err := o.api.Post(ctx, "/api/generate", req, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("ollama: %s", resp.Error)
	}
	return resp.Response, nil
}

// Name returns the provider and model.
func (o *Oracle) Name() string {
	return "ollama/" + o.model
}

// Ping checks the server answers /api/tags.
func (o *Oracle) Ping(ctx context.Context) error {
	return o.api.Get(ctx, "/api/tags", nil)
}

// Close is a no-op.
func (o *Oracle) Close() error {
	return nil
}
