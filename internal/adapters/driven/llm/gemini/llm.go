// Package gemini provides an oracle adapter for Google Gemini via google.golang.org/genai.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
)

// Ensure Oracle implements the interface.
var _ driven.Oracle = (*Oracle)(nil)

// Default configuration values.
const (
	DefaultModel   = "gemini-2.0-flash"
	DefaultTimeout = 300 * time.Second
)

// modelAliases maps retired or shorthand model names to ones the API serves.
var modelAliases = map[string]string{
	"gemini-flash":     "gemini-2.0-flash",
	"gemini-pro":       "gemini-2.0-flash",
	"gemini-1.5-pro":   "gemini-2.0-flash",
	"gemini-1.5-flash": "gemini-2.0-flash",
	"gemini-2.5-flash": "gemini-2.5-flash-preview-05-20",
	"gemini-2.5-pro":   "gemini-2.5-pro-preview-05-06",
}

// ResolveModel returns the served model for a configured name.
func ResolveModel(name string) string {
	if name == "" {
		return DefaultModel
	}
	if m, ok := modelAliases[name]; ok {
		return m
	}
	return name
}

// Config holds configuration for the Gemini oracle.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the model or alias to use (default: gemini-2.0-flash).
	Model string

	// BaseURL overrides the API endpoint. Used by tests.
	BaseURL string

	// Timeout is the request timeout (default: 300s).
	Timeout time.Duration
}

// Oracle generates text with the Gemini API.
type Oracle struct {
	client *genai.Client
	model  string
}

// New creates a Gemini oracle.
func New(ctx context.Context, cfg Config) (*Oracle, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Oracle{client: client, model: ResolveModel(cfg.Model)}, nil
}

// Generate produces a single completion.
func (o *Oracle) Generate(ctx context.Context, prompt string, params driven.GenerateParams) (string, error) {
	config := &genai.GenerateContentConfig{}
	if params.MaxTokens > 0 {
		config.MaxOutputTokens = int32(params.MaxTokens) //nolint:gosec // G115: token counts are small
	}
	if params.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(params.Temperature))
	}

	resp, err := o.client.Models.GenerateContent(ctx, o.model, genai.Text(prompt), config)
	if err != nil {
		return "", wrapError(err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return text, nil
}

// wrapError maps 429 and RESOURCE_EXHAUSTED to domain.ErrRateLimited.
func wrapError(err error) error {
	code, status := 0, ""
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code, status = apiErr.Code, apiErr.Status
	case errors.As(err, &apiErrPtr):
		code, status = apiErrPtr.Code, apiErrPtr.Status
	}
	if code == http.StatusTooManyRequests || status == "RESOURCE_EXHAUSTED" {
		return fmt.Errorf("gemini: %w: %w", err, domain.ErrRateLimited)
	}
	return fmt.Errorf("gemini: generate content: %w", err)
}

// Name returns the provider and resolved model.
func (o *Oracle) Name() string {
	return "gemini/" + o.model
}

// Close releases resources.
func (o *Oracle) Close() error {
	return nil
}
