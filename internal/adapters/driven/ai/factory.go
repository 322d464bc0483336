// Package ai provides factory functions for creating oracle adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/reqsync/internal/adapters/driven/llm/anthropic"
	"github.com/custodia-labs/reqsync/internal/adapters/driven/llm/command"
	"github.com/custodia-labs/reqsync/internal/adapters/driven/llm/gemini"
	"github.com/custodia-labs/reqsync/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/reqsync/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/reqsync/internal/adapters/driven/llm/ratelimited"
	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for oracle connectivity validation.
const pingTimeout = 5 * time.Second

// pinger is implemented by oracles that can check connectivity cheaply.
type pinger interface {
	Ping(ctx context.Context) error
}

// CreateOracle creates the oracle selected by settings.
// Returns nil if the oracle is not configured. A positive RequestsPerSecond
// wraps the oracle in a client-side rate limiter.
func CreateOracle(ctx context.Context, settings *domain.OracleSettings) (driven.Oracle, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	oracle, err := createOracle(ctx, settings)
	if err != nil {
		return nil, err
	}

	return ratelimited.Wrap(oracle, ratelimited.Config{
		RequestsPerSecond: settings.RequestsPerSecond,
	}), nil
}

// CreateAndValidateOracle creates an oracle and validates connectivity.
// Returns the oracle if successful, or an error with guidance.
func CreateAndValidateOracle(ctx context.Context, settings *domain.OracleSettings) (driven.Oracle, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	oracle, err := CreateOracle(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'reqsync settings set oracle.<key> <value>' to fix",
			domain.ErrOracleUnavailable, err)
	}

	if err := ping(ctx, oracle); err != nil {
		_ = oracle.Close()
		return nil, fmt.Errorf("%w: oracle unreachable (%w). Run 'reqsync settings show' to check",
			domain.ErrOracleUnavailable, err)
	}

	return oracle, nil
}

// ValidateOracleConfig creates an oracle from settings and pings it.
// Returns nil when the oracle is not configured.
func ValidateOracleConfig(ctx context.Context, settings *domain.OracleSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	oracle, err := CreateOracle(ctx, settings)
	if err != nil {
		return err
	}
	defer oracle.Close()

	return ping(ctx, oracle)
}

// ping validates connectivity for oracles that support it.
func ping(ctx context.Context, oracle driven.Oracle) error {
	p, ok := oracle.(pinger)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return p.Ping(ctx)
}

func createOracle(ctx context.Context, settings *domain.OracleSettings) (driven.Oracle, error) {
	switch settings.Provider {
	case domain.AIProviderGemini:
		return gemini.New(ctx, gemini.Config{
			APIKey:  settings.APIKey,
			Model:   settings.Model,
			BaseURL: settings.BaseURL,
			Timeout: settings.Timeout,
		})

	case domain.AIProviderOpenAI:
		return openai.New(openai.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	case domain.AIProviderDeepSeek:
		return openai.NewDeepSeek(openai.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	case domain.AIProviderAnthropic:
		return anthropic.New(anthropic.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	case domain.AIProviderOllama:
		return ollama.New(ollama.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		}), nil

	case domain.AIProviderCommand:
		return command.New(command.Config{
			Command: settings.Command,
			Timeout: settings.Timeout,
		})

	default:
		return nil, fmt.Errorf("unsupported oracle provider: %s", settings.Provider)
	}
}
