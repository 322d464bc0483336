package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqsync/internal/adapters/driven/llm/ratelimited"
	"github.com/custodia-labs/reqsync/internal/core/domain"
)

func TestCreateOracle(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.OracleSettings
		wantNil     bool
		wantErr     bool
		wantName    string
		errContains string
	}{
		{
			name:     "nil settings returns nil",
			settings: nil,
			wantNil:  true,
		},
		{
			name:     "missing api key returns nil",
			settings: &domain.OracleSettings{Provider: domain.AIProviderOpenAI},
			wantNil:  true,
		},
		{
			name:     "gemini resolves model alias",
			settings: &domain.OracleSettings{Provider: domain.AIProviderGemini, APIKey: "k", Model: "gemini-pro"},
			wantName: "gemini/gemini-2.0-flash",
		},
		{
			name:     "openai",
			settings: &domain.OracleSettings{Provider: domain.AIProviderOpenAI, APIKey: "k", Model: "gpt-4o-mini"},
			wantName: "openai/gpt-4o-mini",
		},
		{
			name:     "deepseek uses openai client",
			settings: &domain.OracleSettings{Provider: domain.AIProviderDeepSeek, APIKey: "k"},
			wantName: "deepseek/deepseek-chat",
		},
		{
			name:     "anthropic",
			settings: &domain.OracleSettings{Provider: domain.AIProviderAnthropic, APIKey: "k", Model: "claude-x"},
			wantName: "anthropic/claude-x",
		},
		{
			name:     "ollama needs no key",
			settings: &domain.OracleSettings{Provider: domain.AIProviderOllama, Model: "llama3.2"},
			wantName: "ollama/llama3.2",
		},
		{
			name:     "command",
			settings: &domain.OracleSettings{Provider: domain.AIProviderCommand, Command: "llm -m local"},
			wantName: "command/llm",
		},
		{
			name:        "bad command line",
			settings:    &domain.OracleSettings{Provider: domain.AIProviderCommand, Command: `llm "open`},
			wantErr:     true,
			errContains: "split",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle, err := CreateOracle(context.Background(), tt.settings)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, oracle)
				return
			}
			require.NotNil(t, oracle)
			defer oracle.Close()
			assert.Equal(t, tt.wantName, oracle.Name())
		})
	}
}

func TestCreateOracle_RateLimited(t *testing.T) {
	oracle, err := CreateOracle(context.Background(), &domain.OracleSettings{
		Provider:          domain.AIProviderOllama,
		RequestsPerSecond: 2,
	})

	require.NoError(t, err)
	assert.IsType(t, &ratelimited.Oracle{}, oracle)
}

func TestCreateAndValidateOracle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			_, _ = w.Write([]byte(`{"models":[]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	settings := &domain.OracleSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL, Model: "llama3.2"}
	oracle, err := CreateAndValidateOracle(context.Background(), settings)
	require.NoError(t, err)
	require.NotNil(t, oracle)
	_ = oracle.Close()

	assert.NoError(t, NewConfigValidator().ValidateOracle(context.Background(), settings))
}

func TestCreateAndValidateOracle_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	settings := &domain.OracleSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL}
	oracle, err := CreateAndValidateOracle(context.Background(), settings)

	require.Error(t, err)
	assert.Nil(t, oracle)
	assert.ErrorIs(t, err, domain.ErrOracleUnavailable)
	assert.Error(t, ValidateOracleConfig(context.Background(), settings))
}

func TestValidateOracleConfig_Unconfigured(t *testing.T) {
	assert.NoError(t, ValidateOracleConfig(context.Background(), nil))
	assert.NoError(t, ValidateOracleConfig(context.Background(), &domain.OracleSettings{Provider: domain.AIProviderGemini}))
}
