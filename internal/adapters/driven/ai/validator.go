package ai

import (
	"context"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.OracleValidator = (*ConfigValidator)(nil)

// ConfigValidator validates oracle configurations.
type ConfigValidator struct{}

// NewConfigValidator creates a new oracle config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateOracle validates an oracle configuration by pinging the provider.
func (v *ConfigValidator) ValidateOracle(ctx context.Context, config *domain.OracleSettings) error {
	return ValidateOracleConfig(ctx, config)
}
