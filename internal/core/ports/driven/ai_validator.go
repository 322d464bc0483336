package driven

import (
	"context"

	"github.com/custodia-labs/reqsync/internal/core/domain"
)

// OracleValidator validates oracle configurations.
// Implementations verify that configurations are valid by testing connectivity
// to the underlying provider.
type OracleValidator interface {
	// ValidateOracle validates an oracle configuration by pinging the provider.
	// Returns nil if configuration is valid or not configured.
	ValidateOracle(ctx context.Context, config *domain.OracleSettings) error
}
