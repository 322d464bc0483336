package driving

import "github.com/custodia-labs/reqsync/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set stores one dotted key, converting the value to the key's type.
	Set(key, value string) error

	// Validate checks the current settings and returns a *domain.ConfigurationError.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
