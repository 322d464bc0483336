package driven

// ConfigStore persists the flat settings map behind SettingsService.
// Keys are dotted ("oracle.model") and map onto the TOML tables of the
// config file. Typed getters return the zero value for a missing key or
// a value of another type.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int

	// Set writes through to storage. A failed write leaves the previous
	// value in place.
	Set(key string, value any) error

	Save() error

	// Path locates the backing file, or is empty for in-memory stores.
	Path() string
}
