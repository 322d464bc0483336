package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies a generation oracle backend.
type AIProvider string

// Available oracle providers.
const (
	AIProviderGemini    AIProvider = "gemini"
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderDeepSeek  AIProvider = "deepseek"
	AIProviderAnthropic AIProvider = "anthropic"
	AIProviderOllama    AIProvider = "ollama"

	// AIProviderCommand runs a local CLI that reads the prompt on stdin.
	AIProviderCommand AIProvider = "command"
)

// AllAIProviders returns the providers in the order offered to users.
func AllAIProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini, AIProviderOpenAI, AIProviderDeepSeek,
		AIProviderAnthropic, AIProviderOllama, AIProviderCommand,
	}
}

// DefaultOracleModels returns the default model per provider.
// The command provider picks its own model.
func DefaultOracleModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini:    "gemini-2.0-flash",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderDeepSeek:  "deepseek-chat",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderOllama:    "llama3.2",
		AIProviderCommand:   "",
	}
}

// IsValid returns true if the provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderGemini, AIProviderOpenAI, AIProviderDeepSeek,
		AIProviderAnthropic, AIProviderOllama, AIProviderCommand:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	switch p {
	case AIProviderGemini, AIProviderOpenAI, AIProviderDeepSeek, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// IsLocal returns true if this provider runs on the local machine.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderCommand
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderDeepSeek:
		return "DeepSeek (cloud, OpenAI compatible)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderCommand:
		return "Local command"
	default:
		return unknownDescription
	}
}

// CacheBackend selects where the change cache is kept.
type CacheBackend string

// Available cache backends.
const (
	CacheBackendFile   CacheBackend = "file"
	CacheBackendSQLite CacheBackend = "sqlite"
	CacheBackendBadger CacheBackend = "badger"
	CacheBackendGCS    CacheBackend = "gcs"
)

// IsValid returns true if the backend is recognised.
func (b CacheBackend) IsValid() bool {
	switch b {
	case CacheBackendFile, CacheBackendSQLite, CacheBackendBadger, CacheBackendGCS:
		return true
	default:
		return false
	}
}

// RunSettings configures the reconciliation run.
type RunSettings struct {
	Mode UpdateMode `validate:"required,oneof=new_only full_sync intelligent"`

	// BatchSize is the number of requirements per generation call.
	BatchSize int `validate:"min=1,max=50"`

	// Concurrency is the number of batches dispatched at once.
	Concurrency int `validate:"min=1,max=16"`

	// MaxRetries caps retries of rate-limited oracle calls.
	MaxRetries int `validate:"min=0,max=10"`

	// RetryBase is the first backoff delay.
	RetryBase time.Duration `validate:"min=0"`
}

// SourceSettings locates the requirements document.
type SourceSettings struct {
	// Path is a local .docx, .md or .txt file.
	Path string `validate:"required_without=DriveFileID"`

	// DriveFileID selects a Google Drive document instead of a local file.
	DriveFileID string `validate:"required_without=Path"`
}

// RecordSettings configures the record store.
type RecordSettings struct {
	// DataDir holds the SQLite database.
	DataDir string

	// ExportCSV, when set, receives a CSV snapshot after every run.
	ExportCSV string

	// TemplatePath points to a YAML record template. Empty uses the default.
	TemplatePath string
}

// CacheSettings configures the change cache.
type CacheSettings struct {
	Backend   CacheBackend `validate:"required,oneof=file sqlite badger gcs"`
	Dir       string
	GCSBucket string `validate:"required_if=Backend gcs"`
	GCSObject string
}

// OracleSettings configures the generation oracle.
type OracleSettings struct {
	Provider          AIProvider `validate:"required,oneof=gemini openai deepseek anthropic ollama command"`
	Model             string
	BaseURL           string `validate:"omitempty,url"`
	APIKey            string
	Command           string  `validate:"required_if=Provider command"`
	MaxTokens         int     `validate:"min=1"`
	Temperature       float64 `validate:"min=0,max=2"`
	RequestsPerSecond float64 `validate:"min=0"`
	Timeout           time.Duration
}

// IsConfigured returns true if the oracle has everything it needs.
func (o OracleSettings) IsConfigured() bool {
	if !o.Provider.IsValid() {
		return false
	}
	if o.Provider.RequiresAPIKey() && o.APIKey == "" {
		return false
	}
	if o.Provider == AIProviderCommand && o.Command == "" {
		return false
	}
	return true
}

// ReportSettings configures run outputs.
type ReportSettings struct {
	Dir             string
	MetricsTextfile string
}

// AppSettings is the complete application configuration.
type AppSettings struct {
	Run     RunSettings
	Source  SourceSettings
	Records RecordSettings
	Cache   CacheSettings
	Oracle  OracleSettings
	Report  ReportSettings

	// GoogleCredentialsFile is used by the Drive source and the GCS cache.
	GoogleCredentialsFile string
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Run: RunSettings{
			Mode:        ModeIntelligent,
			BatchSize:   5,
			Concurrency: 1,
			MaxRetries:  3,
			RetryBase:   5 * time.Second,
		},
		Cache: CacheSettings{
			Backend:   CacheBackendFile,
			GCSObject: "reqsync/requirements",
		},
		Oracle: OracleSettings{
			Provider:    AIProviderGemini,
			Model:       "gemini-2.0-flash",
			MaxTokens:   2000,
			Temperature: 0.3,
			Timeout:     300 * time.Second,
		},
	}
}
