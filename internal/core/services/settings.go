package services

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
	"github.com/custodia-labs/reqsync/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvPrefix prefixes environment overrides, e.g. REQSYNC_ORACLE_API_KEY.
const EnvPrefix = "REQSYNC_"

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyRunMode          = "run.mode"
	keyRunBatchSize     = "run.batch_size"
	keyRunConcurrency   = "run.concurrency"
	keyRunMaxRetries    = "run.max_retries"
	keyRunRetryBase     = "run.retry_base_seconds"
	keySourcePath       = "source.path"
	keySourceDriveFile  = "source.drive_file_id"
	keyRecordsDir       = "records.db_dir"
	keyRecordsExportCSV = "records.export_csv"
	keyTemplatePath     = "template.path"
	keyCacheBackend     = "cache.backend"
	keyCacheDir         = "cache.dir"
	keyCacheGCSBucket   = "cache.gcs_bucket"
	keyCacheGCSObject   = "cache.gcs_object"
	keyOracleProvider   = "oracle.provider"
	keyOracleModel      = "oracle.model"
	keyOracleBaseURL    = "oracle.base_url"
	keyOracleAPIKey     = "oracle.api_key"
	keyOracleCommand    = "oracle.command"
	keyOracleMaxTokens  = "oracle.max_tokens"
	keyOracleTemp       = "oracle.temperature"
	keyOracleRPS        = "oracle.requests_per_second"
	keyOracleTimeout    = "oracle.timeout_seconds"
	keyReportDir        = "report.dir"
	keyMetricsTextfile  = "metrics.textfile"
	keyGoogleCreds      = "google.credentials_file"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
)

// settingKeys lists every key Set accepts with its value kind.
var settingKeys = map[string]keyKind{
	keyRunMode:          kindString,
	keyRunBatchSize:     kindInt,
	keyRunConcurrency:   kindInt,
	keyRunMaxRetries:    kindInt,
	keyRunRetryBase:     kindInt,
	keySourcePath:       kindString,
	keySourceDriveFile:  kindString,
	keyRecordsDir:       kindString,
	keyRecordsExportCSV: kindString,
	keyTemplatePath:     kindString,
	keyCacheBackend:     kindString,
	keyCacheDir:         kindString,
	keyCacheGCSBucket:   kindString,
	keyCacheGCSObject:   kindString,
	keyOracleProvider:   kindString,
	keyOracleModel:      kindString,
	keyOracleBaseURL:    kindString,
	keyOracleAPIKey:     kindString,
	keyOracleCommand:    kindString,
	keyOracleMaxTokens:  kindInt,
	keyOracleTemp:       kindFloat,
	keyOracleRPS:        kindFloat,
	keyOracleTimeout:    kindInt,
	keyReportDir:        kindString,
	keyMetricsTextfile:  kindString,
	keyGoogleCreds:      kindString,
}

// SettingKeys returns all recognised config keys, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsService manages application settings.
// Environment variables named EnvPrefix plus the upper-cased key, with dots
// replaced by underscores, override the config file.
type SettingsService struct {
	configStore driven.ConfigStore
	validate    *validator.Validate
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validate:    validator.New(),
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Run: domain.RunSettings{
			Mode:        domain.UpdateMode(s.getString(keyRunMode, d.Run.Mode.String())),
			BatchSize:   s.getInt(keyRunBatchSize, d.Run.BatchSize),
			Concurrency: s.getInt(keyRunConcurrency, d.Run.Concurrency),
			MaxRetries:  s.getInt(keyRunMaxRetries, d.Run.MaxRetries),
			RetryBase:   s.getSeconds(keyRunRetryBase, d.Run.RetryBase),
		},
		Source: domain.SourceSettings{
			Path:        s.getString(keySourcePath, ""),
			DriveFileID: s.getString(keySourceDriveFile, ""),
		},
		Records: domain.RecordSettings{
			DataDir:      s.getString(keyRecordsDir, d.Records.DataDir),
			ExportCSV:    s.getString(keyRecordsExportCSV, ""),
			TemplatePath: s.getString(keyTemplatePath, ""),
		},
		Cache: domain.CacheSettings{
			Backend:   domain.CacheBackend(s.getString(keyCacheBackend, string(d.Cache.Backend))),
			Dir:       s.getString(keyCacheDir, d.Cache.Dir),
			GCSBucket: s.getString(keyCacheGCSBucket, ""),
			GCSObject: s.getString(keyCacheGCSObject, d.Cache.GCSObject),
		},
		Oracle: domain.OracleSettings{
			Provider:          domain.AIProvider(s.getString(keyOracleProvider, d.Oracle.Provider.String())),
			Model:             s.getString(keyOracleModel, d.Oracle.Model),
			BaseURL:           s.getString(keyOracleBaseURL, ""),
			APIKey:            s.getString(keyOracleAPIKey, ""),
			Command:           s.getString(keyOracleCommand, ""),
			MaxTokens:         s.getInt(keyOracleMaxTokens, d.Oracle.MaxTokens),
			Temperature:       s.getFloat(keyOracleTemp, d.Oracle.Temperature),
			RequestsPerSecond: s.getFloat(keyOracleRPS, d.Oracle.RequestsPerSecond),
			Timeout:           s.getSeconds(keyOracleTimeout, d.Oracle.Timeout),
		},
		Report: domain.ReportSettings{
			Dir:             s.getString(keyReportDir, d.Report.Dir),
			MetricsTextfile: s.getString(keyMetricsTextfile, ""),
		},
		GoogleCredentialsFile: s.getString(keyGoogleCreds, ""),
	}

	return settings, nil
}

// Save persists application settings. Empty secrets are not written.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key string
		val any
	}{
		{keyRunMode, settings.Run.Mode.String()},
		{keyRunBatchSize, settings.Run.BatchSize},
		{keyRunConcurrency, settings.Run.Concurrency},
		{keyRunMaxRetries, settings.Run.MaxRetries},
		{keyRunRetryBase, int(settings.Run.RetryBase / time.Second)},
		{keySourcePath, settings.Source.Path},
		{keySourceDriveFile, settings.Source.DriveFileID},
		{keyRecordsDir, settings.Records.DataDir},
		{keyRecordsExportCSV, settings.Records.ExportCSV},
		{keyTemplatePath, settings.Records.TemplatePath},
		{keyCacheBackend, string(settings.Cache.Backend)},
		{keyCacheDir, settings.Cache.Dir},
		{keyCacheGCSBucket, settings.Cache.GCSBucket},
		{keyCacheGCSObject, settings.Cache.GCSObject},
		{keyOracleProvider, settings.Oracle.Provider.String()},
		{keyOracleModel, settings.Oracle.Model},
		{keyOracleBaseURL, settings.Oracle.BaseURL},
		{keyOracleCommand, settings.Oracle.Command},
		{keyOracleMaxTokens, settings.Oracle.MaxTokens},
		{keyOracleTemp, settings.Oracle.Temperature},
		{keyOracleRPS, settings.Oracle.RequestsPerSecond},
		{keyOracleTimeout, int(settings.Oracle.Timeout / time.Second)},
		{keyReportDir, settings.Report.Dir},
		{keyMetricsTextfile, settings.Report.MetricsTextfile},
		{keyGoogleCreds, settings.GoogleCredentialsFile},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.val); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.Oracle.APIKey != "" {
		if err := s.configStore.Set(keyOracleAPIKey, settings.Oracle.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyOracleAPIKey, err)
		}
	}
	return nil
}

// Set stores one key, converting value to the key's type.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKeys[key]
	if !ok {
		return &domain.ConfigurationError{Key: key, Reason: "unknown key", Err: domain.ErrInvalidInput}
	}

	var v any = value
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return &domain.ConfigurationError{Key: key, Reason: "expected an integer", Err: domain.ErrInvalidInput}
		}
		v = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return &domain.ConfigurationError{Key: key, Reason: "expected a number", Err: domain.ErrInvalidInput}
		}
		v = f
	}

	switch key {
	case keyRunMode:
		if !domain.UpdateMode(value).IsValid() {
			return &domain.ConfigurationError{Key: key, Reason: fmt.Sprintf("unknown mode %q", value), Err: domain.ErrInvalidMode}
		}
	case keyOracleProvider:
		if !domain.AIProvider(value).IsValid() {
			return &domain.ConfigurationError{Key: key, Reason: fmt.Sprintf("unknown provider %q", value), Err: domain.ErrInvalidInput}
		}
	case keyCacheBackend:
		if !domain.CacheBackend(value).IsValid() {
			return &domain.ConfigurationError{Key: key, Reason: fmt.Sprintf("unknown backend %q", value), Err: domain.ErrInvalidInput}
		}
	}

	if err := s.configStore.Set(key, v); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Validate checks the current settings and reports the first offending key.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.ValidateSettings(settings)
}

// ValidateSettings checks settings against their struct rules.
func (s *SettingsService) ValidateSettings(settings *domain.AppSettings) error {
	if err := s.validate.Struct(settings); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &domain.ConfigurationError{
				Key:    configKeyFor(fe.StructNamespace()),
				Reason: fmt.Sprintf("failed %q rule", fe.Tag()),
				Err:    domain.ErrInvalidInput,
			}
		}
		return &domain.ConfigurationError{Reason: err.Error(), Err: err}
	}

	if !settings.Oracle.IsConfigured() {
		return &domain.ConfigurationError{
			Key:    keyOracleAPIKey,
			Reason: fmt.Sprintf("provider %s needs an API key", settings.Oracle.Provider),
			Err:    domain.ErrOracleUnavailable,
		}
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// configKeyFor maps a validator namespace such as "AppSettings.Run.BatchSize"
// back to its config key.
func configKeyFor(namespace string) string {
	fields := map[string]string{
		"Run.Mode":                 keyRunMode,
		"Run.BatchSize":            keyRunBatchSize,
		"Run.Concurrency":          keyRunConcurrency,
		"Run.MaxRetries":           keyRunMaxRetries,
		"Run.RetryBase":            keyRunRetryBase,
		"Source.Path":              keySourcePath,
		"Source.DriveFileID":       keySourceDriveFile,
		"Cache.Backend":            keyCacheBackend,
		"Cache.GCSBucket":          keyCacheGCSBucket,
		"Oracle.Provider":          keyOracleProvider,
		"Oracle.BaseURL":           keyOracleBaseURL,
		"Oracle.Command":           keyOracleCommand,
		"Oracle.MaxTokens":         keyOracleMaxTokens,
		"Oracle.Temperature":       keyOracleTemp,
		"Oracle.RequestsPerSecond": keyOracleRPS,
	}
	ns := strings.TrimPrefix(namespace, "AppSettings.")
	if key, ok := fields[ns]; ok {
		return key
	}
	return ns
}

// Helper methods for reading config with defaults.

func (s *SettingsService) env(key string) (string, bool) {
	if s.lookupEnv == nil {
		return "", false
	}
	name := EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	v, ok := s.lookupEnv(name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if v, ok := s.env(key); ok {
		return v
	}
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if v, ok := s.env(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if v, ok := s.env(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	raw, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	switch v := raw.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return defaultVal
	}
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	n := s.getInt(key, -1)
	if n < 0 {
		return defaultVal
	}
	return time.Duration(n) * time.Second
}
