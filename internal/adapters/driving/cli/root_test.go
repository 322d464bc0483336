package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driving"
)

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.AppSettings
	set         map[string]string
	validateErr error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if key == "nope" {
		return domain.ErrInvalidInput
	}
	if m.set == nil {
		m.set = map[string]string{}
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// mockReconciler implements driving.Reconciler for testing.
type mockReconciler struct {
	report *domain.RunReport
	err    error
	calls  []driving.RunOptions
}

func (m *mockReconciler) Run(_ context.Context, opts driving.RunOptions) (*domain.RunReport, error) {
	m.calls = append(m.calls, opts)
	return m.report, m.err
}

func (m *mockReconciler) LastRun(_ context.Context) (*domain.RunReport, error) {
	if m.report == nil {
		return nil, domain.ErrNotFound
	}
	return m.report, nil
}

// mockRecordService implements driving.RecordService for testing.
type mockRecordService struct {
	records  []domain.Record
	exported int
}

func (m *mockRecordService) List(_ context.Context) ([]domain.Record, error) {
	return m.records, nil
}

func (m *mockRecordService) Get(_ context.Context, id string) (*domain.Record, error) {
	for i := range m.records {
		if m.records[i].Get("Test Case ID") == id {
			return &m.records[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockRecordService) Template() domain.RecordTemplate {
	return domain.DefaultRecordTemplate()
}

func (m *mockRecordService) Export(_ context.Context) error {
	m.exported++
	return nil
}

// mockCacheService implements driving.CacheService for testing.
type mockCacheService struct {
	state   *domain.CacheState
	cleared bool
}

func (m *mockCacheService) Info(_ context.Context) (*domain.CacheState, error) {
	return m.state, nil
}

func (m *mockCacheService) Clear(_ context.Context) error {
	m.cleared = true
	m.state = &domain.CacheState{}
	return nil
}

// mockValidator implements driven.OracleValidator for testing.
type mockValidator struct {
	err  error
	seen *domain.OracleSettings
}

func (m *mockValidator) ValidateOracle(_ context.Context, cfg *domain.OracleSettings) error {
	m.seen = cfg
	return m.err
}

// mockWatcher implements Watcher for testing.
type mockWatcher struct {
	ch chan struct{}
}

func (m *mockWatcher) Watch(_ context.Context, _ time.Duration) (<-chan struct{}, error) {
	return m.ch, nil
}

func testRecord(id, req, title string) domain.Record {
	r := domain.NewRecord()
	r.Set("Test Case ID", id)
	r.Set("Requirement ID", req)
	r.Set("Test Case Title", title)
	return r
}

func testReport() *domain.RunReport {
	started := time.Date(2025, 6, 2, 14, 5, 9, 0, time.UTC)
	return &domain.RunReport{
		RunID:                 "0f8fad5b-d9cb-469f-a165-70867728950e",
		Mode:                  domain.ModeNewOnly,
		StartedAt:             started,
		FinishedAt:            started.Add(2 * time.Second),
		RequirementsProcessed: 2,
		Changes:               []domain.Change{{Type: domain.ChangeAdded, RequirementID: "REQ-002"}},
		Stats:                 domain.RunStatistics{Created: 1, Unchanged: 1, Total: 2},
	}
}

type testServices struct {
	settings   *mockSettingsService
	reconciler *mockReconciler
	records    *mockRecordService
	cache      *mockCacheService
	validator  *mockValidator
}

// setupTestServices installs mocks and returns a cleanup that restores the
// previous services and flag values.
func setupTestServices() (*testServices, func()) {
	old := Services{
		Settings:   settingsService,
		Reconciler: reconciler,
		Records:    recordService,
		Cache:      cacheService,
		Validator:  oracleValidator,
		Watcher:    sourceWatcher,
		Close:      closeHandler,
	}
	oldBootstrap := bootstrap

	ts := &testServices{
		settings:   &mockSettingsService{settings: domain.DefaultAppSettings()},
		reconciler: &mockReconciler{report: testReport()},
		records: &mockRecordService{records: []domain.Record{
			testRecord("TC-001", "REQ-001", "Login succeeds"),
			testRecord("TC-002", "REQ-002", "Export to CSV"),
		}},
		cache:     &mockCacheService{state: &domain.CacheState{}},
		validator: &mockValidator{},
	}
	SetServices(&Services{
		Settings:   ts.settings,
		Reconciler: ts.reconciler,
		Records:    ts.records,
		Cache:      ts.cache,
		Validator:  ts.validator,
	})
	bootstrap = nil

	return ts, func() {
		SetServices(&old)
		bootstrap = oldBootstrap
		runMode, runForce, runDryRun = "", false, false
		watchMode = ""
		watchInterval, watchDebounce = 5*time.Minute, 500*time.Millisecond
		recordsRequirement = ""
		templateOverwrite = false
		verbose, configDir = false, ""
	}
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}

	for _, want := range []string{"run", "watch", "status", "records", "browse", "cache", "settings", "template", "version", "mcp"} {
		assert.Contains(t, names, want)
	}
}

func TestRoot_BootstrapReceivesConfigDir(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	var gotDir string
	SetBootstrap(func(_ context.Context, dir string) (*Services, error) {
		gotDir = dir
		return &Services{Settings: &mockSettingsService{settings: domain.DefaultAppSettings()}}, nil
	})

	_, err := execute(t, "--config-dir", "/tmp/reqsync-test", "settings", "show")

	require.NoError(t, err)
	assert.Equal(t, "/tmp/reqsync-test", gotDir)
}

func TestRoot_BootstrapError(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	SetBootstrap(func(context.Context, string) (*Services, error) {
		return nil, errors.New("open store: disk full")
	})

	_, err := execute(t, "cache", "show")
	assert.EqualError(t, err, "open store: disk full")
}

func TestRoot_StandaloneCommandsSkipBootstrap(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	called := false
	SetBootstrap(func(context.Context, string) (*Services, error) {
		called = true
		return nil, errors.New("should not be called")
	})

	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.False(t, called)
	assert.Contains(t, out, "reqsync version")
}

func TestExecute_CallsClose(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	closed := false
	closeHandler = func() error {
		closed = true
		return nil
	}
	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, Execute(context.Background()))
	assert.True(t, closed)
}
