package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
)

// --- Mock implementations for command testing ---

type mockSynchronizer struct {
	healthErr error
	setupErr  error
	result    *domain.BatchResult
	batchErr  error

	reconciled []domain.Collection
	pushed     []domain.Collection
	records    [][]domain.Record
}

func (m *mockSynchronizer) HealthCheck(context.Context) error { return m.healthErr }

func (m *mockSynchronizer) EnsureCollection(context.Context, string) (bool, error) {
	return false, nil
}

func (m *mockSynchronizer) Setup(context.Context) error { return m.setupErr }

func (m *mockSynchronizer) Resolve(context.Context, string, domain.Collection) (string, bool, error) {
	return "", false, nil
}

func (m *mockSynchronizer) Reconcile(_ context.Context, records []domain.Record, c domain.Collection) (*domain.BatchResult, error) {
	m.reconciled = append(m.reconciled, c)
	m.records = append(m.records, records)
	return m.batch(records)
}

func (m *mockSynchronizer) Push(_ context.Context, records []domain.Record, c domain.Collection) (*domain.BatchResult, error) {
	m.pushed = append(m.pushed, c)
	m.records = append(m.records, records)
	return m.batch(records)
}

func (m *mockSynchronizer) batch(records []domain.Record) (*domain.BatchResult, error) {
	if m.result != nil || m.batchErr != nil {
		return m.result, m.batchErr
	}
	return &domain.BatchResult{Submitted: len(records), Inserted: len(records), Succeeded: len(records)}, nil
}

type mockLoader struct {
	records []domain.Record
	err     error
	paths   []string
}

func (m *mockLoader) Load(_ context.Context, path string) ([]domain.Record, error) {
	m.paths = append(m.paths, path)
	return m.records, m.err
}

type mockHistory struct {
	runs  []domain.SyncRun
	err   error
	limit int
}

func (m *mockHistory) Runs(_ context.Context, limit int) ([]domain.SyncRun, error) {
	m.limit = limit
	return m.runs, m.err
}

type mockSettings struct {
	settings    domain.AppSettings
	validateErr error
	saved       *domain.EngineSettings
}

func (m *mockSettings) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettings) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettings) SetEngine(engine domain.EngineSettings) error {
	if len(engine.Addresses) == 0 {
		return errors.New("no address")
	}
	m.saved = &engine
	return nil
}

func (m *mockSettings) Validate() error { return m.validateErr }

func (m *mockSettings) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

// setupServices installs mocks and restores the previous services and flags.
func setupServices(t *testing.T, s *Services) {
	t.Helper()
	prev := &Services{
		Synchronizer: synchronizer,
		History:      historyService,
		Settings:     settingsService,
		Loader:       recordLoader,
	}
	synchronizer, historyService, settingsService, recordLoader = nil, nil, nil, nil
	SetServices(s)

	t.Cleanup(func() {
		SetServices(prev)
		jsonOutput = false
		verbose = false
		syncCollection, pushCollection, watchCollection = "terminology", "terminology", "terminology"
		historyLimit = 20
		rootCmd.SetArgs(nil)
	})
}

// execute runs the root command and returns captured stdout and stderr.
func execute(args ...string) (string, string, error) {
	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}
