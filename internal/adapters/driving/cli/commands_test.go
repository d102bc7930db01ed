package cli

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
)

var sampleRecords = []domain.Record{
	{URI: "urn:a", PrefLabel: "A"},
	{URI: "urn:b", PrefLabel: "B"},
}

func TestHealthCmd_Reachable(t *testing.T) {
	setupServices(t, &Services{Synchronizer: &mockSynchronizer{}})

	stdout, _, err := execute("health")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ Search engine reachable")
}

func TestHealthCmd_Unreachable(t *testing.T) {
	setupServices(t, &Services{Synchronizer: &mockSynchronizer{healthErr: domain.ErrEngineUnavailable}})

	_, stderr, err := execute("health")
	assert.ErrorIs(t, err, errFatal)
	assert.Contains(t, stderr, "✗ FATAL: search engine unreachable")
}

func TestHealthCmd_NotConfigured(t *testing.T) {
	setupServices(t, &Services{})

	_, _, err := execute("health")
	assert.EqualError(t, err, "sync service not configured")
}

func TestSetupCmd(t *testing.T) {
	setupServices(t, &Services{Synchronizer: &mockSynchronizer{}})

	stdout, _, err := execute("setup")
	require.NoError(t, err)
	assert.Contains(t, stdout, "oslo-terminology")
	assert.Contains(t, stdout, "oslo-application-profiles")
}

func TestSetupCmd_Failure(t *testing.T) {
	setupServices(t, &Services{Synchronizer: &mockSynchronizer{
		setupErr: domain.NewEngineError("create", "oslo-terminology", errors.New("forbidden")),
	}})

	_, _, err := execute("setup")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup incomplete")
	var engErr *domain.EngineError
	assert.ErrorAs(t, err, &engErr)
}

func TestSyncCmd_Reconciles(t *testing.T) {
	syncer := &mockSynchronizer{}
	loader := &mockLoader{records: sampleRecords}
	setupServices(t, &Services{Synchronizer: syncer, Loader: loader})

	stdout, _, err := execute("sync", "records.json", "--collection", "application-profiles")
	require.NoError(t, err)

	assert.Equal(t, []string{"records.json"}, loader.paths)
	assert.Equal(t, []domain.Collection{domain.ApplicationProfileCollection}, syncer.reconciled)
	assert.Empty(t, syncer.pushed)
	assert.Contains(t, stdout, "Collection: oslo-application-profiles")
	assert.Contains(t, stdout, "Inserted:  2")
	assert.Contains(t, stdout, "All records reconciled.")
}

func TestSyncCmd_RequiresFile(t *testing.T) {
	setupServices(t, &Services{Synchronizer: &mockSynchronizer{}, Loader: &mockLoader{}})

	_, _, err := execute("sync")
	assert.Error(t, err)
}

func TestSyncCmd_UnknownCollection(t *testing.T) {
	setupServices(t, &Services{Synchronizer: &mockSynchronizer{}, Loader: &mockLoader{}})

	_, _, err := execute("sync", "records.json", "-c", "glossary")
	assert.ErrorIs(t, err, domain.ErrUnknownCollection)
}

func TestSyncCmd_LoadError(t *testing.T) {
	setupServices(t, &Services{
		Synchronizer: &mockSynchronizer{},
		Loader:       &mockLoader{err: domain.ErrInvalidInput},
	})

	_, _, err := execute("sync", "records.csv")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSyncCmd_PartialFailure(t *testing.T) {
	setupServices(t, &Services{
		Synchronizer: &mockSynchronizer{result: &domain.BatchResult{
			Submitted: 2, Inserted: 1, Updated: 1, Succeeded: 1,
			Failed: []domain.DirectiveFailure{{Index: 1, URI: "urn:b", Reason: "version_conflict_engine_exception: conflict"}},
		}},
		Loader: &mockLoader{records: sampleRecords},
	})

	stdout, _, err := execute("sync", "records.json")
	require.Error(t, err)
	assert.Equal(t, "1 of 2 records failed", err.Error())
	assert.Contains(t, stdout, "[1] urn:b: version_conflict_engine_exception: conflict")
}

func TestSyncCmd_BulkError(t *testing.T) {
	bulkErr := domain.NewEngineError("bulk", "", errors.New("connection reset"))
	setupServices(t, &Services{
		Synchronizer: &mockSynchronizer{
			result:   &domain.BatchResult{Submitted: 2, Failed: []domain.DirectiveFailure{{Index: 0}, {Index: 1}}},
			batchErr: bulkErr,
		},
		Loader: &mockLoader{records: sampleRecords},
	})

	stdout, _, err := execute("sync", "records.json")
	assert.ErrorIs(t, err, bulkErr)
	assert.Contains(t, stdout, "2 record(s) failed")
}

func TestSyncCmd_JSON(t *testing.T) {
	setupServices(t, &Services{
		Synchronizer: &mockSynchronizer{},
		Loader:       &mockLoader{records: sampleRecords},
	})

	stdout, _, err := execute("sync", "records.json", "--json")
	require.NoError(t, err)

	var got domain.BatchResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, 2, got.Inserted)
	assert.Equal(t, 2, got.Succeeded)
}

func TestPushCmd_UsesPush(t *testing.T) {
	syncer := &mockSynchronizer{result: &domain.BatchResult{Submitted: 1, Inserted: 1, Skipped: 1, Succeeded: 1}}
	setupServices(t, &Services{Synchronizer: syncer, Loader: &mockLoader{records: sampleRecords}})

	stdout, _, err := execute("push", "records.yaml")
	require.NoError(t, err)
	assert.Equal(t, []domain.Collection{domain.TerminologyCollection}, syncer.pushed)
	assert.Empty(t, syncer.reconciled)
	assert.Contains(t, stdout, "Skipped:   1")
}

func TestHistoryCmd(t *testing.T) {
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	history := &mockHistory{runs: []domain.SyncRun{
		{
			ID: "0d6f3a9e-1111-2222-3333-444455556666", Mode: domain.ModeSync,
			Collection: "oslo-terminology", Records: 3, Inserted: 2, Updated: 1,
			StartedAt: started, FinishedAt: started.Add(2 * time.Second),
		},
		{
			ID: "b", Mode: domain.ModePush, Collection: "oslo-application-profiles",
			Records: 1, Failed: 1, StartedAt: started, FinishedAt: started,
		},
	}}
	setupServices(t, &Services{History: history})

	stdout, _, err := execute("history", "-n", "5")
	require.NoError(t, err)
	assert.Equal(t, 5, history.limit)
	assert.Contains(t, stdout, "0d6f3a9e")
	assert.NotContains(t, stdout, "0d6f3a9e-1111")
	assert.Contains(t, stdout, "oslo-application-profiles")
	assert.Contains(t, stdout, "partial")
	assert.Contains(t, stdout, "2s")
}

func TestHistoryCmd_Empty(t *testing.T) {
	setupServices(t, &Services{History: &mockHistory{}})

	stdout, _, err := execute("history")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No sync runs recorded yet.")
}

func TestHistoryCmd_JSON(t *testing.T) {
	setupServices(t, &Services{History: &mockHistory{runs: []domain.SyncRun{{ID: "r1", Mode: domain.ModeSync}}}})

	stdout, _, err := execute("history", "--json")
	require.NoError(t, err)

	var runs []domain.SyncRun
	require.NoError(t, json.Unmarshal([]byte(stdout), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "r1", runs[0].ID)
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	stdout, _, err := execute("version")

	assert.NoError(t, err)
	assert.Contains(t, stdout, "oslo-sync version test-version-1.0.0")
}

func TestSettingsShow(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Engine.Username = "elastic"
	settings.Engine.Password = "changeme-please"
	settings.Events.NatsURL = "nats://localhost:4222"
	setupServices(t, &Services{Settings: &mockSettings{settings: settings}})

	stdout, _, err := execute("settings", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Addresses: http://localhost:9200")
	assert.Contains(t, stdout, "Password: chan...ease")
	assert.NotContains(t, stdout, "changeme-please")
	assert.Contains(t, stdout, "Subject: oslo.sync.runs")
	assert.Contains(t, stdout, "Address: (disabled)")
	assert.Contains(t, stdout, "Configuration is valid.")
}

func TestSettingsShow_Invalid(t *testing.T) {
	setupServices(t, &Services{Settings: &mockSettings{
		settings:    domain.DefaultAppSettings(),
		validateErr: errors.New("invalid engine address"),
	}})

	stdout, _, err := execute("settings")
	require.NoError(t, err)
	assert.Contains(t, stdout, "invalid engine address")
}

func TestSettingsEngine_UpdatesOnlyGivenFlags(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Engine.Username = "elastic"
	mock := &mockSettings{settings: settings}
	setupServices(t, &Services{Settings: mock})

	_, _, err := execute("settings", "engine", "--url", "https://es.example.org:9200", "--insecure")
	require.NoError(t, err)
	require.NotNil(t, mock.saved)
	assert.Equal(t, []string{"https://es.example.org:9200"}, mock.saved.Addresses)
	assert.True(t, mock.saved.InsecureSkipVerify)
	assert.Equal(t, "elastic", mock.saved.Username)
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "****"},
		{"abc123", "****"},
		{"12345678", "****"},
		{"sk-1234567890abcdef", "sk-1...cdef"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, maskSecret(tt.input), tt.input)
	}
}
