package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "oslo-sync", rootCmd.Use)
}

func TestRootCmd_GlobalFlags(t *testing.T) {
	for _, name := range []string{"config", "verbose", "dry-run", "json"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"health", "setup", "sync", "push", "watch", "history", "settings", "version"} {
		assert.True(t, names[want], want)
	}
}

func TestProbe_FailurePrintsFatalBanner(t *testing.T) {
	setupServices(t, &Services{
		Synchronizer: &mockSynchronizer{healthErr: errors.New("engine ping: connection refused")},
		Loader:       &mockLoader{},
	})

	_, stderr, err := execute("sync", "records.json")
	require.ErrorIs(t, err, errFatal)
	assert.Contains(t, stderr, "✗ FATAL: search engine unreachable")
	assert.Contains(t, stderr, "connection refused")
}

func TestPreRun_UsesWiring(t *testing.T) {
	setupServices(t, nil)

	syncer := &mockSynchronizer{}
	var got Options
	prevWiring := wiring
	wiring = func(_ context.Context, opts Options) (*Services, func(), error) {
		got = opts
		return &Services{Synchronizer: syncer}, func() {}, nil
	}
	t.Cleanup(func() {
		wiring = prevWiring
		dryRun = false
		cleanup = nil
	})

	stdout, _, err := execute("health", "--dry-run")
	require.NoError(t, err)
	assert.True(t, got.DryRun)
	assert.Contains(t, stdout, "Search engine reachable")
	assert.NotNil(t, cleanup)
}

func TestPreRun_WiringError(t *testing.T) {
	setupServices(t, nil)

	prevWiring := wiring
	wiring = func(context.Context, Options) (*Services, func(), error) {
		return nil, nil, errors.New("bad config")
	}
	t.Cleanup(func() { wiring = prevWiring })

	_, _, err := execute("health")
	assert.EqualError(t, err, "bad config")
}

func TestSetServices_Nil(t *testing.T) {
	setupServices(t, &Services{Synchronizer: &mockSynchronizer{}})
	SetServices(nil)
	assert.NotNil(t, synchronizer)
}
