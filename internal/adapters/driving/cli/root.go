// Package cli is the command-line surface of oslo-sync.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/oslo-sync/internal/core/ports/driven"
	"github.com/custodia-labs/oslo-sync/internal/core/ports/driving"
	"github.com/custodia-labs/oslo-sync/internal/logger"
)

// version is set by Execute from build flags.
var version = "dev"

// Services used by commands. Set through SetServices or the wiring hook.
var (
	synchronizer    driving.Synchronizer
	historyService  driving.HistoryService
	settingsService driving.SettingsService
	recordLoader    driven.RecordLoader
)

// Global flags.
var (
	configDir  string
	verbose    bool
	dryRun     bool
	jsonOutput bool
)

// annotationProbe marks commands that need a reachable engine before running.
const annotationProbe = "probe"

// errFatal is returned after the fatal banner has been printed.
var errFatal = errors.New("search engine unreachable")

// Options are the global flags the wiring depends on.
type Options struct {
	// ConfigDir overrides the configuration directory.
	ConfigDir string

	// DryRun swaps the search engine for an in-memory one.
	DryRun bool
}

// Services are the ports the commands drive.
type Services struct {
	Synchronizer driving.Synchronizer
	History      driving.HistoryService
	Settings     driving.SettingsService
	Loader       driven.RecordLoader
}

// Wiring builds services once flags are parsed. The returned cleanup
// releases everything it opened.
type Wiring func(ctx context.Context, opts Options) (*Services, func(), error)

var (
	wiring  Wiring
	cleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "oslo-sync",
	Short: "Synchronise OSLO terminology and application profiles into a search index",
	Long: `oslo-sync keeps a search index in line with batches of terminology and
application-profile records. Each URI is held by at most one document:
unseen URIs are inserted, known URIs are updated in place.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: preRun,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "configuration directory (default ~/.oslo-sync)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "use an in-memory search engine")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

// SetServices installs the services commands use.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	synchronizer = s.Synchronizer
	historyService = s.History
	settingsService = s.Settings
	recordLoader = s.Loader
}

// Execute runs the root command and returns the process exit code.
func Execute(buildVersion string, wire Wiring) int {
	if buildVersion != "" {
		version = buildVersion
	}
	wiring = wire

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
	if err != nil {
		if !errors.Is(err, errFatal) {
			rootCmd.PrintErrln(errorLine(err.Error()))
		}
		return 1
	}
	return 0
}

func preRun(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd == versionCmd {
		return nil
	}

	if wiring != nil && synchronizer == nil {
		services, release, err := wiring(cmd.Context(), Options{ConfigDir: configDir, DryRun: dryRun})
		if err != nil {
			return err
		}
		SetServices(services)
		cleanup = release
	}

	if _, ok := cmd.Annotations[annotationProbe]; ok {
		return probe(cmd)
	}
	return nil
}

// probe runs the liveness check and prints the fatal banner on failure.
func probe(cmd *cobra.Command) error {
	if synchronizer == nil {
		return errors.New("sync service not configured")
	}
	if err := synchronizer.HealthCheck(cmd.Context()); err != nil {
		cmd.PrintErrln(fatalLine("search engine unreachable"))
		cmd.PrintErrln("  " + err.Error())
		return errFatal
	}
	return nil
}
