package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
	"github.com/custodia-labs/oslo-sync/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-sync a records file whenever it changes",
	Long: `Runs a full sync of the file, then watches it and runs the sync again
after each change. Bursts of writes are coalesced. Stop with Ctrl+C.`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{annotationProbe: ""},
	RunE:        runWatch,
}

var (
	watchCollection string
	watchDebounce   time.Duration
)

func init() {
	watchCmd.Flags().StringVarP(&watchCollection, "collection", "c", "terminology",
		"target collection (terminology or application-profiles)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond,
		"quiet period after a change before syncing")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if synchronizer == nil {
		return errors.New("sync service not configured")
	}
	if recordLoader == nil {
		return errors.New("record loader not configured")
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	collection, err := domain.LookupCollection(watchCollection)
	if err != nil {
		return err
	}

	resync := func(context.Context) {
		if err := runBatch(cmd, path, watchCollection, synchronizer.Reconcile); err != nil {
			logger.Warn("Sync of %s failed: %v", filepath.Base(path), err)
		}
	}

	resync(cmd.Context())
	cmd.Printf("Watching %s for changes (collection %s)...\n", path, collection.Name)

	return watchFile(cmd.Context(), path, watchDebounce, resync)
}

// watchFile calls onChange after each burst of writes to path, until ctx is done.
// The parent directory is watched so editors that replace the file are seen.
func watchFile(ctx context.Context, path string, debounce time.Duration, onChange func(context.Context)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("Change detected: %s", ev)
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(debounce)
			pending = true

		case <-timer.C:
			pending = false
			onChange(ctx)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}
