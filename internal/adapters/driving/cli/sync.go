package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync <file>",
	Short: "Insert or update records from a file",
	Long: `Reads records from a JSON, JSON Lines or YAML file and reconciles them
with the collection: records whose URI is not indexed yet are inserted,
records whose URI is already indexed are updated in place.`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{annotationProbe: ""},
	RunE:        runSync,
}

var pushCmd = &cobra.Command{
	Use:   "push <file>",
	Short: "Insert records whose URI is not indexed yet",
	Long: `Reads records from a file, creates the collection if needed and inserts
only records whose URI is not indexed yet. Records that already exist are
skipped and left unchanged; use sync to update them.`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{annotationProbe: ""},
	RunE:        runPush,
}

var (
	syncCollection string
	pushCollection string
)

func init() {
	syncCmd.Flags().StringVarP(&syncCollection, "collection", "c", "terminology",
		"target collection (terminology or application-profiles)")
	pushCmd.Flags().StringVarP(&pushCollection, "collection", "c", "terminology",
		"target collection (terminology or application-profiles)")

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(pushCmd)
}

// batchFunc is Reconcile or Push.
type batchFunc func(ctx context.Context, records []domain.Record, c domain.Collection) (*domain.BatchResult, error)

func runSync(cmd *cobra.Command, args []string) error {
	if synchronizer == nil {
		return errors.New("sync service not configured")
	}
	return runBatch(cmd, args[0], syncCollection, synchronizer.Reconcile)
}

func runPush(cmd *cobra.Command, args []string) error {
	if synchronizer == nil {
		return errors.New("sync service not configured")
	}
	return runBatch(cmd, args[0], pushCollection, synchronizer.Push)
}

func runBatch(cmd *cobra.Command, path, collectionName string, apply batchFunc) error {
	if recordLoader == nil {
		return errors.New("record loader not configured")
	}

	collection, err := domain.LookupCollection(collectionName)
	if err != nil {
		return err
	}

	records, err := recordLoader.Load(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}

	result, err := apply(cmd.Context(), records, collection)
	if result != nil {
		if perr := printBatch(cmd, collection, len(records), result); perr != nil {
			return perr
		}
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	if !result.OK() {
		return fmt.Errorf("%d of %d records failed", len(result.Failed), len(records))
	}
	return nil
}
