package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent sync runs",
	RunE:  runHistory,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	runs, err := historyService.Runs(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), runs)
	}
	if len(runs) == 0 {
		cmd.Println("No sync runs recorded yet.")
		return nil
	}

	cmd.Println(runsTable(runs))
	return nil
}
