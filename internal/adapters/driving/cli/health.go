package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the search engine is reachable",
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	if synchronizer == nil {
		return errors.New("sync service not configured")
	}
	if err := probe(cmd); err != nil {
		return err
	}
	cmd.Println(okLine("Search engine reachable"))
	return nil
}
