package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the terminology and application-profile collections",
	Long: `Ensures that both well-known collections exist, creating any that are
missing. Running it again on an initialised engine changes nothing.`,
	Annotations: map[string]string{annotationProbe: ""},
	RunE:        runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	if synchronizer == nil {
		return errors.New("sync service not configured")
	}

	if err := synchronizer.Setup(cmd.Context()); err != nil {
		return fmt.Errorf("setup incomplete: %w", err)
	}

	for _, c := range domain.KnownCollections() {
		cmd.Println(okLine(c.Name))
	}
	return nil
}
