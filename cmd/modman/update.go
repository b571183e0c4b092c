package main

import (
	"fmt"
	"os"

	"github.com/mrkline/modman/internal/core"
	"github.com/mrkline/modman/internal/modsource"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Reconcile externally-modified target files against active mods",
	Long: `update detects target files whose content has drifted from the
profile, rebases backups to the new content, and reinstalls the mod's
file over it. Every active mod's source must be reachable at its
recorded identifier, and its VERSION.txt must still match the version
recorded at activation time; a mismatch fails the whole update before
any filesystem mutation.`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	svc := core.NewService(cwd)

	spinner, _ := pterm.DefaultSpinner.Start("Updating active mods...")

	resolve := func(sourceID string) (modsource.Source, error) {
		return modsource.New(sourceID)
	}

	if err := svc.Update(resolve); err != nil {
		spinner.Fail(fmt.Sprintf("Update failed: %v", err))
		return err
	}

	spinner.Success("Update complete.")
	return nil
}
