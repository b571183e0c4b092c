package main

import (
	"fmt"
	"os"

	"github.com/mrkline/modman/internal/core"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:     "remove <SOURCE>...",
	Aliases: []string{"deactivate"},
	Short:   "Reverse activation for one or more mods",
	Long: `remove reverses activation for each SOURCE: files still matching the
mod's recorded content are restored from backup (or deleted, if they were
newly added); files whose content has since drifted are left untouched.
Backups and the manifest are dropped in all cases.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	svc := core.NewService(cwd)

	for _, sourceID := range args {
		spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Removing %s...", sourceID))
		if err := svc.Remove(sourceID); err != nil {
			spinner.Fail(fmt.Sprintf("Removing %s failed: %v", sourceID, err))
			return err
		}
		spinner.Success(fmt.Sprintf("Removed %s", sourceID))
	}

	return nil
}
