package main

import (
	"fmt"
	"os"

	"github.com/mrkline/modman/internal/core"
	"github.com/mrkline/modman/internal/modsource"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:     "add <SOURCE>",
	Aliases: []string{"activate"},
	Short:   "Activate a mod from a directory or .zip source",
	Long: `add installs a mod's files into the target tree recorded by 'init',
backing up whatever was there before. SOURCE is the file name of the
archive or directory to install; it becomes the mod's identifier for a
later 'remove'.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	sourceID := args[0]

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	src, err := modsource.New(sourceID)
	if err != nil {
		return err
	}
	defer src.Close()

	if verbosity > 0 {
		entries, entryErr := src.Entries()
		if entryErr != nil {
			return entryErr
		}
		for _, e := range entries {
			fmt.Printf("  %s\n", e.Path)
		}
	}

	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Activating %s...", sourceID))

	svc := core.NewService(cwd)
	if err := svc.Add(sourceID, src); err != nil {
		spinner.Fail(fmt.Sprintf("Activating %s failed: %v", sourceID, err))
		return err
	}

	spinner.Success(fmt.Sprintf("Activated %s", sourceID))
	return nil
}
