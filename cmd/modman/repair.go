package main

import (
	"fmt"
	"os"

	"github.com/mrkline/modman/internal/core"
	"github.com/spf13/cobra"
)

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Reverse a partially completed activation",
	Long: `repair observes a stale activation journal and reverses the partial
activation it describes, restoring the target tree to its pre-activation
state. It is a no-op, with an explanatory message, if no journal exists.`,
	Args: cobra.NoArgs,
	RunE: runRepair,
}

func init() {
	rootCmd.AddCommand(repairCmd)
}

func runRepair(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	svc := core.NewService(cwd)

	repaired, err := svc.Repair()
	if err != nil {
		return err
	}

	if !repaired {
		fmt.Println("No journal present; nothing to repair.")
		return nil
	}

	fmt.Println(colorGreen("Repaired interrupted activation."))
	return nil
}
