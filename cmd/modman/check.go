package main

import (
	"fmt"
	"os"

	"github.com/mrkline/modman/internal/core"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify recorded digests against the target and backup files",
	Long: `check walks the profile and verifies every recorded digest against the
live target and backup files, printing any deviation it finds. It never
mutates anything; exit code is nonzero if any deviation is found.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	svc := core.NewService(cwd)

	deviations, err := svc.Check()
	if err != nil {
		return err
	}

	if len(deviations) == 0 {
		fmt.Println(colorGreen("No deviations found."))
		return nil
	}

	for _, d := range deviations {
		fmt.Println(formatDeviation(d))
	}
	fmt.Printf("%d deviation(s) found.\n", len(deviations))

	return &core.IntegrityDeviationError{Deviations: deviations}
}

func formatDeviation(d core.Deviation) string {
	switch d.Kind {
	case core.StaleJournal:
		return colorYellow("stale journal: a prior run did not complete; run 'modman repair'")
	case core.MissingTarget:
		return fmt.Sprintf("%s %s/%s: target file is missing", colorRed("missing target"), d.SourceID, d.Path)
	case core.TargetModified:
		return fmt.Sprintf("%s %s/%s: expected %s, found %s", colorRed("target modified"), d.SourceID, d.Path, d.Expected, d.Actual)
	case core.MissingBackup:
		return fmt.Sprintf("%s %s/%s: backup file is missing", colorRed("missing backup"), d.SourceID, d.Path)
	case core.BackupModified:
		return fmt.Sprintf("%s %s/%s: expected %s, found %s", colorRed("backup modified"), d.SourceID, d.Path, d.Expected, d.Actual)
	case core.UnexpectedBackup:
		return fmt.Sprintf("%s %s/%s: a backup exists for a file that was newly added", colorRed("unexpected backup"), d.SourceID, d.Path)
	case core.TargetUnreadable:
		return fmt.Sprintf("%s %s/%s: %v", colorRed("target unreadable"), d.SourceID, d.Path, d.Err)
	default:
		return fmt.Sprintf("%s %s/%s", d.Kind, d.SourceID, d.Path)
	}
}
