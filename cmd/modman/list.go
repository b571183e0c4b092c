package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/mrkline/modman/internal/core"
	"github.com/spf13/cobra"
)

var (
	listFiles  bool
	listReadme bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List active mods",
	Long: `list prints every currently active mod's source identifier and
version. Use --files to also print each mod's installed file paths, and
--readme to print its stored README text.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listFiles, "files", false, "also print each mod's file paths")
	listCmd.Flags().BoolVar(&listReadme, "readme", false, "also print each mod's README text")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	svc := core.NewService(cwd)

	profile, err := svc.List()
	if err != nil {
		return err
	}

	if len(profile.Mods) == 0 {
		fmt.Println("No active mods.")
		return nil
	}

	fmt.Printf("Root: %s\n\n", profile.RootDirectory)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tVERSION\tFILES")
	for _, m := range profile.Mods {
		fmt.Fprintf(w, "%s\t%s\t%d\n", m.SourceID, m.Version, len(m.Files))
	}
	w.Flush()

	if !listFiles && !listReadme {
		return nil
	}

	for _, m := range profile.Mods {
		fmt.Printf("\n%s:\n", m.SourceID)
		if listFiles {
			for _, p := range m.SortedPaths() {
				fmt.Printf("  %s\n", p)
			}
		}
		if listReadme {
			fmt.Printf("  --- README ---\n%s\n", m.Readme)
		}
	}

	return nil
}
