package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrkline/modman/internal/core"
	"github.com/spf13/cobra"
)

var initRoot string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an empty profile rooted at --root",
	Long: `init creates modman.profile and modman-backup/ in the current
directory, recording --root as the target directory tree that 'add' will
install mods into. It fails if a profile or backup store already exists
here.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initRoot, "root", "", "target directory mods will be installed into")
	_ = initCmd.MarkFlagRequired("root")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	root, err := filepath.Abs(initRoot)
	if err != nil {
		return fmt.Errorf("resolving --root: %w", err)
	}

	svc := core.NewService(cwd)
	if err := svc.Init(root); err != nil {
		return err
	}

	if verbosity > 0 {
		fmt.Printf("Initialized modman profile rooted at %s\n", root)
	}
	fmt.Println(colorGreen("Profile created."))
	return nil
}
