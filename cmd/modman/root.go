package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"

	verbosity int
	noColor   bool
)

// rootCmd is the base command when modman is invoked without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "modman",
	Short: "A content-hashed, journalled mod activation manager",
	Long: `modman installs collections of replacement files ("mods") into a target
directory tree and can later undo those installations, restoring the
original files. It tracks the content of every file it touches by
cryptographic digest so external changes to the target are detected
rather than silently clobbered, and interrupted installs can be
recovered with 'modman repair'.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase output verbosity (repeatable)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// colorEnabled reports whether ANSI color should be used, respecting
// --no-color and the NO_COLOR convention (https://no-color.org).
func colorEnabled() bool {
	if noColor {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return true
}

const (
	ansiReset  = "\033[0m"
	ansiGreen  = "\033[32m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
)

func colorGreen(s string) string {
	if !colorEnabled() {
		return s
	}
	return ansiGreen + s + ansiReset
}

func colorRed(s string) string {
	if !colorEnabled() {
		return s
	}
	return ansiRed + s + ansiReset
}

func colorYellow(s string) string {
	if !colorEnabled() {
		return s
	}
	return ansiYellow + s + ansiReset
}

// Execute runs the root command, printing a single top-line error message
// and exiting nonzero on failure. No stack traces in normal output.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Stderr.WriteString(colorRed("Error: " + err.Error() + "\n"))
		os.Exit(1)
	}
}
