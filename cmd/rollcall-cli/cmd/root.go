package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rollcall-cli",
	Short: "Rollcall CLI tool",
	Long: `Rollcall CLI is a command-line companion for the Rollcall server.

Available commands:
  seed     Load the demo roster into the configured store
  watch    Follow student change events and show desktop-style notifications

Use "rollcall-cli [command] --help" for more information about a specific command.`,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
