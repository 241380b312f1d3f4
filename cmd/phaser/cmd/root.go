// Package cmd implements the phaser command line.
package cmd

import (
	"os"

	"github.com/anggasct/phaser"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "phaser",
	Short: "run randomized traffic-light phase schedulers",
	Long: `phaser toggles traffic lights between red and green on a randomized
cycle and lets vehicles wait for their light to turn green.`,
	Version:      phaser.Version,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
