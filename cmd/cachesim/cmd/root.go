// Package cmd provides the command-line interface for cachesim.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cachesim",
	Short: "cachesim replays memory-access traces through simulated caches.",
	Long: `cachesim replays memory-access traces through a single-level or ` +
		`two-level set-associative LRU cache model and reports hit/miss ` +
		`statistics in text or binary form.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Any .env file in the working directory is loaded into
// the process environment first; the commands themselves take their
// configuration from flags only and read no environment variables.
func Execute() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "cachesim: loading .env: %v\n", err)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
