// Package cmd provides the CLI commands for the storefront API.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "storefront-api",
	Short: "Storefront API - accounts, catalog and product tooling",
	Long: `storefront-api serves customer accounts, a cached product catalog backed by
the commerce platform, and generative tooling for product listings.

Configuration is read from environment variables; a .env file in the working
directory is loaded first when present.

Commands:
  serve          Start the HTTP server (default)
  hash-password  Hash a password with the configured algorithm
  version        Print version information`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile == "" {
			return nil
		}
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "additional env file to load before reading configuration")
}
