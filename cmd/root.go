// Package cmd implements the partwatch command line.
package cmd

import (
	"sjsage522/partwatch/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "partwatch",
	Short: "Watch rrr.lt for cheap spare parts",
	Long:  "Polls the rrr.lt search page for tracked part numbers and sends a Telegram message when a new offer at or below the price limit appears.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env file is fine; the environment may be set directly.
		_ = godotenv.Load(envFile)
		logger.Init()
	},
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "environment file to load")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
