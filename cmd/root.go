package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"standbill_backend/internals/configs"
	"standbill_backend/internals/helpers/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "standbill",
	Short: "Standbill back office: debt ledger and receipt numbering",
	Long: `Standbill keeps the debt ledger of every market stand and issues
gap-free numbered receipts for the payments and expenses recorded against it.

Without a subcommand the HTTP server is started (same as "standbill serve").`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configs.LoadEnv()
		if err := logger.Setup(configs.LogConfigFromEnv()); err != nil {
			return fmt.Errorf("setup logger: %w", err)
		}
		return nil
	},
	RunE: runServe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log := logger.WithComponent("cmd")
		log.Error().Err(err).Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
