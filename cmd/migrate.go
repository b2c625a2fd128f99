package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	database "standbill_backend/internals/databases"
	"standbill_backend/internals/helpers/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the ledger tables and seed the receipt sequences",
	Long: `Runs GORM AutoMigrate for every ledger table and inserts the default
receipt-income and receipt-expense sequences when they do not exist yet.
Existing sequence counters are never touched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("migrate")

		if err := database.ConnectDB(); err != nil {
			return err
		}
		defer database.Close()

		if err := database.Migrate(database.DB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info().Int("tables", len(database.Models())).Msg("✅ migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
