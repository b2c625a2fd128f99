package cmd

import (
	"github.com/spf13/cobra"

	database "standbill_backend/internals/databases"
	"standbill_backend/internals/seeds"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed default sequences and the starter concept catalog",
	Example: `  standbill seed --dir internals/seeds`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")

		if err := database.ConnectDB(); err != nil {
			return err
		}
		defer database.Close()
		return seeds.RunAllSeeds(database.DB, dir)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().String("dir", "internals/seeds", "Directory holding the seed JSON files")
}
