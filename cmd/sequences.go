package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	database "standbill_backend/internals/databases"
	"standbill_backend/internals/features/finance/sequences/service"
)

var sequencesCmd = &cobra.Command{
	Use:   "sequences",
	Short: "Show receipt number sequences, or move one forward",
	Example: `  # print every sequence
  standbill sequences

  # continue the paper receipt book at 500
  standbill sequences --name receipt-income --start-from 500`,
	RunE: runSequences,
}

func init() {
	rootCmd.AddCommand(sequencesCmd)
	sequencesCmd.Flags().String("name", "", "Sequence to configure")
	sequencesCmd.Flags().Int64("start-from", 0, "New starting number (only forward for used sequences)")
}

func runSequences(cmd *cobra.Command, args []string) error {
	if err := database.ConnectDB(); err != nil {
		return err
	}
	defer database.Close()

	alloc := service.NewAllocator(database.DB)
	ctx := cmd.Context()

	name, _ := cmd.Flags().GetString("name")
	startFrom, _ := cmd.Flags().GetInt64("start-from")
	if name != "" {
		if startFrom < 1 {
			return fmt.Errorf("--start-from is required with --name")
		}
		if _, err := alloc.Configure(ctx, name, startFrom); err != nil {
			return err
		}
	}

	rows, err := alloc.List(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCURRENT\tSTART\tNEXT")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", r.NumberSequenceName, r.NumberSequenceCurrentValue, r.NumberSequenceStartFrom, r.Next())
	}
	return w.Flush()
}
