// ABOUTME: CLI command for listing health records.
// ABOUTME: Shows the newest records first with an optional limit.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List health records",
	Long: `List your recent health records, newest first.

OUTPUT FORMAT:

  Each line shows: ID  TIMESTAMP  READINGS

  Only the fields recorded in an entry are shown.

EXAMPLES:

  healthtrack list          # Show the last 20 records
  healthtrack list -n 50    # Show the last 50 records
  healthtrack list -n 0     # Show everything`,
	RunE: func(cmd *cobra.Command, args []string) error {
		recs, err := appState.Readings(cmd.Context(), listLimit)
		if err != nil {
			return fmt.Errorf("failed to list records: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(recs) == 0 {
			fmt.Fprintln(out, "No records found.")
			return nil
		}
		for _, rec := range recs {
			printReadingLine(out, rec)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max number of results (0 for all)")
	rootCmd.AddCommand(listCmd)
}
