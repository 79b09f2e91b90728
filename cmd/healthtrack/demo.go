// ABOUTME: CLI command that previews a month of synthetic readings.
// ABOUTME: Runs offline; nothing is read from or written to storage.
package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/healthtrack/internal/app"
	"github.com/harperreed/healthtrack/internal/dashboard"
	"github.com/spf13/cobra"
)

var demoJSON bool

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Preview sample data and its summary",
	Long: `Generate 30 days of plausible readings for a healthy adult and show
them with the weekly summary. Weekends get more steps and sleep.

Nothing is saved. Run it again for a different sample.

EXAMPLES:

  healthtrack demo
  healthtrack demo --json > sample.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		view := dashboard.Build(nil, time.Now())
		out := cmd.OutOrStdout()

		if demoJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		}

		for _, rec := range view.Records {
			printReadingLine(out, rec)
		}
		fmt.Fprintln(out)
		printOverview(out, &app.Overview{View: view})
		return nil
	},
}

func init() {
	demoCmd.Flags().BoolVar(&demoJSON, "json", false, "output JSON")
	rootCmd.AddCommand(demoCmd)
}
