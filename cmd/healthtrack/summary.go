// ABOUTME: CLI command for the weekly health dashboard.
// ABOUTME: Prints averages, reference changes, blood pressure, and trends.
package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/harperreed/healthtrack/internal/app"
	"github.com/harperreed/healthtrack/internal/dashboard"
	"github.com/harperreed/healthtrack/internal/models"
	"github.com/spf13/cobra"
)

var (
	summaryJSON  bool
	summaryTrend string
)

var summaryCmd = &cobra.Command{
	Use:     "summary",
	Aliases: []string{"dashboard"},
	Short:   "Show the weekly summary",
	Long: `Show averages over your latest seven records, with the percent change
against reference values for a healthy adult.

When you have no records yet, the summary is computed from a month of
sample data so you can see what the dashboard looks like.

EXAMPLES:

  healthtrack summary
  healthtrack summary --trend weight
  healthtrack summary --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if summaryTrend != "" && !models.IsValidField(summaryTrend) {
			return fmt.Errorf("unknown field: %s", summaryTrend)
		}

		ov, err := appState.Overview(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to build summary: %w", err)
		}

		out := cmd.OutOrStdout()
		if summaryJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(ov)
		}

		printOverview(out, ov)
		if summaryTrend != "" {
			printTrend(out, dashboard.Trend(ov.Records, models.Field(summaryTrend)), models.Field(summaryTrend))
		}
		return nil
	},
}

func printOverview(w io.Writer, ov *app.Overview) {
	title := "Health summary"
	if ov.Profile != nil && ov.Profile.FullName != nil && *ov.Profile.FullName != "" {
		title += " for " + *ov.Profile.FullName
	}
	bold.Fprintln(w, title)
	if ov.Synthetic {
		warn(w, "No readings yet: showing sample data")
	}
	fmt.Fprintln(w)

	s, c := ov.Summary, ov.Changes
	printStat(w, "Heart Rate", fmt.Sprintf("%g bpm", s.AverageHeartRate), &c.HeartRate)
	printStat(w, "Blood Pressure", ov.BloodPressure, nil)
	printStat(w, "Blood Glucose", fmt.Sprintf("%g mg/dL", s.AverageBloodGlucose), &c.BloodGlucose)
	printStat(w, "Weight", fmt.Sprintf("%g kg", s.AverageWeight), &c.Weight)
	printStat(w, "Weekly Steps", fmt.Sprintf("%.0f", s.TotalSteps), &c.WeeklySteps)
	printStat(w, "Avg. Sleep", fmt.Sprintf("%g hrs", s.AverageSleep), &c.Sleep)
}

func printStat(w io.Writer, label, value string, change *int) {
	line := fmt.Sprintf("  %s %s", padRight(label, 16), padRight(value, 14))
	if change == nil {
		fmt.Fprintln(w, line)
		return
	}
	delta := fmt.Sprintf("%+d%%", *change)
	switch {
	case *change > 0:
		delta = green.Sprint(delta)
	case *change < 0:
		delta = red.Sprint(delta)
	default:
		delta = faint.Sprint(delta)
	}
	fmt.Fprintf(w, "%s %s\n", line, delta)
}

func printTrend(w io.Writer, points []dashboard.Point, f models.Field) {
	fmt.Fprintln(w)
	bold.Fprintf(w, "%s trend\n", f)
	for _, p := range points {
		value := faint.Sprint("-")
		if p.Value != nil {
			value = fmt.Sprintf("%g %s", *p.Value, models.FieldUnits[f])
		}
		fmt.Fprintf(w, "  %s %s\n", padRight(p.Label, 8), value)
	}
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "output JSON")
	summaryCmd.Flags().StringVarP(&summaryTrend, "trend", "t", "", "also show one field over time")
	rootCmd.AddCommand(summaryCmd)
}
