// ABOUTME: CLI command for adding health readings.
// ABOUTME: Each flag sets one field; blood pressure also accepts sys/dia.
package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/harperreed/healthtrack/internal/models"
	"github.com/spf13/cobra"
)

// fieldFlags maps flag names to the fields they set.
var fieldFlags = []struct {
	name  string
	field models.Field
	usage string
}{
	{"heart-rate", models.FieldHeartRate, "heart rate (bpm)"},
	{"systolic", models.FieldBloodPressureSystolic, "systolic blood pressure (mmHg)"},
	{"diastolic", models.FieldBloodPressureDiastolic, "diastolic blood pressure (mmHg)"},
	{"glucose", models.FieldBloodGlucose, "blood glucose (mg/dL)"},
	{"weight", models.FieldWeight, "weight (kg)"},
	{"steps", models.FieldSteps, "step count"},
	{"sleep", models.FieldSleepHours, "hours slept"},
}

var addBP string

var addCmd = &cobra.Command{
	Use:     "add",
	Aliases: []string{"a"},
	Short:   "Add health readings",
	Long: `Record one or more health readings as a single entry.

FIELDS:

  --heart-rate   bpm
  --systolic     mmHg  (or use --bp sys/dia)
  --diastolic    mmHg
  --glucose      mg/dL
  --weight       kg
  --steps        count
  --sleep        hours

The entry is timestamped when it is saved. After saving, the list of
records is reloaded so what you see matches what is stored.

EXAMPLES:

  healthtrack add --weight 71.4
  healthtrack add --bp 118/76 --heart-rate 64
  healthtrack add --steps 10432 --sleep 7.5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var r models.Reading
		for _, ff := range fieldFlags {
			if !cmd.Flags().Changed(ff.name) {
				continue
			}
			v, err := cmd.Flags().GetFloat64(ff.name)
			if err != nil {
				return err
			}
			r.Set(ff.field, v)
		}
		if addBP != "" {
			sys, dia, err := parseBloodPressure(addBP)
			if err != nil {
				return err
			}
			r.Set(models.FieldBloodPressureSystolic, sys)
			r.Set(models.FieldBloodPressureDiastolic, dia)
		}

		snap, err := appState.AddReading(cmd.Context(), r)
		out := cmd.OutOrStdout()
		if err != nil {
			if snap.Stale {
				warn(out, "Saved, but reloading records failed; run 'healthtrack list' to refresh")
			}
			return fmt.Errorf("failed to add reading: %w", err)
		}

		success(out, "Added reading")
		if len(snap.Records) == 0 {
			return nil
		}
		rec := snap.Records[0]
		fmt.Fprintf(out, "  %s %s\n", faint.Sprint(models.ShortID(rec.ID)), formatReading(rec.Reading))
		return nil
	},
}

func parseBloodPressure(s string) (float64, float64, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("blood pressure must be systolic/diastolic, e.g. 120/80")
	}
	sys, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid systolic value: %s", parts[0])
	}
	dia, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid diastolic value: %s", parts[1])
	}
	return sys, dia, nil
}

// formatReading renders the set fields, combining blood pressure.
func formatReading(r models.Reading) string {
	var parts []string
	sys, dia := r.Get(models.FieldBloodPressureSystolic), r.Get(models.FieldBloodPressureDiastolic)
	for _, f := range models.AllFields {
		v := r.Get(f)
		if v == nil {
			continue
		}
		switch {
		case f == models.FieldBloodPressureSystolic && dia != nil:
			parts = append(parts, fmt.Sprintf("bp %g/%g mmHg", *sys, *dia))
		case f == models.FieldBloodPressureDiastolic && sys != nil:
		default:
			parts = append(parts, fmt.Sprintf("%s %g %s", f, *v, models.FieldUnits[f]))
		}
	}
	return strings.Join(parts, ", ")
}

func printReadingLine(w io.Writer, rec models.HealthRecord) {
	fmt.Fprintf(w, "%s %s %s\n",
		faint.Sprint(models.ShortID(rec.ID)),
		faint.Sprint(rec.CreatedAt.Local().Format("2006-01-02 15:04")),
		formatReading(rec.Reading))
}

func init() {
	for _, ff := range fieldFlags {
		addCmd.Flags().Float64(ff.name, 0, ff.usage)
	}
	addCmd.Flags().StringVar(&addBP, "bp", "", "blood pressure as systolic/diastolic")
	rootCmd.AddCommand(addCmd)
}
