// ABOUTME: Weekly aggregation over health records.
// ABOUTME: Pure functions: weekly means/sums and period-over-period deltas.
package summary

import (
	"math"

	"github.com/harperreed/healthtrack/internal/models"
)

// WindowSize is the number of records a weekly summary covers.
const WindowSize = 7

// Weekly summarizes the first WindowSize records as given. Callers pass
// records newest first. A missing field counts as zero in its average, so
// the result is always dense.
func Weekly(records []models.HealthRecord) models.WeeklySummary {
	window := records
	if len(window) > WindowSize {
		window = window[:WindowSize]
	}
	if len(window) == 0 {
		return models.WeeklySummary{}
	}

	return models.WeeklySummary{
		AverageHeartRate:    roundHalfUp(mean(window, models.FieldHeartRate)),
		AverageSteps:        roundHalfUp(mean(window, models.FieldSteps)),
		AverageSleep:        roundTo(mean(window, models.FieldSleepHours), 1),
		AverageBloodGlucose: roundHalfUp(mean(window, models.FieldBloodGlucose)),
		TotalSteps:          sum(window, models.FieldSteps),
		AverageWeight:       roundTo(mean(window, models.FieldWeight), 1),
	}
}

// PercentChange returns the whole-percent change from previous to current.
// A zero previous value yields zero.
func PercentChange(current, previous float64) int {
	if previous == 0 {
		return 0
	}
	return int(roundHalfUp((current - previous) / previous * 100))
}

func sum(records []models.HealthRecord, f models.Field) float64 {
	var total float64
	for _, r := range records {
		total += r.Value(f)
	}
	return total
}

func mean(records []models.HealthRecord, f models.Field) float64 {
	return sum(records, f) / float64(len(records))
}

// roundHalfUp rounds to the nearest integer with halves going toward +Inf.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func roundTo(v float64, decimals int) float64 {
	m := math.Pow(10, float64(decimals))
	return math.Round(v*m) / m
}
