// ABOUTME: Composes the dashboard view from a record collection.
// ABOUTME: Falls back to synthetic data, then adds weekly summary and deltas.
package dashboard

import (
	"sort"
	"strconv"
	"time"

	"github.com/harperreed/healthtrack/internal/models"
	"github.com/harperreed/healthtrack/internal/summary"
	"github.com/harperreed/healthtrack/internal/synthetic"
)

// PlaceholderUser owns synthetic records shown when there is no real data.
const PlaceholderUser = "demo-user"

// DefaultBloodPressure is shown when the latest record lacks either reading.
const DefaultBloodPressure = "120/80"

// Reference values the weekly figures are compared against.
const (
	RefHeartRate    = 75
	RefBloodGlucose = 95
	RefWeight       = 71.2
	RefWeeklySteps  = 52000
	RefSleep        = 7.2
)

// Changes holds whole-number percent changes against the reference values.
type Changes struct {
	HeartRate    int `json:"heartRate"`
	BloodGlucose int `json:"bloodGlucose"`
	Weight       int `json:"weight"`
	WeeklySteps  int `json:"weeklySteps"`
	Sleep        int `json:"sleep"`
}

// View is everything the dashboard displays.
type View struct {
	Records       []models.HealthRecord `json:"records"`
	Synthetic     bool                  `json:"synthetic"`
	Summary       models.WeeklySummary  `json:"summary"`
	Changes       Changes               `json:"changes"`
	BloodPressure string                `json:"bloodPressure"`
}

// Build composes a View. Records are used as given; when there are none a
// synthetic series for PlaceholderUser is shown instead.
func Build(records []models.HealthRecord, now time.Time) View {
	return build(records, func() []models.HealthRecord {
		return synthetic.Series(PlaceholderUser, now)
	})
}

// BuildWith is Build with an explicit generator for the fallback series.
func BuildWith(g *synthetic.Generator, records []models.HealthRecord, now time.Time) View {
	return build(records, func() []models.HealthRecord {
		return g.Series(PlaceholderUser, now)
	})
}

func build(records []models.HealthRecord, fallback func() []models.HealthRecord) View {
	v := View{Records: models.CloneRecords(records)}
	if len(v.Records) == 0 {
		v.Records = fallback()
		v.Synthetic = true
	}

	v.Summary = summary.Weekly(v.Records)
	v.Changes = Changes{
		HeartRate:    summary.PercentChange(v.Summary.AverageHeartRate, RefHeartRate),
		BloodGlucose: summary.PercentChange(v.Summary.AverageBloodGlucose, RefBloodGlucose),
		Weight:       summary.PercentChange(v.Summary.AverageWeight, RefWeight),
		WeeklySteps:  summary.PercentChange(v.Summary.TotalSteps, RefWeeklySteps),
		Sleep:        summary.PercentChange(v.Summary.AverageSleep, RefSleep),
	}
	v.BloodPressure = BloodPressure(v.Records)
	return v
}

// BloodPressure renders the first record's reading as "sys/dia". A missing
// or zero value on either side yields DefaultBloodPressure.
func BloodPressure(records []models.HealthRecord) string {
	if len(records) == 0 {
		return DefaultBloodPressure
	}
	sys := records[0].Value(models.FieldBloodPressureSystolic)
	dia := records[0].Value(models.FieldBloodPressureDiastolic)
	if sys == 0 || dia == 0 {
		return DefaultBloodPressure
	}
	return formatNumber(sys) + "/" + formatNumber(dia)
}

// Point is one value in a trend series. Value is nil where the record has no
// reading for the field.
type Point struct {
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
	Value *float64  `json:"value"`
}

// Trend returns one field's values in chronological order, labelled by day.
func Trend(records []models.HealthRecord, f models.Field) []Point {
	sorted := models.CloneRecords(records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	points := make([]Point, 0, len(sorted))
	for _, r := range sorted {
		p := Point{Date: r.CreatedAt, Label: r.CreatedAt.Format("Jan 2")}
		if v := r.Get(f); v != nil && *v != 0 {
			p.Value = v
		}
		points = append(points, p)
	}
	return points
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
