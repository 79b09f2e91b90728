// ABOUTME: Tests for dashboard composition.
// ABOUTME: Checks synthetic fallback, reference deltas, and blood pressure display.
package dashboard

import (
	"testing"
	"time"

	"github.com/harperreed/healthtrack/internal/models"
	"github.com/harperreed/healthtrack/internal/synthetic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// midpoints makes every sample land on its band's mean.
func midpoints() *synthetic.Generator {
	vals := []float64{0.5, 0.25}
	i := 0
	return synthetic.New(synthetic.WithUniform(func() float64 {
		v := vals[i%len(vals)]
		i++
		return v
	}))
}

func record(created time.Time, set map[models.Field]float64) models.HealthRecord {
	r := models.HealthRecord{ID: created.Format(time.RFC3339), UserID: "u", CreatedAt: created}
	for f, v := range set {
		r.Set(f, v)
	}
	return r
}

func TestBuildFallsBackToSynthetic(t *testing.T) {
	now := time.Date(2025, 3, 31, 9, 0, 0, 0, time.UTC)
	v := BuildWith(midpoints(), nil, now)

	require.True(t, v.Synthetic)
	require.Len(t, v.Records, synthetic.Days)
	for _, r := range v.Records {
		assert.Equal(t, PlaceholderUser, r.UserID)
		assert.True(t, r.Synthetic)
	}

	// Any seven consecutive days hold exactly one weekend.
	assert.Equal(t, 72.0, v.Summary.AverageHeartRate)
	assert.Equal(t, 61000.0, v.Summary.TotalSteps)
	assert.Equal(t, 8714.0, v.Summary.AverageSteps)
	assert.Equal(t, 7.8, v.Summary.AverageSleep)
	assert.Equal(t, 70.5, v.Summary.AverageWeight)

	assert.Equal(t, Changes{
		HeartRate:    -4,
		BloodGlucose: 5,
		Weight:       -1,
		WeeklySteps:  17,
		Sleep:        8,
	}, v.Changes)
	assert.Equal(t, "120/80", v.BloodPressure)
}

func TestBuildUsesRealRecords(t *testing.T) {
	now := time.Now()
	records := []models.HealthRecord{
		record(now, map[models.Field]float64{
			models.FieldHeartRate:              90,
			models.FieldBloodPressureSystolic:  131,
			models.FieldBloodPressureDiastolic: 85.5,
		}),
		record(now.Add(-time.Hour), map[models.Field]float64{
			models.FieldHeartRate: 60,
		}),
	}

	v := Build(records, now)
	assert.False(t, v.Synthetic)
	assert.Len(t, v.Records, 2)
	assert.Equal(t, 75.0, v.Summary.AverageHeartRate)
	assert.Equal(t, 0, v.Changes.HeartRate)
	assert.Equal(t, "131/85.5", v.BloodPressure)

	// Missing steps count as zero.
	assert.Equal(t, -100, v.Changes.WeeklySteps)
}

func TestBuildDoesNotAliasInput(t *testing.T) {
	records := []models.HealthRecord{record(time.Now(), map[models.Field]float64{models.FieldWeight: 70})}
	v := Build(records, time.Now())
	v.Records[0].Set(models.FieldWeight, 1)
	assert.Equal(t, 70.0, records[0].Value(models.FieldWeight))
}

func TestBloodPressureDefault(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		records []models.HealthRecord
	}{
		{name: "no records"},
		{name: "missing diastolic", records: []models.HealthRecord{
			record(now, map[models.Field]float64{models.FieldBloodPressureSystolic: 120}),
		}},
		{name: "zero systolic", records: []models.HealthRecord{
			record(now, map[models.Field]float64{
				models.FieldBloodPressureSystolic:  0,
				models.FieldBloodPressureDiastolic: 70,
			}),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, DefaultBloodPressure, BloodPressure(tt.records))
		})
	}
}

func TestTrendIsChronological(t *testing.T) {
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	records := []models.HealthRecord{
		record(base.AddDate(0, 0, 2), map[models.Field]float64{models.FieldSteps: 9000}),
		record(base.AddDate(0, 0, 1), map[models.Field]float64{models.FieldHeartRate: 70}),
		record(base, map[models.Field]float64{models.FieldSteps: 7000}),
	}

	points := Trend(records, models.FieldSteps)
	require.Len(t, points, 3)
	assert.Equal(t, "Mar 10", points[0].Label)
	assert.Equal(t, 7000.0, *points[0].Value)
	assert.Nil(t, points[1].Value)
	assert.Equal(t, "Mar 12", points[2].Label)
	assert.Equal(t, 9000.0, *points[2].Value)
}
