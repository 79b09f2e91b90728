// ABOUTME: Synthetic health data used when a user has no real records.
// ABOUTME: Draws bounded normal samples around physiological baselines.
package synthetic

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/healthtrack/internal/models"
)

const (
	// Days is the length of a generated series.
	Days = 30
	// Variance is the half-width of each baseline band as a fraction.
	Variance = 0.1
)

// Baseline anchors one field for a healthy adult.
type Baseline struct {
	Field    models.Field
	Value    float64
	Decimals int
}

// Baselines are the values every synthetic day varies around.
var Baselines = []Baseline{
	{models.FieldHeartRate, 72, 0},
	{models.FieldBloodPressureSystolic, 120, 0},
	{models.FieldBloodPressureDiastolic, 80, 0},
	{models.FieldBloodGlucose, 100, 0},
	{models.FieldWeight, 70.5, 1},
	{models.FieldSteps, 8000, 0},
	{models.FieldSleepHours, 7.5, 1},
}

// Band is a closed interval a sample is clamped into.
type Band struct {
	Min      float64
	Max      float64
	Decimals int
}

// BandFor returns the ±Variance band around a baseline.
func BandFor(b Baseline) Band {
	return Band{
		Min:      b.Value * (1 - Variance),
		Max:      b.Value * (1 + Variance),
		Decimals: b.Decimals,
	}
}

// Weekend overrides replace the baseline bands on Saturday and Sunday.
var (
	WeekendSteps = Band{Min: 9000, Max: 12000}
	WeekendSleep = Band{Min: 8, Max: 9, Decimals: 1}
)

// Generator produces synthetic records. It holds no mutable state.
type Generator struct {
	uniform func() float64
	newID   func() string
}

// Option configures a Generator.
type Option func(*Generator)

// WithUniform sets the source of uniform samples in [0,1).
func WithUniform(f func() float64) Option {
	return func(g *Generator) {
		g.uniform = f
	}
}

// WithIDFunc sets the record ID generator.
func WithIDFunc(f func() string) Option {
	return func(g *Generator) {
		g.newID = f
	}
}

// New creates a Generator. The default uniform source is safe for
// concurrent use.
func New(opts ...Option) *Generator {
	g := &Generator{
		uniform: rand.Float64,
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Sample draws from a normal distribution centered in the band with a
// standard deviation of a sixth of its width, then clamps and rounds.
func (g *Generator) Sample(b Band) float64 {
	u1 := g.uniform()
	u2 := g.uniform()
	if u1 <= 0 {
		u1 = math.SmallestNonzeroFloat64
	}
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

	mean := (b.Max + b.Min) / 2
	stdDev := (b.Max - b.Min) / 6
	v := z*stdDev + mean
	v = math.Min(math.Max(v, b.Min), b.Max)

	// Rounding must not carry a clamped value back out of the band.
	m := math.Pow(10, float64(b.Decimals))
	r := math.Round(v*m) / m
	switch {
	case r > b.Max:
		r = math.Floor(b.Max*m) / m
	case r < b.Min:
		r = math.Ceil(b.Min*m) / m
	}
	return r
}

// Day generates the readings for a single calendar day.
func (g *Generator) Day(day time.Time) models.Reading {
	var r models.Reading
	for _, b := range Baselines {
		r.Set(b.Field, g.Sample(BandFor(b)))
	}
	if isWeekend(day) {
		r.Set(models.FieldSteps, g.Sample(WeekendSteps))
		r.Set(models.FieldSleepHours, g.Sample(WeekendSleep))
	}
	return r
}

// Series returns Days records ending at now, oldest first. Every record is
// tagged Synthetic.
func (g *Generator) Series(userID string, now time.Time) []models.HealthRecord {
	out := make([]models.HealthRecord, 0, Days)
	for i := Days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		out = append(out, models.HealthRecord{
			ID:        g.newID(),
			UserID:    userID,
			CreatedAt: day,
			Reading:   g.Day(day),
			Synthetic: true,
		})
	}
	return out
}

var defaultGenerator = New()

// Series generates a series with the default generator.
func Series(userID string, now time.Time) []models.HealthRecord {
	return defaultGenerator.Series(userID, now)
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
