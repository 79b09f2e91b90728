// ABOUTME: HealthRecord and Reading models for biometric data.
// ABOUTME: Defines the seven biometric fields, their units, and accessors.
package models

import (
	"time"
)

// Field names one biometric value on a reading.
type Field string

const (
	FieldHeartRate              Field = "heart_rate"
	FieldBloodPressureSystolic  Field = "blood_pressure_systolic"
	FieldBloodPressureDiastolic Field = "blood_pressure_diastolic"
	FieldBloodGlucose           Field = "blood_glucose"
	FieldWeight                 Field = "weight"
	FieldSteps                  Field = "steps"
	FieldSleepHours             Field = "sleep_hours"
)

// FieldUnits maps fields to their display units.
var FieldUnits = map[Field]string{
	FieldHeartRate:              "bpm",
	FieldBloodPressureSystolic:  "mmHg",
	FieldBloodPressureDiastolic: "mmHg",
	FieldBloodGlucose:           "mg/dL",
	FieldWeight:                 "kg",
	FieldSteps:                  "steps",
	FieldSleepHours:             "hours",
}

// AllFields lists every biometric field in display order.
var AllFields = []Field{
	FieldHeartRate,
	FieldBloodPressureSystolic,
	FieldBloodPressureDiastolic,
	FieldBloodGlucose,
	FieldWeight,
	FieldSteps,
	FieldSleepHours,
}

// IsValidField checks if a string names a biometric field.
func IsValidField(s string) bool {
	for _, f := range AllFields {
		if string(f) == s {
			return true
		}
	}
	return false
}

// Reading is a partial set of biometric values. Nil means "not measured".
type Reading struct {
	HeartRate              *float64 `json:"heart_rate,omitempty" yaml:"heart_rate,omitempty"`
	BloodPressureSystolic  *float64 `json:"blood_pressure_systolic,omitempty" yaml:"blood_pressure_systolic,omitempty"`
	BloodPressureDiastolic *float64 `json:"blood_pressure_diastolic,omitempty" yaml:"blood_pressure_diastolic,omitempty"`
	BloodGlucose           *float64 `json:"blood_glucose,omitempty" yaml:"blood_glucose,omitempty"`
	Weight                 *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
	Steps                  *float64 `json:"steps,omitempty" yaml:"steps,omitempty"`
	SleepHours             *float64 `json:"sleep_hours,omitempty" yaml:"sleep_hours,omitempty"`
}

func (r *Reading) slot(f Field) **float64 {
	switch f {
	case FieldHeartRate:
		return &r.HeartRate
	case FieldBloodPressureSystolic:
		return &r.BloodPressureSystolic
	case FieldBloodPressureDiastolic:
		return &r.BloodPressureDiastolic
	case FieldBloodGlucose:
		return &r.BloodGlucose
	case FieldWeight:
		return &r.Weight
	case FieldSteps:
		return &r.Steps
	case FieldSleepHours:
		return &r.SleepHours
	}
	return nil
}

// Get returns the value of a field, or nil if it is unset or unknown.
func (r Reading) Get(f Field) *float64 {
	p := r.slot(f)
	if p == nil || *p == nil {
		return nil
	}
	v := **p
	return &v
}

// Set assigns a field. Unknown fields are ignored.
func (r *Reading) Set(f Field, v float64) *Reading {
	if p := r.slot(f); p != nil {
		*p = &v
	}
	return r
}

// IsEmpty reports whether no field is set.
func (r Reading) IsEmpty() bool {
	for _, f := range AllFields {
		if r.Get(f) != nil {
			return false
		}
	}
	return true
}

// Clone returns a deep copy so callers can't alias the original's values.
func (r Reading) Clone() Reading {
	var out Reading
	for _, f := range AllFields {
		if v := r.Get(f); v != nil {
			out.Set(f, *v)
		}
	}
	return out
}

// HealthRecord is one timestamped set of readings owned by a user.
// CreatedAt is assigned by the persistence service at write time.
type HealthRecord struct {
	ID        string    `json:"id,omitempty" yaml:"id,omitempty"`
	UserID    string    `json:"user_id" yaml:"user_id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Reading   `yaml:",inline"`

	// Synthetic marks generated demo data. It must never be written back.
	Synthetic bool `json:"synthetic,omitempty" yaml:"synthetic,omitempty"`
}

// Value returns a field's value with a missing field reading as zero.
func (h HealthRecord) Value(f Field) float64 {
	if v := h.Get(f); v != nil {
		return *v
	}
	return 0
}

// Clone returns a deep copy of the record.
func (h HealthRecord) Clone() HealthRecord {
	out := h
	out.Reading = h.Reading.Clone()
	return out
}

// CloneRecords deep-copies a record slice. A nil input yields nil.
func CloneRecords(in []HealthRecord) []HealthRecord {
	if in == nil {
		return nil
	}
	out := make([]HealthRecord, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

// ShortID is the 8-character prefix of id shown in listings.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
