// ABOUTME: Identity and Profile models for authenticated users.
// ABOUTME: Profile holds the optional personal details edited on the profile page.
package models

import "time"

// Identity is the authenticated user reference.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Profile is a user's personal information, keyed by the identity ID.
type Profile struct {
	ID                string    `json:"id" yaml:"id"`
	FullName          *string   `json:"full_name,omitempty" yaml:"full_name,omitempty"`
	Age               *int      `json:"age,omitempty" yaml:"age,omitempty"`
	Gender            *string   `json:"gender,omitempty" yaml:"gender,omitempty"`
	Height            *float64  `json:"height,omitempty" yaml:"height,omitempty"`
	MedicalConditions *string   `json:"medical_conditions,omitempty" yaml:"medical_conditions,omitempty"`
	EmergencyContact  *string   `json:"emergency_contact,omitempty" yaml:"emergency_contact,omitempty"`
	UpdatedAt         time.Time `json:"updated_at" yaml:"updated_at"`
}

// WeeklySummary is derived from the most recent seven records. Never persisted.
type WeeklySummary struct {
	AverageHeartRate    float64 `json:"averageHeartRate"`
	AverageSteps        float64 `json:"averageSteps"`
	AverageSleep        float64 `json:"averageSleep"`
	AverageBloodGlucose float64 `json:"averageBloodGlucose"`
	TotalSteps          float64 `json:"totalSteps"`
	AverageWeight       float64 `json:"averageWeight"`
}

// Merge overwrites p's fields with every field set in update. ID and
// UpdatedAt are left alone.
func (p *Profile) Merge(update Profile) {
	if update.FullName != nil {
		p.FullName = update.FullName
	}
	if update.Age != nil {
		p.Age = update.Age
	}
	if update.Gender != nil {
		p.Gender = update.Gender
	}
	if update.Height != nil {
		p.Height = update.Height
	}
	if update.MedicalConditions != nil {
		p.MedicalConditions = update.MedicalConditions
	}
	if update.EmergencyContact != nil {
		p.EmergencyContact = update.EmergencyContact
	}
}
