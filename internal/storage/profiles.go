// ABOUTME: Profile operations for SQLite storage.
// ABOUTME: Profiles are upserted by user ID and stamped with updated_at.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harperreed/healthtrack/internal/backend"
	"github.com/harperreed/healthtrack/internal/models"
)

// UpsertProfile creates or replaces the user's profile.
func (d *DB) UpsertProfile(ctx context.Context, userID string, p models.Profile) error {
	if userID == "" {
		return fmt.Errorf("upsert profile: %w", backend.ErrNotAuthenticated)
	}

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO profiles (id, full_name, age, gender, height, medical_conditions, emergency_contact, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			full_name = excluded.full_name,
			age = excluded.age,
			gender = excluded.gender,
			height = excluded.height,
			medical_conditions = excluded.medical_conditions,
			emergency_contact = excluded.emergency_contact,
			updated_at = excluded.updated_at`,
		userID, p.FullName, p.Age, p.Gender, p.Height,
		p.MedicalConditions, p.EmergencyContact, formatTime(d.now()),
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// GetProfile returns the user's profile, or nil if none has been saved.
func (d *DB) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	var fullName, gender, conditions, contact sql.NullString
	var age sql.NullInt64
	var height sql.NullFloat64
	var updatedAt string

	err := d.db.QueryRowContext(ctx, `
		SELECT id, full_name, age, gender, height, medical_conditions, emergency_contact, updated_at
		FROM profiles
		WHERE id = ?`, userID).Scan(
		&p.ID, &fullName, &age, &gender, &height, &conditions, &contact, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	p.FullName = nullString(fullName)
	p.Gender = nullString(gender)
	p.MedicalConditions = nullString(conditions)
	p.EmergencyContact = nullString(contact)
	if age.Valid {
		v := int(age.Int64)
		p.Age = &v
	}
	if height.Valid {
		p.Height = &height.Float64
	}
	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid updated_at timestamp: %w", err)
	}

	return &p, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
