// ABOUTME: Health record operations for SQLite storage.
// ABOUTME: Insert assigns id and created_at; query returns newest first.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/healthtrack/internal/backend"
	"github.com/harperreed/healthtrack/internal/models"
)

// InsertRecord stores a reading for a user. The service, not the caller,
// assigns the ID and creation time.
func (d *DB) InsertRecord(ctx context.Context, userID string, r models.Reading) error {
	if userID == "" {
		return fmt.Errorf("insert record: %w", backend.ErrNotAuthenticated)
	}

	query := `
		INSERT INTO health_metrics (
			id, user_id, created_at,
			heart_rate, blood_pressure_systolic, blood_pressure_diastolic,
			blood_glucose, weight, steps, sleep_hours
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := d.db.ExecContext(ctx, query,
		uuid.New().String(),
		userID,
		formatTime(d.nextCreatedAt()),
		r.HeartRate,
		r.BloodPressureSystolic,
		r.BloodPressureDiastolic,
		r.BloodGlucose,
		r.Weight,
		r.Steps,
		r.SleepHours,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// QueryRecords returns all of a user's records, newest first.
func (d *DB) QueryRecords(ctx context.Context, userID string) ([]models.HealthRecord, error) {
	query := `
		SELECT id, user_id, created_at,
			heart_rate, blood_pressure_systolic, blood_pressure_diastolic,
			blood_glucose, weight, steps, sleep_hours
		FROM health_metrics
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
	`
	rows, err := d.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// scanRecords scans rows into records, mapping NULL columns to unset fields.
func scanRecords(rows *sql.Rows) ([]models.HealthRecord, error) {
	records := []models.HealthRecord{}

	for rows.Next() {
		var rec models.HealthRecord
		var createdAt string
		var hr, sys, dia, glucose, weight, steps, sleep sql.NullFloat64

		err := rows.Scan(&rec.ID, &rec.UserID, &createdAt,
			&hr, &sys, &dia, &glucose, &weight, &steps, &sleep)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}

		rec.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("invalid created_at timestamp: %w", err)
		}

		cols := []struct {
			field models.Field
			value sql.NullFloat64
		}{
			{models.FieldHeartRate, hr},
			{models.FieldBloodPressureSystolic, sys},
			{models.FieldBloodPressureDiastolic, dia},
			{models.FieldBloodGlucose, glucose},
			{models.FieldWeight, weight},
			{models.FieldSteps, steps},
			{models.FieldSleepHours, sleep},
		}
		for _, c := range cols {
			if c.value.Valid {
				rec.Set(c.field, c.value.Float64)
			}
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}
