// ABOUTME: Export functionality for a user's health data.
// ABOUTME: Supports JSON and YAML export formats over any data service.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/healthtrack/internal/backend"
	"github.com/harperreed/healthtrack/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData represents the full export format for one user's data.
type ExportData struct {
	Version    string                `json:"version" yaml:"version"`
	ExportedAt time.Time             `json:"exported_at" yaml:"exported_at"`
	Tool       string                `json:"tool" yaml:"tool"`
	UserID     string                `json:"user_id" yaml:"user_id"`
	Profile    *models.Profile       `json:"profile,omitempty" yaml:"profile,omitempty"`
	Records    []models.HealthRecord `json:"records" yaml:"records"`
}

// GetAllData retrieves a user's profile and records for export.
func GetAllData(ctx context.Context, svc backend.DataService, userID string) (*ExportData, error) {
	records, err := svc.QueryRecords(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	profile, err := svc.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().UTC(),
		Tool:       "healthtrack",
		UserID:     userID,
		Profile:    profile,
		Records:    records,
	}, nil
}

// ExportJSON exports a user's data as indented JSON.
func ExportJSON(ctx context.Context, svc backend.DataService, userID string) ([]byte, error) {
	data, err := GetAllData(ctx, svc, userID)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports a user's data as YAML.
func ExportYAML(ctx context.Context, svc backend.DataService, userID string) ([]byte, error) {
	data, err := GetAllData(ctx, svc, userID)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(data)
}
