// ABOUTME: MCP tool implementations for health readings and profiles.
// ABOUTME: Provides add/list readings, the weekly summary, and profile access.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/healthtrack/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_reading",
		Description: "Record a set of health readings (heart rate, blood pressure, glucose, weight, steps, sleep)",
	}, s.handleAddReading)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_readings",
		Description: "List recent health records, newest first",
	}, s.handleListReadings)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "weekly_summary",
		Description: "Averages over the latest seven records with changes against reference values",
	}, s.handleWeeklySummary)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_profile",
		Description: "Get the signed-in user's profile",
	}, s.handleGetProfile)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_profile",
		Description: "Update profile fields; omitted fields keep their saved values",
	}, s.handleUpdateProfile)
}

// Tool input/output types

type addReadingInput struct {
	HeartRate              *float64 `json:"heart_rate,omitempty" jsonschema:"Heart rate in bpm"`
	BloodPressureSystolic  *float64 `json:"blood_pressure_systolic,omitempty" jsonschema:"Systolic blood pressure in mmHg"`
	BloodPressureDiastolic *float64 `json:"blood_pressure_diastolic,omitempty" jsonschema:"Diastolic blood pressure in mmHg"`
	BloodGlucose           *float64 `json:"blood_glucose,omitempty" jsonschema:"Blood glucose in mg/dL"`
	Weight                 *float64 `json:"weight,omitempty" jsonschema:"Weight in kg"`
	Steps                  *float64 `json:"steps,omitempty" jsonschema:"Step count"`
	SleepHours             *float64 `json:"sleep_hours,omitempty" jsonschema:"Hours slept"`
}

func (in addReadingInput) reading() models.Reading {
	return models.Reading{
		HeartRate:              in.HeartRate,
		BloodPressureSystolic:  in.BloodPressureSystolic,
		BloodPressureDiastolic: in.BloodPressureDiastolic,
		BloodGlucose:           in.BloodGlucose,
		Weight:                 in.Weight,
		Steps:                  in.Steps,
		SleepHours:             in.SleepHours,
	}
}

type readingOutput struct {
	Record  *models.HealthRecord `json:"record,omitempty"`
	Message string               `json:"message"`
}

type listReadingsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type listReadingsOutput struct {
	Records []models.HealthRecord `json:"records"`
	Count   int                   `json:"count"`
}

type emptyInput struct{}

type profileInput struct {
	FullName          *string  `json:"full_name,omitempty" jsonschema:"Full name"`
	Age               *int     `json:"age,omitempty" jsonschema:"Age in years"`
	Gender            *string  `json:"gender,omitempty" jsonschema:"Gender"`
	Height            *float64 `json:"height,omitempty" jsonschema:"Height in cm"`
	MedicalConditions *string  `json:"medical_conditions,omitempty" jsonschema:"Known medical conditions"`
	EmergencyContact  *string  `json:"emergency_contact,omitempty" jsonschema:"Emergency contact"`
}

type profileOutput struct {
	Profile *models.Profile `json:"profile,omitempty"`
	Message string          `json:"message"`
}

// Tool handlers

func (s *Server) handleAddReading(ctx context.Context, req *mcp.CallToolRequest, input addReadingInput) (*mcp.CallToolResult, any, error) {
	snap, err := s.app.AddReading(ctx, input.reading())
	if err != nil {
		if snap.Stale {
			return nil, nil, fmt.Errorf("reading saved but refresh failed: %w", err)
		}
		return nil, nil, fmt.Errorf("failed to add reading: %w", err)
	}

	if len(snap.Records) == 0 {
		return nil, readingOutput{Message: fmt.Sprintf("Recorded %s", describe(input.reading()))}, nil
	}
	rec := snap.Records[0]
	return nil, readingOutput{
		Record:  &rec,
		Message: fmt.Sprintf("Recorded %s (ID: %s)", describe(rec.Reading), models.ShortID(rec.ID)),
	}, nil
}

func (s *Server) handleListReadings(ctx context.Context, req *mcp.CallToolRequest, input listReadingsInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	recs, err := s.app.Readings(ctx, input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list readings: %w", err)
	}

	return nil, listReadingsOutput{Records: recs, Count: len(recs)}, nil
}

func (s *Server) handleWeeklySummary(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	ov, err := s.app.Overview(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build summary: %w", err)
	}

	return nil, map[string]any{
		"summary":        ov.Summary,
		"changes":        ov.Changes,
		"blood_pressure": ov.BloodPressure,
		"synthetic":      ov.Synthetic,
	}, nil
}

func (s *Server) handleGetProfile(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	p, err := s.app.Profile(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if p == nil {
		return nil, profileOutput{Message: "No profile saved."}, nil
	}
	return nil, profileOutput{Profile: p, Message: "Profile loaded."}, nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, req *mcp.CallToolRequest, input profileInput) (*mcp.CallToolResult, any, error) {
	p, err := s.app.UpdateProfile(ctx, models.Profile{
		FullName:          input.FullName,
		Age:               input.Age,
		Gender:            input.Gender,
		Height:            input.Height,
		MedicalConditions: input.MedicalConditions,
		EmergencyContact:  input.EmergencyContact,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return nil, profileOutput{Profile: p, Message: "Profile updated."}, nil
}

// describe renders the fields set in a reading, e.g. "heart_rate 72 bpm".
func describe(r models.Reading) string {
	var parts []string
	for _, f := range models.AllFields {
		if v := r.Get(f); v != nil {
			parts = append(parts, fmt.Sprintf("%s %g %s", f, *v, models.FieldUnits[f]))
		}
	}
	return strings.Join(parts, ", ")
}
