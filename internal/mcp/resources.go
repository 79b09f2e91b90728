// ABOUTME: MCP resource implementations for the health tracker.
// ABOUTME: Provides health://recent and health://summary resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const recentLimit = 10

func (s *Server) registerResources() {
	// health://recent - Last 10 records
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "health://recent",
		Name:        "Recent Health Records",
		Description: "The 10 most recent health records",
		MIMEType:    "application/json",
	}, s.handleRecentResource)

	// health://summary - Weekly summary, reference deltas, and profile
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "health://summary",
		Name:        "Health Summary Dashboard",
		Description: "Weekly averages, changes against reference values, latest blood pressure, and profile",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)
}

// Resource handlers

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	recs, err := s.app.Readings(ctx, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list readings: %w", err)
	}

	result := map[string]any{
		"records": recs,
		"count":   len(recs),
	}
	return jsonResource("health://recent", result)
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	ov, err := s.app.Overview(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build summary: %w", err)
	}

	result := map[string]any{
		"generated_at":   time.Now().Format(time.RFC3339),
		"user":           ov.Identity,
		"profile":        ov.Profile,
		"summary":        ov.Summary,
		"changes":        ov.Changes,
		"blood_pressure": ov.BloodPressure,
		"synthetic":      ov.Synthetic,
		"record_count":   len(ov.Records),
	}
	return jsonResource("health://summary", result)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
