// ABOUTME: Composition root shared by the CLI and the MCP server.
// ABOUTME: Wires the persistence service into the auth and records stores.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/healthtrack/internal/apperr"
	"github.com/harperreed/healthtrack/internal/auth"
	"github.com/harperreed/healthtrack/internal/backend"
	"github.com/harperreed/healthtrack/internal/config"
	"github.com/harperreed/healthtrack/internal/dashboard"
	"github.com/harperreed/healthtrack/internal/models"
	"github.com/harperreed/healthtrack/internal/records"
	"github.com/harperreed/healthtrack/internal/storage"
	"golang.org/x/sync/errgroup"
)

// ErrNotSignedIn is returned by operations that need an identity.
var ErrNotSignedIn = errors.New("not signed in: run 'healthtrack login' first")

// ErrEmptyReading is returned when a reading sets no field.
var ErrEmptyReading = apperr.New(apperr.KindValidation, "at least one reading is required")

// App holds one session's stores.
type App struct {
	Service backend.Service
	Auth    *auth.Store
	Records *records.Store
	Log     *log.Logger

	now func() time.Time
}

// Open creates the configured backend and builds an App on it.
func Open(cfg *config.Config, logger *log.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	svc, err := cfg.OpenBackend()
	if err != nil {
		return nil, fmt.Errorf("open backend: %w", err)
	}
	a, err := New(svc, cfg, logger)
	if err != nil {
		_ = svc.Close()
		return nil, err
	}
	return a, nil
}

// New builds an App on an existing service. A nil logger discards output.
func New(svc backend.Service, cfg *config.Config, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	timeout, err := cfg.GetRequestTimeout()
	if err != nil {
		return nil, err
	}

	recordOpts := []records.Option{records.WithLogger(logger), records.WithTimeout(timeout)}
	if cfg.FenceRequests {
		recordOpts = append(recordOpts, records.WithRequestFencing())
	}

	return &App{
		Service: svc,
		Auth:    auth.New(svc, auth.WithLogger(logger), auth.WithTimeout(timeout)),
		Records: records.New(svc, recordOpts...),
		Log:     logger,
		now:     time.Now,
	}, nil
}

// Start restores any persisted session. A failed check leaves the app
// signed out with the error on the auth snapshot.
func (a *App) Start(ctx context.Context) {
	a.Auth.RestoreSession(ctx)
}

// Close releases the persistence service.
func (a *App) Close() error {
	return a.Service.Close()
}

// CurrentUser returns the signed-in identity or ErrNotSignedIn.
func (a *App) CurrentUser() (*models.Identity, error) {
	id := a.Auth.Identity()
	if id == nil {
		return nil, ErrNotSignedIn
	}
	return id, nil
}

// AddReading stores a reading for the current user and returns the
// refreshed record snapshot.
func (a *App) AddReading(ctx context.Context, r models.Reading) (records.Snapshot, error) {
	if r.IsEmpty() {
		return records.Snapshot{}, ErrEmptyReading
	}
	id, err := a.CurrentUser()
	if err != nil {
		return records.Snapshot{}, err
	}
	return settled(a.Records.Add(ctx, id.ID, r))
}

// Readings fetches the current user's records, newest first. A positive
// limit truncates the result.
func (a *App) Readings(ctx context.Context, limit int) ([]models.HealthRecord, error) {
	id, err := a.CurrentUser()
	if err != nil {
		return nil, err
	}
	snap, err := settled(a.Records.Fetch(ctx, id.ID))
	if err != nil {
		return nil, err
	}
	out := snap.Records
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Overview is the dashboard for the current user along with their profile.
type Overview struct {
	Identity models.Identity `json:"identity"`
	Profile  *models.Profile `json:"profile,omitempty"`
	dashboard.View
}

// Overview loads records and profile concurrently and composes the dashboard.
func (a *App) Overview(ctx context.Context) (*Overview, error) {
	id, err := a.CurrentUser()
	if err != nil {
		return nil, err
	}

	var (
		snap    records.Snapshot
		profile *models.Profile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap, err = settled(a.Records.Fetch(gctx, id.ID))
		return err
	})
	g.Go(func() error {
		var err error
		profile, err = a.Service.GetProfile(gctx, id.ID)
		if err != nil {
			return fmt.Errorf("get profile: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Overview{
		Identity: *id,
		Profile:  profile,
		View:     dashboard.Build(snap.Records, a.now()),
	}, nil
}

// Profile returns the current user's profile, or nil if none is saved.
func (a *App) Profile(ctx context.Context) (*models.Profile, error) {
	id, err := a.CurrentUser()
	if err != nil {
		return nil, err
	}
	return a.Service.GetProfile(ctx, id.ID)
}

// UpdateProfile merges update into the saved profile and stores it.
func (a *App) UpdateProfile(ctx context.Context, update models.Profile) (*models.Profile, error) {
	id, err := a.CurrentUser()
	if err != nil {
		return nil, err
	}

	current, err := a.Service.GetProfile(ctx, id.ID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	merged := models.Profile{ID: id.ID}
	if current != nil {
		merged = *current
	}
	merged.Merge(update)

	if err := a.Service.UpsertProfile(ctx, id.ID, merged); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return a.Service.GetProfile(ctx, id.ID)
}

// Export renders the current user's data as "json" or "yaml".
func (a *App) Export(ctx context.Context, format string) ([]byte, error) {
	id, err := a.CurrentUser()
	if err != nil {
		return nil, err
	}
	switch format {
	case "json":
		return storage.ExportJSON(ctx, a.Service, id.ID)
	case "yaml", "yml":
		return storage.ExportYAML(ctx, a.Service, id.ID)
	default:
		return nil, fmt.Errorf("unknown export format: %q", format)
	}
}

// settled turns a snapshot's error slot into a returned error.
func settled(snap records.Snapshot) (records.Snapshot, error) {
	if snap.Err != nil {
		return snap, snap.Err
	}
	return snap, nil
}
