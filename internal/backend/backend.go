// ABOUTME: Persistence service contract consumed by the auth and records stores.
// ABOUTME: Split into auth and data halves so each store depends on what it uses.
package backend

import (
	"context"
	"errors"

	"github.com/harperreed/healthtrack/internal/models"
)

// Common service errors. Implementations return these unwrapped: the auth
// store shows their text as-is, so it is capitalized for display.
var (
	ErrInvalidCredentials = errors.New("Invalid login credentials")
	ErrUserExists         = errors.New("User already registered")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// AuthService is the identity half of the persistence service.
type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*models.Identity, error)
	SignIn(ctx context.Context, email, password string) (*models.Identity, error)
	SignOut(ctx context.Context) error
	// GetSession returns (nil, nil) when no session exists.
	GetSession(ctx context.Context) (*models.Identity, error)
}

// DataService is the records and profile half of the persistence service.
type DataService interface {
	InsertRecord(ctx context.Context, userID string, r models.Reading) error
	// QueryRecords returns the user's records, newest first.
	QueryRecords(ctx context.Context, userID string) ([]models.HealthRecord, error)
	UpsertProfile(ctx context.Context, userID string, p models.Profile) error
	// GetProfile returns (nil, nil) when the user has no profile.
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
}

// Service is the complete persistence contract.
type Service interface {
	AuthService
	DataService
	Close() error
}
