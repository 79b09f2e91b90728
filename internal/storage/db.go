// ABOUTME: SQLite database connection and lifecycle management.
// ABOUTME: Uses modernc.org/sqlite (pure Go, no CGO required).
package storage

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/harperreed/healthtrack/internal/backend"
	"github.com/harperreed/healthtrack/internal/session"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// timeFormat is fixed-width so lexical order matches chronological order.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// DefaultSessionTTL is how long a session token stays valid.
const DefaultSessionTTL = 30 * 24 * time.Hour

// DB is the SQLite implementation of the persistence service.
type DB struct {
	db         *sql.DB
	dbPath     string
	tokens     session.TokenStore
	secret     []byte
	bcryptCost int
	sessionTTL time.Duration
	now        func() time.Time

	mu          sync.Mutex
	lastCreated time.Time
}

// Compile-time check that DB implements backend.Service.
var _ backend.Service = (*DB)(nil)

// Option configures a DB.
type Option func(*DB)

// WithTokenStore sets where the current session token is cached.
// Defaults to an in-process store.
func WithTokenStore(ts session.TokenStore) Option {
	return func(d *DB) {
		d.tokens = ts
	}
}

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(d *DB) {
		d.bcryptCost = cost
	}
}

// WithSessionTTL sets the session token lifetime.
func WithSessionTTL(ttl time.Duration) Option {
	return func(d *DB) {
		if ttl > 0 {
			d.sessionTTL = ttl
		}
	}
}

// Open opens or creates a SQLite database at the given path.
func Open(dbPath string, opts ...Option) (*DB, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Pragmas are per-connection.
	db.SetMaxOpenConns(1)

	// Set file permissions
	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		_ = db.Close()
		return nil, fmt.Errorf("set database permissions: %w", err)
	}

	d := &DB{
		db:         db,
		dbPath:     dbPath,
		bcryptCost: bcrypt.DefaultCost,
		sessionTTL: DefaultSessionTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.tokens == nil {
		d.tokens = &session.MemoryStore{}
	}

	if err := d.configurePragmas(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure pragmas: %w", err)
	}

	if err := d.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	if err := d.loadSecret(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load signing secret: %w", err)
	}

	return d, nil
}

// DataDir returns the default data directory following the XDG base directory layout.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "healthtrack")
}

// DefaultDBPath returns the default database path following the XDG base directory layout.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), "healthtrack.db")
}

// Close closes the database connection and the token store, if it has one
// to close.
func (d *DB) Close() error {
	var errs []error
	if d.db != nil {
		errs = append(errs, d.db.Close())
	}
	if c, ok := d.tokens.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// configurePragmas sets up SQLite for optimal performance.
func (d *DB) configurePragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := d.db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}
	return nil
}

// loadSecret reads the token signing secret, creating one on first open.
func (d *DB) loadSecret(ctx context.Context) error {
	var secret []byte
	err := d.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'jwt_secret'`).Scan(&secret)
	if err == nil {
		d.secret = secret
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	secret = make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return fmt.Errorf("generate secret: %w", err)
	}
	if _, err := d.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('jwt_secret', ?)`, secret); err != nil {
		return fmt.Errorf("store secret: %w", err)
	}
	d.secret = secret
	return nil
}

// nextCreatedAt returns a UTC timestamp strictly after the previous one.
func (d *DB) nextCreatedAt() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	t := d.now().UTC()
	if !t.After(d.lastCreated) {
		t = d.lastCreated.Add(time.Microsecond)
	}
	d.lastCreated = t
	return t
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeFormat, s)
}
