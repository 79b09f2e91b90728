// ABOUTME: Account and session operations for SQLite storage.
// ABOUTME: bcrypt password hashes, JWT session tokens cached in a TokenStore.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/harperreed/healthtrack/internal/backend"
	"github.com/harperreed/healthtrack/internal/models"
	"golang.org/x/crypto/bcrypt"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// sessionClaims is the payload of a session token.
type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// SignUp creates an account and signs it in.
func (d *DB) SignUp(ctx context.Context, email, password string) (*models.Identity, error) {
	email = strings.TrimSpace(email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id := models.Identity{ID: uuid.New().String(), Email: email}
	_, err = d.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)`,
		id.ID, id.Email, string(hash), formatTime(d.now()))
	if isUniqueViolation(err) {
		return nil, backend.ErrUserExists
	}
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	if err := d.startSession(ctx, id); err != nil {
		return nil, err
	}
	return &id, nil
}

// isUniqueViolation reports whether err is SQLite rejecting a duplicate key.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	// Extended codes are on by default; the primary code is the fallback.
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		(se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE"))
}

// SignIn verifies credentials and starts a session.
func (d *DB) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	var id models.Identity
	var hash string
	err := d.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash FROM users WHERE email = ?`,
		strings.TrimSpace(email)).Scan(&id.ID, &id.Email, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, backend.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, backend.ErrInvalidCredentials
	}

	if err := d.startSession(ctx, id); err != nil {
		return nil, err
	}
	return &id, nil
}

// SignOut revokes the current session and forgets its token.
func (d *DB) SignOut(ctx context.Context) error {
	token, err := d.tokens.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	// Expired tokens still name a session worth revoking.
	claims, err := d.parseToken(token, jwt.WithoutClaimsValidation())
	if err == nil {
		if _, err := d.db.ExecContext(ctx,
			`UPDATE sessions SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL`,
			formatTime(d.now()), claims.ID); err != nil {
			return fmt.Errorf("sign out: %w", err)
		}
	}

	return d.tokens.Clear()
}

// GetSession returns the identity behind the cached token, or nil when
// there is no live session. Dead tokens are cleared.
func (d *DB) GetSession(ctx context.Context) (*models.Identity, error) {
	token, err := d.tokens.Load()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}

	claims, err := d.parseToken(token)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, d.tokens.Clear()
	}
	if err != nil {
		_ = d.tokens.Clear()
		return nil, fmt.Errorf("invalid session token: %w", err)
	}

	var id models.Identity
	var revokedAt sql.NullString
	err = d.db.QueryRowContext(ctx, `
		SELECT u.id, u.email, s.revoked_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = ? AND s.user_id = ?`,
		claims.ID, claims.Subject).Scan(&id.ID, &id.Email, &revokedAt)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && revokedAt.Valid) {
		return nil, d.tokens.Clear()
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	return &id, nil
}

// startSession records a session row and caches its signed token.
func (d *DB) startSession(ctx context.Context, id models.Identity) error {
	now := d.now()
	expires := now.Add(d.sessionTTL)
	sessionID := uuid.New().String()

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)`,
		sessionID, id.ID, formatTime(now), formatTime(expires))
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	claims := sessionClaims{
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(d.secret)
	if err != nil {
		return fmt.Errorf("sign session token: %w", err)
	}

	return d.tokens.Save(token)
}

func (d *DB) parseToken(token string, opts ...jwt.ParserOption) (*sessionClaims, error) {
	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(d.now),
	)
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return d.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
