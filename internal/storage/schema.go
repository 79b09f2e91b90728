// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines tables for users, sessions, health_metrics, and profiles.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		password_hash TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		created_at TEXT NOT NULL,
		expires_at TEXT NOT NULL,
		revoked_at TEXT,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS health_metrics (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		created_at TEXT NOT NULL,
		heart_rate REAL,
		blood_pressure_systolic REAL,
		blood_pressure_diastolic REAL,
		blood_glucose REAL,
		weight REAL,
		steps REAL,
		sleep_hours REAL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		full_name TEXT,
		age INTEGER,
		gender TEXT,
		height REAL,
		medical_conditions TEXT,
		emergency_contact TEXT,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
	CREATE INDEX IF NOT EXISTS idx_health_metrics_user_created ON health_metrics(user_id, created_at DESC);
	`

	_, err := d.db.Exec(schema)
	return err
}
