// Package postgres implements the repository interfaces on database/sql.
// The same statements run against postgres (lib/pq) and sqlite
// (modernc.org/sqlite): $N placeholders appear once each in ascending
// order, timestamps are stored as unix seconds, and inserts use
// RETURNING instead of LastInsertId.
package postgres

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/alora-app/alora/internal/config"
)

// Open connects to the configured database, applies the schema and
// returns the handle. Migration is idempotent; every statement is
// CREATE IF NOT EXISTS.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.Name, cfg.User, cfg.Password, cfg.SSLMode)
		db, err = sql.Open("postgres", dsn)
	case "sqlite":
		db, err = sql.Open("sqlite", cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if cfg.Driver == "sqlite" {
		for _, pragma := range []string{
			`PRAGMA journal_mode=WAL;`,
			`PRAGMA foreign_keys=ON;`,
		} {
			if _, err := db.Exec(pragma); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
	}

	if err := migrate(db, cfg.Driver); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(db *sql.DB, driver string) error {
	// The only dialect difference is the autoincrement id column.
	id := "id BIGSERIAL PRIMARY KEY"
	if driver == "sqlite" {
		id = "id INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			` + id + `,
			email TEXT NOT NULL UNIQUE,
			name TEXT,
			password_hash TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			google_id TEXT UNIQUE,
			apple_id TEXT UNIQUE,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS modules (
			` + id + `,
			user_id BIGINT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			total_days INT NOT NULL,
			created_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS module_days (
			module_id BIGINT NOT NULL,
			day_number INT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			framework_name TEXT NOT NULL,
			framework_description TEXT NOT NULL DEFAULT '',
			reflection_prompt TEXT NOT NULL,
			shift_focus TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (module_id, day_number)
		)`,
		`CREATE TABLE IF NOT EXISTS enrollments (
			` + id + `,
			user_id BIGINT NOT NULL,
			module_id BIGINT NOT NULL,
			status TEXT NOT NULL,
			current_day INT NOT NULL,
			started_at BIGINT NOT NULL,
			completed_at BIGINT
		)`,
		// One active enrollment per (user, module); the database, not
		// the application, arbitrates concurrent starts.
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_enrollments_active
			ON enrollments (user_id, module_id) WHERE status = 'active'`,
		`CREATE TABLE IF NOT EXISTS day_completions (
			enrollment_id BIGINT NOT NULL,
			day_number INT NOT NULL,
			completed_at BIGINT NOT NULL,
			reflection_summary TEXT,
			shift_action TEXT,
			voice_session_id TEXT,
			PRIMARY KEY (enrollment_id, day_number)
		)`,
		`CREATE TABLE IF NOT EXISTS subscriptions (
			` + id + `,
			user_id BIGINT NOT NULL UNIQUE,
			plan TEXT NOT NULL,
			status TEXT NOT NULL,
			entitlement_ids TEXT NOT NULL DEFAULT '[]',
			cancelled_at BIGINT,
			billing_issue_detected_at BIGINT,
			event_at BIGINT NOT NULL,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS billing_events (
			event_id TEXT PRIMARY KEY,
			event_type TEXT NOT NULL,
			user_id BIGINT NOT NULL,
			occurred_at BIGINT NOT NULL,
			received_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS reset_tokens (
			` + id + `,
			user_id BIGINT NOT NULL,
			purpose TEXT NOT NULL,
			code TEXT NOT NULL,
			expires_at BIGINT NOT NULL,
			used INT NOT NULL DEFAULT 0,
			created_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reset_tokens_user
			ON reset_tokens (user_id, purpose)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrating schema: %w", err)
		}
	}
	return nil
}

// isUniqueViolation reports whether err is a unique-constraint failure
// from either driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || // lib/pq 23505
		strings.Contains(msg, "UNIQUE constraint failed") // modernc sqlite
}

// timePtr converts an optional unix-seconds column.
func timePtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0)
	return &t
}

// unixPtr converts an optional time to its unix-seconds column value.
func unixPtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Unix()
}
