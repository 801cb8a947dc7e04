package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/studydesk/prio/internal/config"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the prio database under the XDG data dir.
func Open() (*DB, error) {
	paths := config.GetPaths()
	if err := paths.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("creating data dirs: %w", err)
	}
	return OpenPath(paths.DBFile)
}

// OpenPath opens (or creates) a database at an explicit file path.
func OpenPath(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the raw sql.DB for direct queries.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// GetKV returns a value from the misc key-value table.
func (db *DB) GetKV(key string) (string, bool, error) {
	var v sql.NullString
	err := db.conn.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading kv %q: %w", key, err)
	}
	return v.String, true, nil
}

// SetKV upserts a value in the misc key-value table.
func (db *DB) SetKV(key, value string) error {
	_, err := db.conn.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("writing kv %q: %w", key, err)
	}
	return nil
}

// migrate runs all schema migrations.
func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		// Assignments as delivered by the classroom side.
		`CREATE TABLE IF NOT EXISTS assignments (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			subject TEXT DEFAULT '',
			description TEXT DEFAULT '',
			deadline TEXT DEFAULT '',
			effort_minutes INTEGER DEFAULT 0,
			importance REAL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'not_started',
			is_group INTEGER DEFAULT 0,
			submission_type TEXT DEFAULT '',
			channel TEXT DEFAULT '',
			formats TEXT DEFAULT '',
			class_code TEXT DEFAULT '',
			grade_room TEXT DEFAULT '',
			created_by TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_class ON assignments(class_code)`,
		// Last-write-wins priority overrides, one per (user, task).
		`CREATE TABLE IF NOT EXISTS priority_overrides (
			user_id TEXT NOT NULL,
			task_id TEXT NOT NULL,
			payload TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, task_id)
		)`,
		// One completion per (user, task); removed when the task is reopened.
		`CREATE TABLE IF NOT EXISTS completions (
			user_id TEXT NOT NULL,
			task_id TEXT NOT NULL,
			completed_at TEXT NOT NULL,
			PRIMARY KEY (user_id, task_id)
		)`,
		// Key-value store for misc state
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	// ALTER TABLE migrations cannot use IF NOT EXISTS; SQLite reports
	// "duplicate column name" when the column is already there.
	alterMigrations := []string{
		`ALTER TABLE assignments ADD COLUMN grade_weight REAL DEFAULT 0`,
	}
	for _, m := range alterMigrations {
		if _, err := db.conn.Exec(m); err != nil {
			if !strings.Contains(err.Error(), "duplicate column name") {
				return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
			}
		}
	}

	return nil
}
