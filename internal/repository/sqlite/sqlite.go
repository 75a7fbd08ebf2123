// Package sqlite implements the repository interfaces on a single SQLite
// file in the data directory.
//
// The driver is modernc.org/sqlite (pure Go, no cgo). Tests open ":memory:".
//
// LAYOUT:
//
//	users     accounts (email unique, github_id unique when set)
//	kv        namespaced key/value rows (session, settings, rate limits)
//	messages  chat history
//
// Each table has its own store type (UserDB, KVDB, MessageDB) sharing the
// one connection held by DB.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB owns the connection and hands out the per-table stores.
type DB struct {
	conn *sql.DB
}

// New opens (creating if needed) the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "/home/me/.local/share/password-analyzer/analyzer.db"
//   - ":memory:" (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// One connection: every statement sees the same ":memory:" database, and
	// a CLI process never needs more.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets a second invocation read while another writes.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Two invocations racing for the write lock wait instead of failing.
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Users returns the account store.
func (db *DB) Users() *UserDB { return &UserDB{conn: db.conn} }

// KV returns the key-value store.
func (db *DB) KV() *KVDB { return &KVDB{conn: db.conn} }

// Messages returns the chat history store.
func (db *DB) Messages() *MessageDB { return &MessageDB{conn: db.conn} }

// migrate creates every table. Each step is idempotent, so it runs on
// every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id                TEXT PRIMARY KEY,
			username          TEXT NOT NULL,
			email             TEXT NOT NULL UNIQUE COLLATE NOCASE,
			full_name         TEXT NOT NULL DEFAULT '',
			avatar_url        TEXT NOT NULL DEFAULT '',
			bio               TEXT NOT NULL DEFAULT '',
			password_hash     TEXT NOT NULL DEFAULT '',
			password_strength TEXT NOT NULL DEFAULT 'weak',
			is_verified       INTEGER NOT NULL DEFAULT 0,
			last_login        DATETIME,
			created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// GitHub sign-in came after the first schema. NULL for unlinked accounts,
	// which the UNIQUE index ignores.
	if err := db.addColumnIfNotExists("users", "github_id", "INTEGER"); err != nil {
		return fmt.Errorf("adding github_id to users: %w", err)
	}
	_, err = db.conn.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_github_id ON users(github_id);
	`)
	if err != nil {
		return fmt.Errorf("creating users github_id index: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			namespace  TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (namespace, key)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating kv table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			id            TEXT PRIMARY KEY,
			channel       TEXT NOT NULL,
			sender_id     TEXT REFERENCES users(id) ON DELETE SET NULL,
			sender_name   TEXT NOT NULL,
			sender_avatar TEXT NOT NULL DEFAULT '',
			content       TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_messages_channel_created ON messages(channel, created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating messages table: %w", err)
	}

	return nil
}

// addColumnIfNotExists adds a column to a table only if it doesn't already exist.
func (db *DB) addColumnIfNotExists(table, column, definition string) error {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil
	}
	_, err = db.conn.Exec(fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition,
	))
	return err
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY
// constraint failure.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
