// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// We use modernc.org/sqlite (a pure-Go translation of SQLite) rather than
// the CGo-based mattn driver, so the binary cross-compiles without a C
// toolchain. The driver registers itself with database/sql under the name
// "sqlite" via the blank import below.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and hands out the per-entity
// repositories. The server owns the DB and closes it on shutdown.
type DB struct {
	conn *sql.DB
}

// New opens the SQLite database at dbPath, applies connection pragmas,
// and runs migrations.
//
// Pragmas go in the DSN (the modernc driver's _pragma parameter) rather
// than a one-off Exec, because database/sql pools connections and an
// Exec'd PRAGMA would only apply to whichever connection ran it. WAL
// allows concurrent reads during a write; foreign keys are off by default
// in SQLite and the photo→user, photo→album and membership references
// depend on them.
func New(dbPath string) (*DB, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Surface a bad path or permissions problem now rather than on the
	// first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Users returns the user repository backed by this database.
func (db *DB) Users() *UserStore {
	return &UserStore{conn: db.conn}
}

// Photos returns the photo repository backed by this database.
func (db *DB) Photos() *PhotoStore {
	return &PhotoStore{conn: db.conn}
}

// Albums returns the album repository backed by this database.
func (db *DB) Albums() *AlbumStore {
	return &AlbumStore{conn: db.conn}
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it
// idempotent — safe to run on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id                  TEXT PRIMARY KEY,
			username            TEXT NOT NULL UNIQUE,
			email               TEXT NOT NULL UNIQUE,
			password_hash       TEXT NOT NULL,
			role                TEXT NOT NULL DEFAULT 'user',
			reset_token_hash    TEXT,
			reset_token_expires DATETIME,
			created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_users_reset_token ON users(reset_token_hash);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS albums (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			owner_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_albums_owner_id ON albums(owner_id);
	`)
	if err != nil {
		return fmt.Errorf("creating albums table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS photos (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			url         TEXT NOT NULL DEFAULT '',
			object_key  TEXT NOT NULL UNIQUE,
			visibility  TEXT NOT NULL DEFAULT 'private',
			owner_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			album_id    TEXT REFERENCES albums(id) ON DELETE SET NULL,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_photos_owner_id ON photos(owner_id);
		CREATE INDEX IF NOT EXISTS idx_photos_visibility ON photos(visibility);
	`)
	if err != nil {
		return fmt.Errorf("creating photos table: %w", err)
	}

	// Album membership: the composite primary key makes a duplicate add a
	// no-op at the storage layer, and position preserves insertion order.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS album_photos (
			album_id TEXT NOT NULL REFERENCES albums(id) ON DELETE CASCADE,
			photo_id TEXT NOT NULL REFERENCES photos(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			PRIMARY KEY (album_id, photo_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating album_photos table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is SQLite's UNIQUE constraint
// failure. modernc.org/sqlite surfaces it as error code 2067 / a message
// containing "UNIQUE constraint failed"; matching on the message avoids
// importing driver internals.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
