// Package storage owns the local SQLite database: the known-entities
// roster and the chat/turn history live here. The triple store holds the
// semantic memory; this file holds the social bookkeeping.
package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const SchemaVersion = 1

// DB represents the database connection.
type DB struct {
	conn *sql.DB
}

// Open creates or opens the SQLite database at the given path, enables WAL
// mode and runs migrations.
func Open(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=10000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(1) // one writer at a time

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// migrate applies schema versions incrementally, tracked via user_version.
func (db *DB) migrate() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var version int
	if err := tx.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return err
	}

	for version < SchemaVersion {
		version++
		switch version {
		case 1:
			if err := applySchemaV1(tx); err != nil {
				return fmt.Errorf("failed to apply schema v%d: %w", version, err)
			}
		default:
			return fmt.Errorf("unknown schema version: %d", version)
		}
	}

	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

func applySchemaV1(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS roster (
			name TEXT PRIMARY KEY,
			met_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS utterances (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat TEXT NOT NULL,
			turn INTEGER NOT NULL,
			speaker TEXT NOT NULL,
			utterance TEXT NOT NULL,
			reply TEXT NOT NULL,
			capsule_json TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			UNIQUE(chat, turn)
		);
		CREATE INDEX IF NOT EXISTS idx_utterances_chat ON utterances(chat, turn);
	`)
	return err
}

// Conn exposes the underlying connection to the sibling services; the DB
// does not leave internal packages.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
