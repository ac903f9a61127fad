package main

import (
	"database/sql"
	"errors"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS high_scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		score INTEGER NOT NULL,
		wallet TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_high_scores_rank ON high_scores(score DESC, id ASC);
	`
	_, err := db.conn.Exec(schema)
	if err != nil {
		log.Printf("DB migration error: %v", err)
	}
	return err
}

// GetSetting returns a stored setting, or "" if it is not set
func (db *DB) GetSetting(key string) string {
	var v string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&v)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("settings: read %s: %v", key, err)
		}
		return ""
	}
	return v
}

// SetSetting stores a setting, replacing any previous value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// HighScoreRow is one persisted high-score submission
type HighScoreRow struct {
	Name      string
	Score     int
	Wallet    string
	CreatedAt time.Time
}

// InsertHighScores writes a batch of rows in one transaction and trims the
// table back to the best keep rows.
func (db *DB) InsertHighScores(rows []HighScoreRow, keep int) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO high_scores (name, score, wallet, created_at) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.Name, r.Score, r.Wallet, r.CreatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return err
		}
	}

	_, err = tx.Exec(`
		DELETE FROM high_scores WHERE id NOT IN (
			SELECT id FROM high_scores ORDER BY score DESC, id ASC LIMIT ?
		)`, keep)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// TopHighScores returns the best rows, ties broken by submission order
func (db *DB) TopHighScores(limit int) ([]HighScoreRow, error) {
	rows, err := db.conn.Query(
		"SELECT name, score, wallet, created_at FROM high_scores ORDER BY score DESC, id ASC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []HighScoreRow
	for rows.Next() {
		var r HighScoreRow
		var created string
		if err := rows.Scan(&r.Name, &r.Score, &r.Wallet, &created); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		result = append(result, r)
	}
	return result, rows.Err()
}

// ClearHighScores deletes every stored submission
func (db *DB) ClearHighScores() error {
	_, err := db.conn.Exec("DELETE FROM high_scores")
	return err
}
