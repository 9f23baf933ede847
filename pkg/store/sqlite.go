package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Current schema version
const SchemaVersion = "1"

// SQLite is a SQLite-backed history store.
type SQLite struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite store at the given path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			id TEXT PRIMARY KEY,
			session TEXT NOT NULL DEFAULT '',
			expression TEXT NOT NULL,
			result TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			logs TEXT NOT NULL DEFAULT '',
			create_time TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS records_session ON records(session, create_time);
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLite{db: db}

	version, err := s.getMetadata("schema_version")
	if err != nil {
		db.Close()
		return nil, err
	}
	switch version {
	case "":
		if err := s.setMetadata("schema_version", SchemaVersion); err != nil {
			db.Close()
			return nil, err
		}
	case SchemaVersion:
	default:
		db.Close()
		return nil, fmt.Errorf("unsupported schema version: %s (expected %s)", version, SchemaVersion)
	}

	return s, nil
}

// Add appends a record.
func (s *SQLite) Add(rec *Record) error {
	_, err := s.db.Exec(`
		INSERT INTO records (id, session, expression, result, type, error, logs, create_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Session, rec.Expression, rec.Result, rec.Type, rec.Error,
		strings.Join(rec.Logs, "\n"), rec.CreateTime.Format(time.RFC3339Nano))
	return err
}

// History returns records newest first, optionally filtered by session.
func (s *SQLite) History(session string, limit int) ([]*Record, error) {
	query := "SELECT id, session, expression, result, type, error, logs, create_time FROM records"
	var args []any
	if session != "" {
		query += " WHERE session = ?"
		args = append(args, session)
	}
	query += " ORDER BY create_time DESC, id"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Record
	for rows.Next() {
		var rec Record
		var logs, created string
		if err := rows.Scan(&rec.ID, &rec.Session, &rec.Expression, &rec.Result,
			&rec.Type, &rec.Error, &logs, &created); err != nil {
			return nil, err
		}
		if logs != "" {
			rec.Logs = strings.Split(logs, "\n")
		}
		rec.CreateTime, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, err
		}
		result = append(result, &rec)
	}
	return result, rows.Err()
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) getMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *SQLite) setMetadata(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
