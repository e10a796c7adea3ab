package audit

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/a01110946/RhinoMCP/internal/logx"
)

// SQLiteRecorder persists entries to a local SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the audit database at path.
func OpenSQLite(path string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping audit database: %w", err)
	}

	rec := &SQLiteRecorder{db: db}
	if err := rec.init(); err != nil {
		db.Close()
		return nil, err
	}
	return rec, nil
}

func (r *SQLiteRecorder) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS commands (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts TEXT NOT NULL,
		conn_id TEXT NOT NULL,
		command TEXT NOT NULL,
		status TEXT NOT NULL,
		message TEXT
	);
	`
	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create commands table: %w", err)
	}
	return nil
}

// Record implements Recorder. A failed insert is logged and dropped; the
// command flow is never interrupted by the audit trail.
func (r *SQLiteRecorder) Record(e Entry) {
	query := `INSERT INTO commands (ts, conn_id, command, status, message) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.Exec(query, e.Time.UTC().Format("2006-01-02T15:04:05.000Z"), e.ConnID, e.Command, e.Status, e.Message)
	if err != nil {
		logx.Log.Warn().Err(err).Str("command", e.Command).Msg("failed to record audit entry")
	}
}

// Recent returns up to limit entries, newest first.
func (r *SQLiteRecorder) Recent(limit int) ([]Entry, error) {
	query := `SELECT ts, conn_id, command, status, message FROM commands ORDER BY id DESC LIMIT ?`
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts string
		if err := rows.Scan(&ts, &e.ConnID, &e.Command, &e.Status, &e.Message); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.Time, _ = parseTimestamp(ts)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}

func parseTimestamp(ts string) (time.Time, error) {
	return time.Parse("2006-01-02T15:04:05.000Z", ts)
}
