package history

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS scans (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	scanned_at TEXT NOT NULL,
	kind       TEXT NOT NULL,
	barcode    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scans_barcode ON scans(barcode);
`

// Index mirrors the scan log into SQLite so large sessions can be
// filtered without rescanning the file.
type Index struct {
	conn *sql.DB
}

// OpenIndex opens (or creates) the SQLite database and applies the schema.
func OpenIndex(dsn string) (*Index, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("history: open index: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: ping index: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}
	return &Index{conn: conn}, nil
}

// Close closes the underlying database connection.
func (ix *Index) Close() error {
	return ix.conn.Close()
}

// Append records one scan event.
func (ix *Index) Append(e Entry) error {
	_, err := ix.conn.Exec(
		`INSERT INTO scans (scanned_at, kind, barcode) VALUES (?, ?, ?)`,
		e.Timestamp.Format(timeLayout), string(e.Kind), e.Barcode,
	)
	if err != nil {
		return fmt.Errorf("history: insert scan: %w", err)
	}
	return nil
}

// Search returns entries whose timestamp, kind or barcode contains query,
// case-insensitively, in append order. An empty query returns everything.
// limit <= 0 means no limit.
func (ix *Index) Search(query string, limit int) ([]Entry, error) {
	q := `SELECT scanned_at, kind, barcode FROM scans`
	args := []any{}
	if query != "" {
		pat := "%" + escapeLike(query) + "%"
		q += ` WHERE scanned_at LIKE ? ESCAPE '\'
			OR kind LIKE ? ESCAPE '\'
			OR barcode LIKE ? ESCAPE '\'`
		args = append(args, pat, pat, pat)
	}
	q += ` ORDER BY id`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := ix.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("history: search: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var tsStr, kind, code string
		if err := rows.Scan(&tsStr, &kind, &code); err != nil {
			return nil, fmt.Errorf("history: scan row: %w", err)
		}
		ts, _ := time.ParseInLocation(timeLayout, tsStr, time.Local)
		out = append(out, Entry{Timestamp: ts, Kind: Kind(kind), Barcode: code})
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
