// Package history records every raw scan in an append-only per-session
// log, with a SQLite mirror for filtered reads.
package history

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Kind is the scanned barcode role as written to the log.
type Kind string

const (
	KindBox  Kind = "BOX"
	KindItem Kind = "ITEM"
)

// timeLayout is the local-datetime format used in log lines and file names.
const (
	timeLayout     = "2006-01-02 15:04:05"
	fileNameLayout = "20060102_150405"
)

// Entry is one scan event. Entries are never mutated or deleted, only
// filtered at read time.
type Entry struct {
	Timestamp time.Time
	Kind      Kind
	Barcode   string
}

// Log appends scan events to a plain-text file, one line per event:
//
//	<local-datetime> - <KIND>: <barcode>
//
// The file is created lazily on the first scan and named from the
// session start timestamp.
type Log struct {
	dir    string
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// NewLog returns a log writing under dir.
func NewLog(dir string, logger *slog.Logger) *Log {
	return &Log{dir: dir, logger: logger, now: time.Now}
}

// Path returns the session log file path, or "" before the first append.
func (l *Log) Path() string { return l.path }

// Append writes one scan event, creating the session file on first use.
func (l *Log) Append(kind Kind, code string) error {
	ts := l.now()
	if l.path == "" {
		if err := os.MkdirAll(l.dir, 0o755); err != nil {
			return fmt.Errorf("history: create log dir: %w", err)
		}
		l.path = filepath.Join(l.dir, "scan_history_"+ts.Format(fileNameLayout)+".log")
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("history: open log: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s - %s: %s\n", ts.Format(timeLayout), kind, code)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("history: append: %w", err)
	}
	return nil
}

// ReadAll parses the session log back into entries. Malformed lines are
// skipped with a warning, not fatal.
func (l *Log) ReadAll() ([]Entry, error) {
	if l.path == "" {
		return nil, nil
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("history: open log: %w", err)
	}
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		e, ok := parseLine(line)
		if !ok {
			l.logger.Warn("history: skipping malformed line", slog.String("line", line))
			continue
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return entries, fmt.Errorf("history: read log: %w", err)
	}
	return entries, nil
}

// Filter returns the entries matching query against any field,
// case-insensitively. An empty query returns everything.
func (l *Log) Filter(query string) ([]Entry, error) {
	entries, err := l.ReadAll()
	if err != nil {
		return nil, err
	}
	if query == "" {
		return entries, nil
	}
	q := strings.ToLower(query)
	var out []Entry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Timestamp.Format(timeLayout)), q) ||
			strings.Contains(strings.ToLower(string(e.Kind)), q) ||
			strings.Contains(strings.ToLower(e.Barcode), q) {
			out = append(out, e)
		}
	}
	return out, nil
}

func parseLine(line string) (Entry, bool) {
	tsPart, rest, ok := strings.Cut(line, " - ")
	if !ok {
		return Entry{}, false
	}
	kindPart, code, ok := strings.Cut(rest, ": ")
	if !ok {
		return Entry{}, false
	}
	ts, err := time.ParseInLocation(timeLayout, strings.TrimSpace(tsPart), time.Local)
	if err != nil {
		return Entry{}, false
	}
	return Entry{
		Timestamp: ts,
		Kind:      Kind(strings.ToUpper(strings.TrimSpace(kindPart))),
		Barcode:   strings.TrimSpace(code),
	}, true
}
