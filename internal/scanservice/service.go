// Package scanservice coordinates the session, snapshot store and scan
// history behind the operations the presentation layer calls.
package scanservice

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/starford/scanbox/internal/apperr"
	"github.com/starford/scanbox/internal/export"
	"github.com/starford/scanbox/internal/history"
	"github.com/starford/scanbox/internal/session"
	"github.com/starford/scanbox/internal/snapshot"
	"github.com/starford/scanbox/internal/storage"
)

// Service owns the single in-memory session and persists it around
// mutations. All calls must come from one goroutine; the service does no
// locking of its own.
type Service struct {
	sess         *session.Session
	store        storage.Provider
	log          *history.Log
	index        *history.Index // optional
	logger       *slog.Logger
	importStrict bool
	sheetPrefix  string
}

// Option configures a Service.
type Option func(*Service)

// WithIndex attaches the SQLite scan index used for history filtering.
func WithIndex(ix *history.Index) Option {
	return func(s *Service) { s.index = ix }
}

// WithImportStrict sets the validation mode used for CSV imports. The
// default is permissive so data exported under strict mode always
// re-imports even after the strictness setting changed.
func WithImportStrict(strict bool) Option {
	return func(s *Service) { s.importStrict = strict }
}

// WithSheetPrefix sets the spreadsheet sheet title prefix.
func WithSheetPrefix(prefix string) Option {
	return func(s *Service) { s.sheetPrefix = prefix }
}

// New creates a service around an already-loaded session.
func New(sess *session.Session, store storage.Provider, log *history.Log, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		sess:        sess,
		store:       store,
		log:         log,
		logger:      logger,
		sheetPrefix: "Box ",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session exposes the underlying session for read-side rendering.
func (s *Service) Session() *session.Session { return s.sess }

// OpenBox scans a box barcode: the box becomes current, the scan is
// logged, and the status line for the UI is returned.
func (s *Service) OpenBox(raw string) (string, error) {
	code, err := s.sess.OpenBox(raw)
	if err != nil {
		return "", err
	}
	s.recordScan(history.KindBox, code)
	return s.Status(), nil
}

// ScanItem scans an item barcode into the current box, logs the scan and
// snapshots the session. The count mutation stands even when the
// snapshot write fails; the write error is returned for reporting.
func (s *Service) ScanItem(raw string) error {
	code, err := s.sess.ScanItem(raw)
	if err != nil {
		return err
	}
	s.recordScan(history.KindItem, code)
	return s.persist()
}

// SetQuantity sets the absolute count of (box, item) and snapshots.
func (s *Service) SetQuantity(box, item string, qty int) error {
	s.sess.SetQuantity(box, item, qty)
	return s.persist()
}

// RenameBox moves a box to a new barcode and snapshots.
func (s *Service) RenameBox(old, new string) error {
	if err := s.sess.RenameBox(old, new); err != nil {
		return err
	}
	return s.persist()
}

// RenameItem moves an item to a new barcode within its box and snapshots.
func (s *Service) RenameItem(box, old, new string) error {
	if err := s.sess.RenameItem(box, old, new); err != nil {
		return err
	}
	return s.persist()
}

// DeleteBox removes a box with its comments and snapshots.
func (s *Service) DeleteBox(box string) error {
	s.sess.DeleteBox(box)
	return s.persist()
}

// DeleteItem removes one item (cascading to the box when it empties) and
// snapshots.
func (s *Service) DeleteItem(box, item string) error {
	s.sess.DeleteItem(box, item)
	return s.persist()
}

// SetComment upserts a comment and snapshots.
func (s *Service) SetComment(box, sub, text string) error {
	s.sess.SetComment(box, sub, text)
	return s.persist()
}

// SetStrict toggles strict validation and snapshots, since the flag is
// part of the persisted settings.
func (s *Service) SetStrict(strict bool) error {
	s.sess.SetStrict(strict)
	return s.persist()
}

// Filter stores the query and returns the matching rows.
func (s *Service) Filter(query string) []session.Row {
	s.sess.SetSearch(query)
	return s.sess.Filter(query)
}

// Summary returns the box count and total item count.
func (s *Service) Summary() (int, int) {
	return s.sess.Summary()
}

// Status returns the current-status line for the UI.
func (s *Service) Status() string {
	if box := s.sess.CurrentBox(); box != "" {
		return "current box: " + box
	}
	return "no box open"
}

// Reset clears the session and snapshots the now-empty state.
func (s *Service) Reset() error {
	s.sess.Reset()
	return s.persist()
}

// Save writes the snapshot explicitly (shutdown, menu action).
func (s *Service) Save() error {
	return s.persist()
}

// ExportCSV writes the session rows to w.
func (s *Service) ExportCSV(w io.Writer) error {
	if boxes, _ := s.sess.Summary(); boxes == 0 {
		return apperr.ErrNoData
	}
	return export.WriteCSV(w, s.sess)
}

// ExportXLSX writes the one-sheet-per-box workbook to w.
func (s *Service) ExportXLSX(w io.Writer) error {
	if boxes, _ := s.sess.Summary(); boxes == 0 {
		return apperr.ErrNoData
	}
	return export.WriteXLSX(w, s.sess, s.sheetPrefix)
}

// ImportCSV reads rows from r into the session. With merge false the
// session is replaced; with merge true quantities are summed into the
// existing data. Row-level problems come back as warnings, never as an
// error. The open box is cleared either way.
func (s *Service) ImportCSV(r io.Reader, merge bool) ([]export.Warning, error) {
	rows, warnings, err := export.ReadCSV(r)
	if err != nil {
		return nil, err
	}
	imported, importWarnings := export.Import(rows, s.importStrict)
	warnings = append(warnings, importWarnings...)

	if !merge {
		s.sess.Reset()
	}
	s.sess.Merge(imported)
	s.sess.SetCurrent("")

	for _, w := range warnings {
		s.logger.Warn("import: row skipped", slog.Int("line", w.Line), slog.String("reason", w.Message))
	}
	if err := s.persist(); err != nil {
		return warnings, err
	}
	return warnings, nil
}

// History returns scan entries filtered by query, newest last. The SQLite
// index serves the query when attached, otherwise the log file is
// rescanned.
func (s *Service) History(query string, limit int) ([]history.Entry, error) {
	if s.index != nil {
		return s.index.Search(query, limit)
	}
	entries, err := s.log.Filter(query)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *Service) persist() error {
	if err := snapshot.Save(s.store, s.sess); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// recordScan appends to the history log and index. History is a
// diagnostic record, not the source of truth, so failures are logged and
// the scan itself stands.
func (s *Service) recordScan(kind history.Kind, code string) {
	if err := s.log.Append(kind, code); err != nil {
		s.logger.Warn("history: append failed", slog.String("error", err.Error()))
	}
	if s.index != nil {
		err := s.index.Append(history.Entry{Timestamp: time.Now(), Kind: kind, Barcode: code})
		if err != nil {
			s.logger.Warn("history: index append failed", slog.String("error", err.Error()))
		}
	}
}
