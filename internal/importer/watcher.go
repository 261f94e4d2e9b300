// Package importer watches a hot folder for dropped CSV files and hands
// them to the control loop for import.
package importer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay debounces write bursts: a file is announced only after no
// further events arrived for this long, so half-copied files are not
// imported.
const settleDelay = 500 * time.Millisecond

// Watch starts an fsnotify watcher on dir and sends the path of every
// settled *.csv file to paths until ctx is cancelled. Files already in the
// directory at startup are announced too. The receiver performs the
// actual import; this goroutine never touches the session.
func Watch(ctx context.Context, dir string, logger *slog.Logger, paths chan<- string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}
	logger.Info("importer: watching", slog.String("dir", dir))

	pending := make(map[string]struct{})
	var settleTimer *time.Timer
	var settleCh <-chan time.Time

	schedule := func(path string) {
		pending[path] = struct{}{}
		if settleTimer == nil {
			settleTimer = time.NewTimer(settleDelay)
			settleCh = settleTimer.C
		} else {
			settleTimer.Reset(settleDelay)
		}
	}

	// Pick up files dropped before startup.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() && isCSV(e.Name()) {
			schedule(filepath.Join(dir, e.Name()))
		}
	}

	for {
		select {
		case <-ctx.Done():
			if settleTimer != nil {
				settleTimer.Stop()
			}
			logger.Info("importer: stopped")
			return nil

		case <-settleCh:
			for path := range pending {
				delete(pending, path)
				if _, statErr := os.Stat(path); statErr != nil {
					continue // removed while settling
				}
				select {
				case paths <- path:
				case <-ctx.Done():
					return nil
				}
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !isCSV(ev.Name) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				logger.Debug("importer: file event", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
				schedule(ev.Name)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("importer: watch error", slog.String("error", watchErr.Error()))
		}
	}
}

func isCSV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}
