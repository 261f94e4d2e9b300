// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/starford/scanbox/internal/apperr"
	"github.com/starford/scanbox/internal/history"
	"github.com/starford/scanbox/internal/importer"
	"github.com/starford/scanbox/internal/scanservice"
	"github.com/starford/scanbox/internal/session"
	"github.com/starford/scanbox/internal/shell"
	"github.com/starford/scanbox/internal/snapshot"
	"github.com/starford/scanbox/internal/storage"
)

// App bundles the wired components for one process run.
type App struct {
	Config *Config
	Logger *slog.Logger
	Store  storage.Provider
	Svc    *scanservice.Service

	index *history.Index
}

// Build wires storage, the restored session, history and the service
// from cfg. A malformed snapshot is logged and replaced with a fresh
// session rather than failing startup.
func Build(cfg *Config) (*App, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	store, err := storage.NewFS(cfg.State.Dir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	hadSnapshot := store.Exists(snapshot.FileName)
	sess, err := snapshot.Load(store, logger)
	if err != nil {
		if !errors.Is(err, apperr.ErrDecode) {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		logger.Warn("snapshot unreadable, starting fresh", slog.String("error", err.Error()))
		sess = session.New()
		hadSnapshot = false
	}
	if !hadSnapshot {
		sess.SetStrict(cfg.Validation.Strict)
	}

	scanLog := history.NewLog(cfg.History.Dir, logger)

	var index *history.Index
	if cfg.History.IndexFile != "" {
		index, err = history.OpenIndex(filepath.Join(cfg.State.Dir, cfg.History.IndexFile))
		if err != nil {
			logger.Warn("history index unavailable", slog.String("error", err.Error()))
			index = nil
		}
	}

	opts := []scanservice.Option{
		scanservice.WithImportStrict(cfg.Import.Strict),
		scanservice.WithSheetPrefix(cfg.Export.SheetPrefix),
	}
	if index != nil {
		opts = append(opts, scanservice.WithIndex(index))
	}
	svc := scanservice.New(sess, store, scanLog, logger, opts...)

	boxes, items := sess.Summary()
	logger.Info("session loaded",
		slog.Int("boxes", boxes),
		slog.Int("items", items),
		slog.Bool("strict", sess.Strict()),
		slog.String("state_dir", cfg.State.Dir))

	return &App{Config: cfg, Logger: logger, Store: store, Svc: svc, index: index}, nil
}

// Close releases held resources.
func (a *App) Close() {
	if a.index != nil {
		_ = a.index.Close()
	}
}

// Run starts the interactive session loop with the given options. All
// session mutations happen on the control goroutine; the stdin reader
// and the hot-folder watcher only feed it.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	a, err := Build(app.config)
	if err != nil {
		return err
	}
	defer a.Close()
	cfg, logger := a.Config, a.Logger

	in := app.input
	if in == nil {
		in = os.Stdin
	}

	sh := shell.New(a.Svc, os.Stdout)
	lines := make(chan string)
	dropped := make(chan string, 8)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	// Input reader: EOF ends the session. Kept outside the group: Scan
	// on a terminal cannot be interrupted by cancellation, and shutdown
	// must not wait for one more keystroke.
	go func() {
		shell.ReadLines(gCtx, in, lines)
		cancel()
	}()

	// Optional hot-folder watcher.
	if cfg.Import.WatchDir != "" {
		g.Go(func() error {
			return importer.Watch(gCtx, cfg.Import.WatchDir, logger, dropped)
		})
	}

	// Control loop: the single goroutine allowed to mutate the session.
	g.Go(func() error {
		for {
			select {
			case <-gCtx.Done():
				if err := a.Svc.Save(); err != nil {
					logger.Error("final snapshot failed", slog.String("error", err.Error()))
				}
				return nil
			case line, ok := <-lines:
				if !ok {
					lines = nil
					continue
				}
				sh.Handle(line)
			case path := <-dropped:
				sh.ImportFile(path)
			}
		}
	})

	// Shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-gCtx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("application error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("session closed")
	return nil
}
