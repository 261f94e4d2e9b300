// Package testutil provides shared test helpers for setting up state
// directories and history databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/scanbox/internal/history"
	"github.com/starford/scanbox/internal/storage"
)

// TestLogger returns a logger that discards everything.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestStore creates a temporary state directory with a storage.Provider.
func TestStore(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// TestIndex creates a temporary history index that is automatically
// cleaned up.
func TestIndex(t *testing.T) *history.Index {
	t.Helper()
	dbFile, err := os.CreateTemp("", "scanbox-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	ix, err := history.OpenIndex(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}
