package internal

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"
)

func testRunConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.State.Dir = filepath.Join(dir, "state")
	cfg.History.Dir = filepath.Join(dir, "logs")
	cfg.History.IndexFile = ""
	return cfg
}

// Shutdown must not wait for operator input: a cancel while the reader
// sits on a silent terminal still lets Run write the final snapshot and
// return.
func TestRun_ReturnsOnCancelWhileInputBlocked(t *testing.T) {
	cfg := testRunConfig(t)

	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- Run(ctx, WithConfig(cfg), WithInput(pr)) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run still blocked 2s after cancellation")
	}
}

func TestRun_ReturnsOnInputEOF(t *testing.T) {
	cfg := testRunConfig(t)

	pr, pw := io.Pipe()
	go func() {
		time.Sleep(50 * time.Millisecond)
		pw.Close()
	}()

	done := make(chan error, 1)
	go func() { done <- Run(context.Background(), WithConfig(cfg), WithInput(pr)) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not exit on input EOF")
	}
}
