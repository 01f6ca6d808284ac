package monitor

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mcp-document-service/internal/models"
	"mcp-document-service/pkg/logging"
)

func testLogger() *logging.StructuredLogger {
	return logging.NewStructuredLoggerWithWriter("test", &bytes.Buffer{}, slog.LevelError)
}

func TestWatchDirectoryDeliversCreateEvent(t *testing.T) {
	dir := t.TempDir()

	om, err := NewOutputMonitor(testLogger())
	if err != nil {
		t.Fatalf("NewOutputMonitor() error: %v", err)
	}
	defer om.StopWatching()
	om.SetDebounceDelay(10 * time.Millisecond)

	events := make(chan models.FileEvent, 8)
	if err := om.WatchDirectory(dir, func(ev models.FileEvent) {
		events <- ev
	}); err != nil {
		t.Fatalf("WatchDirectory() error: %v", err)
	}

	path := filepath.Join(dir, "report.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 test"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-events:
		if ev.Path != path {
			t.Errorf("event path = %q, want %q", ev.Path, path)
		}
		if ev.Type != "create" && ev.Type != "modify" {
			t.Errorf("event type = %q", ev.Type)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for file event")
	}
}

func TestWatchDirectoryIgnoresUntrackedFormats(t *testing.T) {
	dir := t.TempDir()

	om, err := NewOutputMonitor(testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer om.StopWatching()
	om.SetDebounceDelay(10 * time.Millisecond)

	events := make(chan models.FileEvent, 8)
	if err := om.WatchDirectory(dir, func(ev models.FileEvent) {
		events <- ev
	}); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "scratch.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-events:
		t.Errorf("unexpected event for untracked format: %+v", ev)
	case <-time.After(300 * time.Millisecond):
		// no event: correct
	}
}

func TestWatchMissingDirectoryFails(t *testing.T) {
	om, err := NewOutputMonitor(testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer om.StopWatching()

	if err := om.WatchDirectory(filepath.Join(t.TempDir(), "absent"), func(models.FileEvent) {}); err == nil {
		t.Error("watching a missing directory should fail")
	}
}
