package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DeusData/funcgraph/internal/discover"
)

func TestSnapshotsEqual(t *testing.T) {
	now := time.Now()

	a := map[string]fileSnapshot{
		"main.go": {modTime: now, size: 100},
		"util.c":  {modTime: now, size: 200},
	}
	tests := []struct {
		name  string
		other map[string]fileSnapshot
		equal bool
	}{
		{"identical", map[string]fileSnapshot{"main.go": {now, 100}, "util.c": {now, 200}}, true},
		{"size", map[string]fileSnapshot{"main.go": {now, 101}, "util.c": {now, 200}}, false},
		{"mtime", map[string]fileSnapshot{"main.go": {now.Add(time.Second), 100}, "util.c": {now, 200}}, false},
		{"missing", map[string]fileSnapshot{"main.go": {now, 100}}, false},
		{"renamed", map[string]fileSnapshot{"main.go": {now, 100}, "util.h": {now, 200}}, false},
	}
	for _, tt := range tests {
		if got := snapshotsEqual(a, tt.other); got != tt.equal {
			t.Errorf("%s: snapshotsEqual = %v, want %v", tt.name, got, tt.equal)
		}
	}
	if !snapshotsEqual(map[string]fileSnapshot{}, map[string]fileSnapshot{}) {
		t.Error("both empty should be equal")
	}
}

func TestPollInterval(t *testing.T) {
	tests := []struct {
		files    int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{499, 1 * time.Second},
		{500, 2 * time.Second},
		{2000, 5 * time.Second},
		{10000, 21 * time.Second},
		{50000, 60 * time.Second},
	}
	for _, tt := range tests {
		got := pollInterval(tt.files)
		if got != tt.expected {
			t.Errorf("pollInterval(%d) = %v, want %v", tt.files, got, tt.expected)
		}
	}
}

func TestCaptureSnapshotHonoursOptions(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"main.go", "lib.c", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte("x\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	snap, err := captureSnapshot(context.Background(), tmpDir, &discover.Options{Exclude: []string{"*.c"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(snap) != 1 {
		t.Fatalf("expected 1 file, got %d", len(snap))
	}
	s, ok := snap["main.go"]
	if !ok || s.size == 0 || s.modTime.IsZero() {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func setup(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	file := filepath.Join(dir, "main.c")
	if err := os.WriteFile(file, []byte("int main(void) { return 0; }\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return dir, file
}

func TestWatcherTriggersOnChange(t *testing.T) {
	dir, file := setup(t)
	var runs atomic.Int32
	w := New(dir, nil, func(context.Context) error {
		runs.Add(1)
		return nil
	})
	ctx := context.Background()

	w.poll(ctx)
	if runs.Load() != 0 {
		t.Errorf("first poll should not trigger export, got %d", runs.Load())
	}
	w.poll(ctx)
	if runs.Load() != 0 {
		t.Errorf("no-change poll should not trigger export, got %d", runs.Load())
	}

	now := time.Now().Add(time.Second)
	if err := os.Chtimes(file, now, now); err != nil {
		t.Fatal(err)
	}
	w.poll(ctx)
	if runs.Load() != 1 {
		t.Errorf("changed file should trigger export, got %d", runs.Load())
	}
	w.poll(ctx)
	if runs.Load() != 1 {
		t.Errorf("snapshot should be updated after export, got %d", runs.Load())
	}
}

func TestWatcherRetriesFailedExport(t *testing.T) {
	dir, _ := setup(t)
	var runs atomic.Int32
	w := New(dir, nil, func(context.Context) error {
		runs.Add(1)
		return errors.New("store busy")
	})
	ctx := context.Background()

	w.poll(ctx)
	if err := os.WriteFile(filepath.Join(dir, "util.go"), []byte("package main\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	w.poll(ctx)
	w.poll(ctx)
	if runs.Load() != 2 {
		t.Errorf("failed export should be retried, got %d runs", runs.Load())
	}
}

func TestWatcherSkipsMissingRoot(t *testing.T) {
	var runs atomic.Int32
	w := New("/nonexistent/path", nil, func(context.Context) error {
		runs.Add(1)
		return nil
	})
	w.poll(context.Background())
	if runs.Load() != 0 {
		t.Errorf("should not export a missing root, got %d", runs.Load())
	}
	if time.Until(w.nextPoll) < maxInterval/2 {
		t.Error("missing root should back off")
	}
}

func TestWatcherCancellation(t *testing.T) {
	dir, _ := setup(t)
	w := New(dir, nil, func(context.Context) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not stop after context cancellation")
	}
}
