// Package watcher re-runs an export when the sources of a repository change.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/DeusData/funcgraph/internal/discover"
)

const (
	baseInterval = 1 * time.Second
	maxInterval  = 60 * time.Second
)

type fileSnapshot struct {
	modTime time.Time
	size    int64
}

// ExportFunc re-exports the repository.
type ExportFunc func(ctx context.Context) error

// Watcher polls one repository for file changes and triggers a full export.
// The first poll only records a baseline.
type Watcher struct {
	root     string
	opts     *discover.Options
	exportFn ExportFunc

	snapshot map[string]fileSnapshot
	interval time.Duration
	nextPoll time.Time
}

// New creates a Watcher for root. opts selects the same files the export
// sees, so edits to excluded files do not trigger a run.
func New(root string, opts *discover.Options, exportFn ExportFunc) *Watcher {
	return &Watcher{root: root, opts: opts, exportFn: exportFn}
}

// Run blocks until ctx is cancelled. Ticks at baseInterval, polling only
// when the adaptive interval has elapsed.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(baseInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if time.Now().Before(w.nextPoll) {
				continue
			}
			w.poll(ctx)
		}
	}
}

// poll captures a snapshot of the file tree and compares it with the
// previous one. A failed export keeps the old snapshot so the next cycle
// retries.
func (w *Watcher) poll(ctx context.Context) {
	if _, err := os.Stat(w.root); err != nil {
		slog.Warn("watcher.root_gone", "path", w.root)
		w.nextPoll = time.Now().Add(maxInterval)
		return
	}

	snap, err := captureSnapshot(ctx, w.root, w.opts)
	if err != nil {
		slog.Warn("watcher.snapshot", "path", w.root, "err", err)
		w.nextPoll = time.Now().Add(w.interval)
		return
	}
	interval := pollInterval(len(snap))

	if w.snapshot == nil {
		slog.Debug("watcher.baseline", "path", w.root, "files", len(snap))
		w.snapshot = snap
		w.interval = interval
		w.nextPoll = time.Now().Add(interval)
		return
	}

	if snapshotsEqual(w.snapshot, snap) {
		w.interval = interval
		w.nextPoll = time.Now().Add(interval)
		return
	}

	slog.Info("watcher.changed", "path", w.root, "files", len(snap))
	if err := w.exportFn(ctx); err != nil {
		slog.Warn("watcher.export", "path", w.root, "err", err)
		w.nextPoll = time.Now().Add(interval)
		return
	}

	w.snapshot = snap
	w.interval = interval
	w.nextPoll = time.Now().Add(interval)
}

// captureSnapshot records mtime and size of every discovered file.
func captureSnapshot(ctx context.Context, root string, opts *discover.Options) (map[string]fileSnapshot, error) {
	files, err := discover.Discover(ctx, root, opts)
	if err != nil {
		return nil, err
	}

	snap := make(map[string]fileSnapshot, len(files))
	for _, f := range files {
		info, statErr := os.Stat(f.Path)
		if statErr != nil {
			continue
		}
		snap[f.RelPath] = fileSnapshot{
			modTime: info.ModTime(),
			size:    info.Size(),
		}
	}
	return snap, nil
}

// snapshotsEqual returns true if two snapshots have identical files with same mtime+size.
func snapshotsEqual(a, b map[string]fileSnapshot) bool {
	if len(a) != len(b) {
		return false
	}
	for path, aSnap := range a {
		bSnap, ok := b[path]
		if !ok {
			return false
		}
		if !aSnap.modTime.Equal(bSnap.modTime) || aSnap.size != bSnap.size {
			return false
		}
	}
	return true
}

// pollInterval computes the adaptive interval from file count.
// 1s base + 1s per 500 files, capped at maxInterval.
func pollInterval(fileCount int) time.Duration {
	d := baseInterval + time.Duration(fileCount/500)*time.Second
	return min(d, maxInterval)
}
