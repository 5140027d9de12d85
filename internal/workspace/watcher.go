package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/nickgarreis/superlane-sub004/internal/logging"
)

// DefaultReloadPerSecond bounds how often a changing snapshot is reloaded
const DefaultReloadPerSecond = 4.0

// Watcher reloads a snapshot whenever its file (or directory) changes and
// publishes the latest one on Updates. Bursts of events collapse into one
// reload, and reloads are rate limited.
type Watcher struct {
	path    string
	isDir   bool
	watcher *fsnotify.Watcher
	limiter *rate.Limiter
	group   singleflight.Group

	updates chan *Snapshot
	errs    chan error

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewWatcher prepares a watcher for path. Call Start to begin watching.
func NewWatcher(path string, reloadPerSecond float64) (*Watcher, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat workspace: %w", err)
	}
	if reloadPerSecond <= 0 {
		reloadPerSecond = DefaultReloadPerSecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Editors replace files by rename, so watch the containing directory
	dir := path
	if !info.IsDir() {
		dir = filepath.Dir(path)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		path:    path,
		isDir:   info.IsDir(),
		watcher: fsw,
		limiter: rate.NewLimiter(rate.Limit(reloadPerSecond), 1),
		updates: make(chan *Snapshot, 1),
		errs:    make(chan error, 1),
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Updates delivers freshly loaded snapshots. Only the newest undelivered
// snapshot is kept.
func (w *Watcher) Updates() <-chan *Snapshot {
	return w.updates
}

// Errors delivers reload failures. Only the newest undelivered error is kept.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Start begins watching in a goroutine
func (w *Watcher) Start() {
	go w.loop()
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if timer != nil {
				continue // reload already scheduled
			}
			r := w.limiter.Reserve()
			timer = time.NewTimer(r.Delay())
			timerC = timer.C

		case <-timerC:
			timer, timerC = nil, nil
			snap, err := w.Reload()
			if err != nil {
				workspaceLog.Warn("workspace_reload_failed",
					slog.String("path", w.path),
					slog.String("error", err.Error()))
				publish(w.errs, err)
				continue
			}
			publish(w.updates, snap)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			workspaceLog.Warn("workspace_watcher_error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	if w.isDir {
		switch filepath.Base(event.Name) {
		case ProjectsFile, TasksFile, FilesFile:
			return true
		}
		return false
	}
	return filepath.Clean(event.Name) == filepath.Clean(w.path)
}

// Reload loads the snapshot now. Concurrent calls share one load.
func (w *Watcher) Reload() (*Snapshot, error) {
	v, err, shared := w.group.Do("reload", func() (any, error) {
		return LoadContext(w.ctx, w.path)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logging.Aggregate(logging.CompWorkspace, "reload_shared")
	}
	return v.(*Snapshot), nil
}

// publish replaces any undelivered value with v
func publish[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Close stops watching. Safe to call multiple times.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.cancel()
		err = w.watcher.Close()
	})
	return err
}
