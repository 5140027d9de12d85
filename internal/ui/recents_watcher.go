package ui

import (
	"log/slog"
	"sync"
	"time"

	"github.com/nickgarreis/superlane-sub004/internal/logging"
)

var watcherLog = logging.ForComponent(logging.CompStorage)

// ChangeStamp reports a monotonically increasing modification stamp.
// history.Store satisfies it through the state.db metadata row.
type ChangeStamp interface {
	LastModified() (int64, error)
}

// RecentsWatcher notices recents written by another palette or by
// `superlane recents clear` by polling the store's change stamp.
type RecentsWatcher struct {
	src       ChangeStamp
	interval  time.Duration
	reloadCh  chan struct{}
	closeCh   chan struct{}
	closeOnce sync.Once

	mu           sync.Mutex
	lastModified int64
	lastSave     time.Time
}

// recentsPollInterval is how often the stamp is checked
const recentsPollInterval = 2 * time.Second

// ownSaveWindow must exceed the poll interval so the first poll after a
// palette's own write is always ignored.
const ownSaveWindow = 3 * time.Second

// NewRecentsWatcher returns nil when src is nil
func NewRecentsWatcher(src ChangeStamp) *RecentsWatcher {
	if src == nil {
		return nil
	}
	last, _ := src.LastModified()
	return &RecentsWatcher{
		src:          src,
		interval:     recentsPollInterval,
		lastModified: last,
		reloadCh:     make(chan struct{}, 1),
		closeCh:      make(chan struct{}),
	}
}

// Start begins polling
func (rw *RecentsWatcher) Start() {
	go rw.pollLoop()
}

func (rw *RecentsWatcher) pollLoop() {
	ticker := time.NewTicker(rw.interval)
	defer ticker.Stop()
	for {
		select {
		case <-rw.closeCh:
			return
		case <-ticker.C:
			rw.check()
		}
	}
}

func (rw *RecentsWatcher) check() {
	ts, err := rw.src.LastModified()
	if err != nil {
		watcherLog.Debug("recents_poll_failed", slog.String("error", err.Error()))
		return
	}

	rw.mu.Lock()
	changed := ts > rw.lastModified
	if changed {
		rw.lastModified = ts
	}
	own := time.Since(rw.lastSave) < ownSaveWindow
	rw.mu.Unlock()

	if !changed {
		return
	}
	if own {
		watcherLog.Debug("recents_ignoring_own_save")
		return
	}

	watcherLog.Debug("recents_changed", slog.Int64("stamp", ts))
	select {
	case rw.reloadCh <- struct{}{}:
	default:
	}
}

// Changes signals once per detected external change
func (rw *RecentsWatcher) Changes() <-chan struct{} {
	return rw.reloadCh
}

// NotifySave marks an upcoming write by this palette
func (rw *RecentsWatcher) NotifySave() {
	rw.mu.Lock()
	rw.lastSave = time.Now()
	rw.mu.Unlock()
}

// Close stops polling. Safe to call multiple times.
func (rw *RecentsWatcher) Close() {
	rw.closeOnce.Do(func() {
		close(rw.closeCh)
	})
}
