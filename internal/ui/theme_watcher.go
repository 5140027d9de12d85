package ui

import (
	"context"
	"log/slog"
	"sync"

	dark "github.com/thiagokokada/dark-mode-go"

	"github.com/nickgarreis/superlane-sub004/internal/logging"
)

var uiLog = logging.ForComponent(logging.CompUI)

// ThemeWatcher follows OS dark mode while theme = "system"
type ThemeWatcher struct {
	changeCh  chan bool // true means dark
	closeCh   chan struct{}
	closeOnce sync.Once
}

// NewThemeWatcher returns nil when the OS offers no dark mode events
func NewThemeWatcher(parent context.Context) *ThemeWatcher {
	ctx, cancel := context.WithCancel(parent)
	events, errs, err := dark.WatchDarkMode(ctx)
	if err != nil {
		cancel()
		uiLog.Warn("theme_watcher_init_failed", slog.String("error", err.Error()))
		return nil
	}

	tw := &ThemeWatcher{
		changeCh: make(chan bool, 1),
		closeCh:  make(chan struct{}),
	}
	go tw.run(ctx, cancel, events, errs)
	return tw
}

func (tw *ThemeWatcher) run(ctx context.Context, cancel context.CancelFunc, events <-chan bool, errs <-chan error) {
	defer cancel()
	for {
		select {
		case <-tw.closeCh:
			return
		case <-ctx.Done():
			return
		case isDark, ok := <-events:
			if !ok {
				return
			}
			// Drop stale values so the palette only sees the latest mode
			select {
			case <-tw.changeCh:
			default:
			}
			tw.changeCh <- isDark
		case err, ok := <-errs:
			if ok && err != nil {
				uiLog.Warn("theme_watcher_error", slog.String("error", err.Error()))
			}
		}
	}
}

// Changes delivers dark mode flips
func (tw *ThemeWatcher) Changes() <-chan bool {
	return tw.changeCh
}

// Close stops the watcher. Safe to call multiple times.
func (tw *ThemeWatcher) Close() {
	tw.closeOnce.Do(func() {
		close(tw.closeCh)
	})
}

// themeFor maps a dark mode flag to a theme name for InitTheme
func themeFor(isDark bool) string {
	if isDark {
		return string(ThemeDark)
	}
	return string(ThemeLight)
}
