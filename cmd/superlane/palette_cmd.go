package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/nickgarreis/superlane-sub004/internal/config"
	"github.com/nickgarreis/superlane-sub004/internal/platform"
	"github.com/nickgarreis/superlane-sub004/internal/ui"
	"github.com/nickgarreis/superlane-sub004/internal/workspace"
)

var errNotTerminal = errors.New("the palette needs a terminal; use `superlane query` for scripts")

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func handlePalette(profile string, args []string) int {
	fs := flag.NewFlagSet("palette", flag.ExitOnError)
	workspacePath := fs.String("workspace", "", "Snapshot file or directory")
	workspaceShort := fs.String("w", "", "Snapshot file or directory (short)")
	active := fs.String("active", "", "Project that unattached files open in")
	noWatch := fs.Bool("no-watch", false, "Do not reload when the snapshot changes")
	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		return 1
	}

	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", errNotTerminal)
		return 1
	}

	path := *workspacePath
	if path == "" {
		path = *workspaceShort
	}
	if err := runPalette(profile, path, *active, !*noWatch); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func runPalette(profile, path, activeID string, watch bool) error {
	e, err := openEngine(profile, path)
	if err != nil {
		return err
	}
	defer e.Close()

	ui.InitTheme(config.ResolveTheme())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := ui.Options{
		Snapshot:        e.snapshot,
		Session:         e.session,
		Recents:         e.store,
		Limits:          e.limits,
		ActiveProjectID: activeID,
		Debounce:        debounceFrom(config.GetSearchSettings()),
	}

	ws := config.GetWorkspaceSettings()
	if watch && ws.GetWatch() {
		if support := platform.CheckWatchSupport(e.workspacePath); support.Warning != "" {
			cliLog.Warn("workspace_watch_limited",
				slog.String("fs_type", support.FSType),
				slog.String("platform", platform.Detect().String()))
			fmt.Fprintf(os.Stderr, "Warning: %s\n", support.Warning)
			watch = !support.Disabled
		}
	}
	if watch && ws.GetWatch() {
		w, err := workspace.NewWatcher(e.workspacePath, float64(ws.ReloadPerSecond))
		if err != nil {
			// The palette still works on the loaded snapshot
			cliLog.Warn("workspace_watch_failed", slog.String("error", err.Error()))
		} else {
			w.Start()
			defer w.Close()
			opts.Watcher = w
		}
	}

	if rw := ui.NewRecentsWatcher(e.store); rw != nil {
		rw.Start()
		defer rw.Close()
		opts.RecentsWatcher = rw
	}

	if config.GetTheme() == "system" {
		if tw := ui.NewThemeWatcher(ctx); tw != nil {
			defer tw.Close()
			opts.ThemeWatcher = tw
		}
	}

	palette := ui.NewPalette(opts)
	if _, err := tea.NewProgram(palette, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("palette: %w", err)
	}

	// The host acts on these after the palette has exited
	for _, call := range palette.Calls() {
		fmt.Println(call)
	}
	return nil
}
