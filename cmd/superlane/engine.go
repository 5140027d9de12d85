package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nickgarreis/superlane-sub004/internal/config"
	"github.com/nickgarreis/superlane-sub004/internal/history"
	"github.com/nickgarreis/superlane-sub004/internal/search"
	"github.com/nickgarreis/superlane-sub004/internal/workspace"
)

// engine is everything a palette or query needs for one profile
type engine struct {
	profile       string
	workspacePath string
	snapshot      *workspace.Snapshot
	session       *search.Session
	limits        search.Limits
	store         *history.Store
}

// searchOptions maps [search] settings onto session options
func searchOptions(s config.SearchSettings) []search.Option {
	var opts []search.Option
	if s.DisableCache {
		opts = append(opts, search.WithoutCache())
	}
	if s.EscapeSignatures {
		opts = append(opts, search.WithSignatureEscaping())
	}
	return opts
}

func limitsFrom(s config.SearchSettings) search.Limits {
	return search.Limits{
		Projects: s.MaxProjectResults,
		Tasks:    s.MaxTaskResults,
		Files:    s.MaxFileResults,
		Actions:  s.MaxActionResults,
	}
}

func debounceFrom(s config.SearchSettings) time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// openEngine loads the snapshot and opens the profile history. explicitPath
// overrides the configured workspace location.
func openEngine(profile, explicitPath string) (*engine, error) {
	profile = config.GetEffectiveProfile(profile)
	path, err := config.ResolveWorkspacePath(explicitPath, profile)
	if err != nil {
		return nil, err
	}
	snap, err := workspace.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load workspace %s: %w", path, err)
	}

	store, err := history.OpenProfile(profile)
	if err != nil {
		return nil, err
	}

	settings := config.GetSearchSettings()
	e := &engine{
		profile:       profile,
		workspacePath: path,
		snapshot:      snap,
		session:       search.NewSession(searchOptions(settings)...),
		limits:        limitsFrom(settings),
		store:         store,
	}
	cliLog.Debug("engine_opened",
		slog.String("profile", profile),
		slog.String("workspace", path),
		slog.Int("projects", len(snap.Projects)))
	return e, nil
}

func (e *engine) Close() {
	e.session.Close()
	if err := e.store.Close(); err != nil {
		cliLog.Warn("history_close_failed", slog.String("error", err.Error()))
	}
}
