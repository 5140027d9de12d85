// Package history persists palette recents (selected projects and tasks,
// submitted searches) per profile in SQLite.
package history

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nickgarreis/superlane-sub004/internal/config"
	"github.com/nickgarreis/superlane-sub004/internal/logging"
	"github.com/nickgarreis/superlane-sub004/internal/search"
	"github.com/nickgarreis/superlane-sub004/internal/statedb"
)

var storageLog = logging.ForComponent(logging.CompStorage)

// LegacyRecentsFile is a dashboard recents export imported on first open
const LegacyRecentsFile = "recents.json"

var timeNow = time.Now

// Store is a search.RecentStore backed by the profile's state.db
type Store struct {
	db          *statedb.StateDB
	dbPath      string
	profile     string
	maxItems    int
	maxSearches int
	mu          sync.Mutex
}

var _ search.RecentStore = (*Store)(nil)

// OpenProfile opens the history of a profile. Empty profile means the
// effective profile. A recents.json export next to the database is imported
// when the database is still empty.
func OpenProfile(profile string) (*Store, error) {
	effective := config.GetEffectiveProfile(profile)
	dbPath, err := config.GetStateDBPath(effective)
	if err != nil {
		return nil, err
	}
	s, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	s.profile = effective
	return s, nil
}

// Open opens the history stored at dbPath with caps from config
func Open(dbPath string) (*Store, error) {
	db, err := statedb.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate state database: %w", err)
	}

	importLegacy(db, filepath.Join(filepath.Dir(dbPath), LegacyRecentsFile))

	caps := config.GetRecentsSettings()
	return &Store{
		db:          db,
		dbPath:      dbPath,
		maxItems:    caps.MaxItems,
		maxSearches: caps.MaxSearches,
	}, nil
}

func importLegacy(db *statedb.StateDB, jsonPath string) {
	if _, err := os.Stat(jsonPath); err != nil {
		return
	}
	empty, err := db.IsEmpty()
	if err != nil || !empty {
		return
	}
	items, searches, err := statedb.MigrateFromJSON(jsonPath, db)
	if err != nil {
		// Continue with empty history rather than failing the palette
		storageLog.Warn("recents_import_failed", slog.String("error", err.Error()))
		return
	}
	storageLog.Info("recents_imported",
		slog.Int("items", items),
		slog.Int("searches", searches))
	if err := os.Rename(jsonPath, jsonPath+".migrated"); err != nil {
		storageLog.Warn("recents_rename_failed", slog.String("error", err.Error()))
	}
}

// SetLimits overrides the configured caps. Non-positive values keep the
// current cap.
func (s *Store) SetLimits(maxItems, maxSearches int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if maxItems > 0 {
		s.maxItems = maxItems
	}
	if maxSearches > 0 {
		s.maxSearches = maxSearches
	}
}

func (s *Store) limits() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxItems, s.maxSearches
}

// Profile returns the profile this store belongs to
func (s *Store) Profile() string {
	return s.profile
}

// Path returns the database path
func (s *Store) Path() string {
	return s.dbPath
}

// LastModified exposes the database change stamp for polling
func (s *Store) LastModified() (int64, error) {
	return s.db.LastModified()
}

func (s *Store) AddRecentItem(item search.RecentItem) error {
	maxItems, _ := s.limits()
	return s.db.AddRecentItem(statedb.RecentItemRow{
		ItemID:    item.ID,
		Type:      item.Type,
		ProjectID: item.ProjectID,
		Title:     item.Title,
		UsedAt:    item.At,
	}, maxItems)
}

func (s *Store) AddRecentSearch(query string) error {
	if query == "" {
		return nil
	}
	_, maxSearches := s.limits()
	return s.db.AddRecentSearch(query, timeNow(), maxSearches)
}

func (s *Store) RecentItems() ([]search.RecentItem, error) {
	maxItems, _ := s.limits()
	rows, err := s.db.LoadRecentItems(maxItems)
	if err != nil {
		return nil, err
	}
	items := make([]search.RecentItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, search.RecentItem{
			ID:        r.ItemID,
			Type:      r.Type,
			ProjectID: r.ProjectID,
			Title:     r.Title,
			At:        r.UsedAt,
		})
	}
	return items, nil
}

func (s *Store) RecentSearches() ([]string, error) {
	_, maxSearches := s.limits()
	rows, err := s.db.LoadRecentSearches(maxSearches)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Query)
	}
	return out, nil
}

// Clear deletes all recents
func (s *Store) Clear() error {
	return s.db.ClearRecents()
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
