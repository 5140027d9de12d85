package statedb

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// jsonRecentsExport mirrors the recents export written by the web dashboard
// (its local storage dump), oldest entries last.
type jsonRecentsExport struct {
	RecentItems    []jsonRecentItem `json:"recentItems"`
	RecentSearches []string         `json:"recentSearches"`
}

type jsonRecentItem struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	ProjectID string `json:"projectId,omitempty"`
	Title     string `json:"title,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"` // epoch milliseconds
}

// MigrateFromJSON imports a dashboard recents export into db.
// Returns the number of items and searches imported.
func MigrateFromJSON(jsonPath string, db *StateDB) (int, int, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, 0, fmt.Errorf("read json: %w", err)
	}

	var export jsonRecentsExport
	if err := json.Unmarshal(data, &export); err != nil {
		return 0, 0, fmt.Errorf("parse json: %w", err)
	}

	// Entries are most recent first; synthesize decreasing timestamps for
	// entries that carry none so the order survives.
	base := time.Now()
	items := 0
	for i := len(export.RecentItems) - 1; i >= 0; i-- {
		it := export.RecentItems[i]
		if it.ID == "" || it.Type == "" {
			continue
		}
		usedAt := base.Add(-time.Duration(i) * time.Millisecond)
		if it.Timestamp > 0 {
			usedAt = time.UnixMilli(it.Timestamp)
		}
		if err := db.AddRecentItem(RecentItemRow{
			ItemID:    it.ID,
			Type:      it.Type,
			ProjectID: it.ProjectID,
			Title:     it.Title,
			UsedAt:    usedAt,
		}, 0); err != nil {
			return items, 0, fmt.Errorf("save item %s: %w", it.ID, err)
		}
		items++
	}

	searches := 0
	for i := len(export.RecentSearches) - 1; i >= 0; i-- {
		q := export.RecentSearches[i]
		if q == "" {
			continue
		}
		if err := db.AddRecentSearch(q, base.Add(-time.Duration(i)*time.Millisecond), 0); err != nil {
			return items, searches, fmt.Errorf("save search: %w", err)
		}
		searches++
	}

	return items, searches, nil
}
