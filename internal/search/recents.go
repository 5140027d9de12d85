package search

import (
	"strings"
	"sync"
	"time"
)

// Recent item types
const (
	RecentProject = "project"
	RecentTask    = "task"
)

// RecentItem is a previously activated project or task
type RecentItem struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	ProjectID string    `json:"projectId,omitempty"`
	Title     string    `json:"title,omitempty"`
	At        time.Time `json:"at"`
}

// Key identifies the item for deduplication
func (r RecentItem) Key() string {
	if r.Type == RecentTask {
		return RecentTask + ":" + TaskKey(r.ProjectID, r.ID)
	}
	return r.Type + ":" + r.ID
}

// RecentStore keeps recent selections and search terms, most recent first
type RecentStore interface {
	AddRecentItem(item RecentItem) error
	AddRecentSearch(query string) error
	RecentItems() ([]RecentItem, error)
	RecentSearches() ([]string, error)
}

// MemoryRecents is a RecentStore living only as long as the process
type MemoryRecents struct {
	mu          sync.Mutex
	maxItems    int
	maxSearches int
	items       []RecentItem
	searches    []string
}

// NewMemoryRecents creates an in-memory store. Non-positive caps mean 10.
func NewMemoryRecents(maxItems, maxSearches int) *MemoryRecents {
	if maxItems <= 0 {
		maxItems = 10
	}
	if maxSearches <= 0 {
		maxSearches = 10
	}
	return &MemoryRecents{maxItems: maxItems, maxSearches: maxSearches}
}

func (m *MemoryRecents) AddRecentItem(item RecentItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item.At.IsZero() {
		item.At = time.Now()
	}
	key := item.Key()
	next := make([]RecentItem, 0, len(m.items)+1)
	next = append(next, item)
	for _, it := range m.items {
		if it.Key() != key {
			next = append(next, it)
		}
	}
	if len(next) > m.maxItems {
		next = next[:m.maxItems]
	}
	m.items = next
	return nil
}

func (m *MemoryRecents) AddRecentSearch(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	next := make([]string, 0, len(m.searches)+1)
	next = append(next, query)
	for _, s := range m.searches {
		if s != query {
			next = append(next, s)
		}
	}
	if len(next) > m.maxSearches {
		next = next[:m.maxSearches]
	}
	m.searches = next
	return nil
}

func (m *MemoryRecents) RecentItems() ([]RecentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RecentItem(nil), m.items...), nil
}

func (m *MemoryRecents) RecentSearches() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.searches...), nil
}
