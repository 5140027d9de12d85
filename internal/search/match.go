package search

import (
	"log/slog"
	"strings"

	"github.com/nickgarreis/superlane-sub004/internal/logging"
)

// Matches holds the first-N matches per kind, each in index order
type Matches struct {
	Query    string
	Projects []ProjectEntry
	Tasks    []TaskEntry
	Files    []FileEntry
	Actions  []QuickAction
}

// Total is the number of matches across all kinds
func (m Matches) Total() int {
	return len(m.Projects) + len(m.Tasks) + len(m.Files) + len(m.Actions)
}

// Match scans each index for entries whose searchable string contains query.
// query must already be normalized with NormalizeQuery. Scanning a kind stops
// at its cap, so later matches are dropped rather than ranked.
func Match(query string, ix *Indices, actions []QuickAction, lim Limits) Matches {
	m := Matches{Query: query}
	if query == "" || ix == nil {
		return m
	}
	lim = lim.orDefault()

	for _, e := range ix.Projects {
		if len(m.Projects) >= lim.Projects {
			break
		}
		if strings.Contains(e.Searchable, query) {
			m.Projects = append(m.Projects, e)
		}
	}
	for _, e := range ix.Tasks {
		if len(m.Tasks) >= lim.Tasks {
			break
		}
		if strings.Contains(e.Searchable, query) {
			m.Tasks = append(m.Tasks, e)
		}
	}
	for _, e := range ix.Files {
		if len(m.Files) >= lim.Files {
			break
		}
		if strings.Contains(e.Searchable, query) {
			m.Files = append(m.Files, e)
		}
	}
	for _, a := range actions {
		if len(m.Actions) >= lim.Actions {
			break
		}
		if a.matches(query) {
			m.Actions = append(m.Actions, a)
		}
	}

	logging.Aggregate(logging.CompSearch, "query_matched",
		slog.Int("results", m.Total()))
	return m
}
