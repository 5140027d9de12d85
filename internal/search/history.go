package search

import "github.com/sahilm/fuzzy"

// SuggestSearches ranks previous search terms against partial input for
// completion. An empty input returns the history as is, most recent first.
// Index matching never goes through here.
func SuggestSearches(input string, history []string, limit int) []string {
	if input == "" {
		return capStrings(history, limit)
	}
	matches := fuzzy.Find(input, history)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.Str == input {
			continue
		}
		out = append(out, m.Str)
	}
	return capStrings(out, limit)
}

func capStrings(s []string, limit int) []string {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
