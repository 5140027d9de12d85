package main

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/nickgarreis/superlane-sub004/internal/history"
	"github.com/nickgarreis/superlane-sub004/internal/search"
)

// Table column widths for recents output
const (
	tableColType    = 8
	tableColProject = 16
	tableColID      = 16
	tableColTitle   = 32
)

func handleRecents(profile string, args []string) int {
	fs := flag.NewFlagSet("recents", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	filter := fs.String("filter", "", "Rank recent searches against this text")

	fs.Usage = func() {
		fmt.Println("Usage: superlane recents [list|searches|clear] [options]")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		return 1
	}

	out := NewCLIOutput(*jsonOutput)
	store, err := history.OpenProfile(profile)
	if err != nil {
		out.Error(err.Error(), ErrCodeLoadFailed)
		return 1
	}
	defer store.Close()

	sub := "list"
	if fs.NArg() > 0 {
		sub = fs.Arg(0)
	}
	switch sub {
	case "list", "ls":
		err = listRecentItems(out, store)
	case "searches":
		err = listRecentSearches(out, store, *filter)
	case "clear":
		if err = store.Clear(); err == nil {
			out.Success(fmt.Sprintf("Cleared recents for profile '%s'", store.Profile()),
				map[string]any{"success": true, "profile": store.Profile()})
		}
	default:
		out.Error(fmt.Sprintf("unknown recents command %q", sub), ErrCodeInvalidOperation)
		return 1
	}
	if err != nil {
		out.Error(err.Error(), ErrCodeInvalidOperation)
		return 1
	}
	return 0
}

func listRecentItems(out *CLIOutput, store search.RecentStore) error {
	items, err := store.RecentItems()
	if err != nil {
		return err
	}
	if items == nil {
		items = []search.RecentItem{}
	}

	var b strings.Builder
	if len(items) == 0 {
		b.WriteString("No recent selections.\n")
	} else {
		fmt.Fprintf(&b, "%-*s %-*s %-*s %-*s %s\n",
			tableColType, "TYPE", tableColProject, "PROJECT", tableColID, "ID", tableColTitle, "TITLE", "USED")
		b.WriteString(strings.Repeat("-", tableColType+tableColProject+tableColID+tableColTitle+20) + "\n")
		for _, it := range items {
			fmt.Fprintf(&b, "%-*s %-*s %-*s %-*s %s\n",
				tableColType, it.Type,
				tableColProject, truncate(it.ProjectID, tableColProject),
				tableColID, truncate(it.ID, tableColID),
				tableColTitle, truncate(it.Title, tableColTitle),
				formatAgo(it.At))
		}
	}
	out.Print(b.String(), items)
	return nil
}

func listRecentSearches(out *CLIOutput, store search.RecentStore, filter string) error {
	terms, err := store.RecentSearches()
	if err != nil {
		return err
	}
	if filter = strings.TrimSpace(filter); filter != "" {
		ranked := search.SuggestSearches(filter, terms, 0)
		// SuggestSearches leaves out the exact term; a filter keeps it
		for _, t := range terms {
			if t == filter {
				ranked = append([]string{t}, ranked...)
				break
			}
		}
		terms = ranked
	}
	if terms == nil {
		terms = []string{}
	}

	var b strings.Builder
	if len(terms) == 0 {
		b.WriteString("No recent searches.\n")
	}
	for _, t := range terms {
		fmt.Fprintf(&b, "  %s %s\n", bulletSymbol, t)
	}
	out.Print(b.String(), terms)
	return nil
}

// truncate shortens s to max bytes with an ellipsis
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// formatAgo formats t relative to now
func formatAgo(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
