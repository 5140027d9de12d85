package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/nickgarreis/superlane-sub004/internal/search"
	"github.com/nickgarreis/superlane-sub004/internal/ui"
)

type queryOptions struct {
	text     string
	selectN  int
	activeID string
}

// queryOutput is the --json shape of a query
type queryOutput struct {
	Profile  string           `json:"profile"`
	Query    string           `json:"query"`
	Sections []search.Section `json:"sections"`
	Total    int              `json:"total"`
	Selected *search.Result   `json:"selected,omitempty"`
	Calls    []ui.NavCall     `json:"calls,omitempty"`
}

func handleQuery(profile string, args []string) int {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	workspacePath := fs.String("workspace", "", "Snapshot file or directory")
	workspaceShort := fs.String("w", "", "Snapshot file or directory (short)")
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	selectN := fs.Int("select", 0, "Activate result n (1-based) and print the navigation")
	active := fs.String("active", "", "Project that unattached files open in")

	fs.Usage = func() {
		fmt.Println("Usage: superlane query [options] <text...>")
		fmt.Println()
		fmt.Println("Search the workspace once. Without text, prints the default content.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  superlane query wireframe")
		fmt.Println("  superlane query -w ./export brief --json")
		fmt.Println("  superlane query mobile --select 1")
	}

	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		return 1
	}

	out := NewCLIOutput(*jsonOutput)
	path := *workspacePath
	if path == "" {
		path = *workspaceShort
	}

	e, err := openEngine(profile, path)
	if err != nil {
		out.Error(err.Error(), ErrCodeLoadFailed)
		return 1
	}
	defer e.Close()

	opts := queryOptions{
		text:     strings.Join(fs.Args(), " "),
		selectN:  *selectN,
		activeID: *active,
	}
	if err := runQuery(out, e, opts); err != nil {
		out.Error(err.Error(), ErrCodeInvalidOperation)
		return 1
	}
	return 0
}

// runQuery matches opts.text and prints the sections. With selectN it
// activates that row through a Controller, which records recents, and
// prints the navigation calls.
func runQuery(out *CLIOutput, e *engine, opts queryOptions) error {
	actions := search.DefaultQuickActions()
	ix := e.session.Sync(e.snapshot)
	q := search.NormalizeQuery(opts.text)

	ctx := search.AssembleContext{ActiveProjectID: opts.activeID}
	if q == "" {
		items, err := e.store.RecentItems()
		if err != nil {
			return fmt.Errorf("failed to load recents: %w", err)
		}
		ctx.Recents = items
	}
	a := search.Assemble(search.Match(q, ix, actions, e.limits), ix, ctx)

	nav := &ui.NavRecorder{}
	c := search.NewController(nav, e.store, actions)
	c.SetAssembly(a)

	result := queryOutput{
		Profile:  e.profile,
		Query:    q,
		Sections: a.Sections(actions),
		Total:    c.Total(),
	}

	if opts.selectN != 0 {
		if opts.selectN < 1 || opts.selectN > c.Total() {
			return fmt.Errorf("--select %d out of range (1-%d)", opts.selectN, c.Total())
		}
		c.SetActive(opts.selectN - 1)
		if sel, ok := c.Selected(); ok {
			result.Selected = &sel
		}
		c.HandleKey(search.KeyEnter)
		result.Calls = nav.Calls()
	}

	out.Print(formatQuery(result), result)
	return nil
}

func formatQuery(r queryOutput) string {
	var b strings.Builder
	if r.Query == "" {
		fmt.Fprintf(&b, "Profile: %s\n", r.Profile)
	} else {
		fmt.Fprintf(&b, "Results for %q in profile %s\n", r.Query, r.Profile)
	}

	if r.Total == 0 {
		b.WriteString("\nNo results.\n")
	}
	n := 1
	for _, sec := range r.Sections {
		fmt.Fprintf(&b, "\n%s\n", sec.Title)
		for _, res := range sec.Results {
			fmt.Fprintf(&b, "  %3d  %s %s", n, res.Icon, res.Title)
			if res.Subtitle != "" {
				fmt.Fprintf(&b, "  (%s)", res.Subtitle)
			}
			b.WriteString("\n")
			n++
		}
	}

	if r.Selected != nil {
		fmt.Fprintf(&b, "\nActivated: %s\n", r.Selected.Title)
		for _, call := range r.Calls {
			fmt.Fprintf(&b, "  %s %s\n", bulletSymbol, call)
		}
	}
	return b.String()
}

