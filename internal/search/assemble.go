package search

import (
	"strings"

	"github.com/nickgarreis/superlane-sub004/internal/workspace"
)

// Empty-query caps
const (
	defaultProjectFallback = 4
	suggestedTasks         = 3
	suggestedDrafts        = 2
	suggestedActive        = 2
)

// Result is one display-ready palette row
type Result struct {
	ID        string `json:"id"`
	Kind      Kind   `json:"kind"`
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle,omitempty"`
	Icon      string `json:"icon,omitempty"`
	ProjectID string `json:"projectId,omitempty"`
	TaskID    string `json:"taskId,omitempty"`
	Action    Action `json:"action"`
}

// Recent converts a result into a recent selection. Files are recorded as
// their owning project; quick actions are never recorded.
func (r Result) Recent() (RecentItem, bool) {
	switch r.Kind {
	case KindProject:
		return RecentItem{ID: r.ProjectID, Type: RecentProject, ProjectID: r.ProjectID, Title: r.Title}, true
	case KindTask:
		return RecentItem{ID: r.TaskID, Type: RecentTask, ProjectID: r.ProjectID, Title: r.Title}, true
	case KindFile:
		if r.ProjectID == "" {
			return RecentItem{}, false
		}
		return RecentItem{ID: r.ProjectID, Type: RecentProject, ProjectID: r.ProjectID}, true
	}
	return RecentItem{}, false
}

// Group is the results of one kind
type Group struct {
	Kind    Kind     `json:"kind"`
	Title   string   `json:"title"`
	Results []Result `json:"results"`
}

// AssembleContext carries caller state the assembler needs
type AssembleContext struct {
	// Recents are the recent selections, most recent first
	Recents []RecentItem
	// ActiveProjectID is the project currently open in the host UI.
	// Unattached files resolve to it.
	ActiveProjectID string
}

// Assembly is the palette content for one query
type Assembly struct {
	Query string `json:"query"`
	// Groups holds the non-empty kinds in KindOrder
	Groups []Group `json:"groups,omitempty"`
	// Flat is the list the selection cursor walks
	Flat           []Result `json:"flat"`
	DefaultContent []Result `json:"defaultContent,omitempty"`
	Suggestions    []Result `json:"suggestions,omitempty"`
	Combined       []Result `json:"combined,omitempty"`
	// FromRecents is set when DefaultContent came from recent selections
	// rather than the active project fallback
	FromRecents bool `json:"fromRecents,omitempty"`
}

// Section is a titled run of rows for display
type Section struct {
	Title   string   `json:"title"`
	Results []Result `json:"results"`
}

// Sections lays out the rows a Controller walks, in the same order. With an
// empty query the default content and new suggestions are followed by
// actions.
func (a *Assembly) Sections(actions []QuickAction) []Section {
	if a.Query != "" {
		out := make([]Section, 0, len(a.Groups))
		for _, g := range a.Groups {
			out = append(out, Section{Title: g.Title, Results: g.Results})
		}
		return out
	}

	var out []Section
	// Combined keeps DefaultContent whole and in front
	n := min(len(a.DefaultContent), len(a.Flat))
	if n > 0 {
		title := KindProject.Title()
		if a.FromRecents {
			title = "Recent"
		}
		out = append(out, Section{Title: title, Results: a.Flat[:n]})
	}
	if len(a.Flat) > n {
		out = append(out, Section{Title: "Suggested", Results: a.Flat[n:]})
	}
	if len(actions) > 0 {
		out = append(out, Section{Title: KindAction.Title(), Results: QuickActionResults(actions)})
	}
	return out
}

// Assemble turns matches into grouped results. With an empty query it builds
// the default content and suggestions instead, and Flat is Combined.
func Assemble(m Matches, ix *Indices, ctx AssembleContext) *Assembly {
	a := &Assembly{Query: m.Query}
	if m.Query == "" {
		a.DefaultContent = defaultContent(ix, ctx.Recents)
		a.FromRecents = len(ctx.Recents) > 0
		a.Suggestions = suggestions(ix, a.DefaultContent)
		a.Combined = combine(a.DefaultContent, a.Suggestions)
		a.Flat = a.Combined
		return a
	}

	buckets := [len(KindOrder)][]Result{}
	for _, e := range m.Projects {
		buckets[KindProject] = append(buckets[KindProject], projectResult(e.Project))
	}
	for _, e := range m.Tasks {
		buckets[KindTask] = append(buckets[KindTask], taskResult(e))
	}
	for _, e := range m.Files {
		if r, ok := fileResult(e, ix, ctx.ActiveProjectID); ok {
			buckets[KindFile] = append(buckets[KindFile], r)
		}
	}
	for _, q := range m.Actions {
		buckets[KindAction] = append(buckets[KindAction], actionResult(q))
	}

	for _, k := range KindOrder {
		if len(buckets[k]) == 0 {
			continue
		}
		a.Groups = append(a.Groups, Group{Kind: k, Title: k.Title(), Results: buckets[k]})
		a.Flat = append(a.Flat, buckets[k]...)
	}
	return a
}

func projectResult(p *workspace.Project) Result {
	view := ProjectView(p.ID)
	if p.Archived {
		view = ArchiveView(p.ID)
	}
	subtitle := joinNonEmpty(" · ", p.Category, p.Status.Label)
	if p.Archived {
		subtitle = joinNonEmpty(" · ", subtitle, "Archived")
	}
	return Result{
		ID:        "project:" + p.ID,
		Kind:      KindProject,
		Title:     p.Name,
		Subtitle:  subtitle,
		Icon:      "◆",
		ProjectID: p.ID,
		Action:    Navigate(view),
	}
}

func taskResult(e TaskEntry) Result {
	icon := "☐"
	if e.Task.Completed {
		icon = "☑"
	}
	return Result{
		ID:        "task:" + TaskKey(e.Task.ProjectID, e.Task.ID),
		Kind:      KindTask,
		Title:     e.Task.Title,
		Subtitle:  joinNonEmpty(" · ", e.Project.Name, e.Task.AssigneeName()),
		Icon:      icon,
		ProjectID: e.Task.ProjectID,
		TaskID:    e.Task.ID,
		Action:    HighlightTaskAction(e.Task.ProjectID, e.Task.ID),
	}
}

// fileResult resolves the project a file opens in. Unattached files use the
// active project; a file without a live target project is dropped.
func fileResult(e FileEntry, ix *Indices, activeProjectID string) (Result, bool) {
	target := e.File.ProjectID
	if target == "" {
		target = activeProjectID
	}
	if target == "" {
		return Result{}, false
	}
	p, ok := ix.Project(target)
	if !ok {
		return Result{}, false
	}
	return Result{
		ID:        "file:" + FileKey(e.File),
		Kind:      KindFile,
		Title:     e.File.Name,
		Subtitle:  joinNonEmpty(" · ", p.Name, e.File.Tab),
		Icon:      "▤",
		ProjectID: p.ID,
		Action:    HighlightFileAction(p.ID, e.File.Name, e.File.Tab),
	}, true
}

func actionResult(q QuickAction) Result {
	return Result{
		ID:     q.ID,
		Kind:   KindAction,
		Title:  q.Label,
		Icon:   q.Icon,
		Action: Invoke(q.ID),
	}
}

// QuickActionResults renders the catalogue as results, for listing it below
// the default content.
func QuickActionResults(actions []QuickAction) []Result {
	out := make([]Result, 0, len(actions))
	for _, q := range actions {
		out = append(out, actionResult(q))
	}
	return out
}

// defaultContent renders recents whose project still exists, or falls back
// to the first active projects in index order.
func defaultContent(ix *Indices, recents []RecentItem) []Result {
	var out []Result
	if len(recents) > 0 {
		seen := make(map[string]struct{}, len(recents))
		for _, r := range recents {
			res, ok := recentResult(ix, r)
			if !ok {
				continue
			}
			if _, dup := seen[res.ID]; dup {
				continue
			}
			seen[res.ID] = struct{}{}
			out = append(out, res)
		}
		return out
	}
	if ix == nil {
		return nil
	}
	for _, e := range ix.Projects {
		if len(out) >= defaultProjectFallback {
			break
		}
		if e.Project.IsActive() {
			out = append(out, projectResult(e.Project))
		}
	}
	return out
}

func recentResult(ix *Indices, r RecentItem) (Result, bool) {
	switch r.Type {
	case RecentProject:
		p, ok := ix.Project(r.ID)
		if !ok {
			return Result{}, false
		}
		return projectResult(p), true
	case RecentTask:
		if _, ok := ix.Project(r.ProjectID); !ok {
			return Result{}, false
		}
		e, ok := ix.Task(r.ProjectID, r.ID)
		if !ok {
			return Result{}, false
		}
		return taskResult(e), true
	}
	return Result{}, false
}

func suggestions(ix *Indices, defaults []Result) []Result {
	if ix == nil {
		return nil
	}
	taken := make(map[string]struct{}, len(defaults))
	for _, r := range defaults {
		if r.Kind == KindProject {
			taken[r.ProjectID] = struct{}{}
		}
	}

	var out []Result
	tasks := 0
	for _, e := range ix.Tasks {
		if tasks >= suggestedTasks {
			break
		}
		if e.Task.Completed || e.Project.Archived || e.Project.IsCompleted() {
			continue
		}
		out = append(out, taskResult(e))
		tasks++
	}

	out = append(out, suggestProjects(ix, taken, suggestedDrafts, (*workspace.Project).IsDraft)...)
	out = append(out, suggestProjects(ix, taken, suggestedActive, (*workspace.Project).IsActive)...)
	return out
}

// suggestProjects picks up to limit non-archived projects accepted by keep,
// skipping and then marking ids in taken.
func suggestProjects(ix *Indices, taken map[string]struct{}, limit int, keep func(*workspace.Project) bool) []Result {
	var out []Result
	for _, e := range ix.Projects {
		if len(out) >= limit {
			break
		}
		p := e.Project
		if _, dup := taken[p.ID]; dup || p.Archived || !keep(p) {
			continue
		}
		taken[p.ID] = struct{}{}
		out = append(out, projectResult(p))
	}
	return out
}

// combine concatenates lists, keeping the first result of each id
func combine(lists ...[]Result) []Result {
	var out []Result
	seen := map[string]struct{}{}
	for _, list := range lists {
		for _, r := range list {
			if _, dup := seen[r.ID]; dup {
				continue
			}
			seen[r.ID] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
