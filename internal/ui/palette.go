package ui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/nickgarreis/superlane-sub004/internal/search"
	"github.com/nickgarreis/superlane-sub004/internal/workspace"
)

// DefaultDebounce delays matching after the last keystroke
const DefaultDebounce = 120 * time.Millisecond

const (
	paletteMaxWidth = 90
	paletteMinWidth = 40
)

// Options configures a Palette. Only Snapshot is required.
type Options struct {
	Snapshot        *workspace.Snapshot
	Session         *search.Session
	Recents         search.RecentStore
	Actions         []search.QuickAction
	Limits          search.Limits
	ActiveProjectID string
	Debounce        time.Duration

	// Optional live sources
	Watcher        *workspace.Watcher
	RecentsWatcher *RecentsWatcher
	ThemeWatcher   *ThemeWatcher
}

// Internal messages
type (
	// debounceMsg fires once the input has been quiet for the debounce delay
	debounceMsg struct{ query string }

	// resultsMsg delivers an assembly for query, matched against ix
	resultsMsg struct {
		query    string
		ix       *search.Indices
		assembly *search.Assembly
	}

	snapshotMsg       struct{ snap *workspace.Snapshot }
	watchErrMsg       struct{ err error }
	recentsChangedMsg struct{}
	themeChangedMsg   struct{ dark bool }
)

// Palette is the bubbletea model of the command palette
type Palette struct {
	input    textinput.Model
	keys     keyMap
	session  *search.Session
	ix       *search.Indices
	actions  []search.QuickAction
	recents  search.RecentStore
	limits   search.Limits
	debounce time.Duration
	activeID string

	nav        *NavRecorder
	controller *search.Controller

	// query is the normalized query the controller rows belong to
	query      string
	searching  bool
	history    []string
	completion string

	watcher        *workspace.Watcher
	recentsWatcher *RecentsWatcher
	themeWatcher   *ThemeWatcher

	width  int
	height int
	err    error
	done   bool
}

// NewPalette builds a palette over opts.Snapshot
func NewPalette(opts Options) *Palette {
	ti := textinput.New()
	ti.Placeholder = "Search projects, tasks, files..."
	ti.Prompt = "› "
	ti.CharLimit = 200
	ti.Width = paletteMaxWidth - 8
	ti.Focus()

	sess := opts.Session
	if sess == nil {
		sess = search.NewSession()
	}
	actions := opts.Actions
	if actions == nil {
		actions = search.DefaultQuickActions()
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	nav := &NavRecorder{}
	p := &Palette{
		input:          ti,
		keys:           defaultKeyMap(),
		session:        sess,
		actions:        actions,
		recents:        opts.Recents,
		limits:         opts.Limits,
		debounce:       debounce,
		activeID:       opts.ActiveProjectID,
		nav:            nav,
		controller:     search.NewController(nav, opts.Recents, actions),
		watcher:        opts.Watcher,
		recentsWatcher: opts.RecentsWatcher,
		themeWatcher:   opts.ThemeWatcher,
	}
	p.ix = sess.Sync(opts.Snapshot)
	p.loadHistory()
	p.controller.SetAssembly(p.assemble(""))
	return p
}

// Calls returns the navigation calls made by the activated row
func (p *Palette) Calls() []NavCall {
	return p.nav.Calls()
}

// Err returns the last workspace reload error, if any
func (p *Palette) Err() error {
	return p.err
}

func (p *Palette) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if p.watcher != nil {
		cmds = append(cmds, listenForSnapshots(p.watcher), listenForWatchErrors(p.watcher))
	}
	if p.recentsWatcher != nil {
		cmds = append(cmds, listenForRecents(p.recentsWatcher))
	}
	if p.themeWatcher != nil {
		cmds = append(cmds, listenForTheme(p.themeWatcher))
	}
	return tea.Batch(cmds...)
}

func listenForSnapshots(w *workspace.Watcher) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-w.Updates()
		if !ok {
			return nil
		}
		return snapshotMsg{snap: snap}
	}
}

func listenForWatchErrors(w *workspace.Watcher) tea.Cmd {
	return func() tea.Msg {
		err, ok := <-w.Errors()
		if !ok {
			return nil
		}
		return watchErrMsg{err: err}
	}
}

func listenForRecents(rw *RecentsWatcher) tea.Cmd {
	return func() tea.Msg {
		<-rw.Changes()
		return recentsChangedMsg{}
	}
}

func listenForTheme(tw *ThemeWatcher) tea.Cmd {
	return func() tea.Msg {
		isDark, ok := <-tw.Changes()
		if !ok {
			return nil
		}
		return themeChangedMsg{dark: isDark}
	}
}

func (p *Palette) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width, p.height = msg.Width, msg.Height
		p.input.Width = p.frameWidth() - 8
		return p, nil

	case debounceMsg:
		// Stale if the user kept typing
		if msg.query != search.NormalizeQuery(p.input.Value()) {
			return p, nil
		}
		return p, p.searchCmd(msg.query)

	case resultsMsg:
		if msg.query != search.NormalizeQuery(p.input.Value()) {
			return p, nil
		}
		// A reload replaced the index while this search ran
		if msg.ix != p.ix {
			return p, p.searchCmd(msg.query)
		}
		p.apply(msg.query, msg.assembly)
		return p, nil

	case snapshotMsg:
		p.ix = p.session.Sync(msg.snap)
		p.err = nil
		pending := p.searching
		p.refresh()
		p.searching = pending
		return p, listenForSnapshots(p.watcher)

	case watchErrMsg:
		p.err = msg.err
		uiLog.Warn("workspace_reload_failed", slog.String("error", msg.err.Error()))
		return p, listenForWatchErrors(p.watcher)

	case recentsChangedMsg:
		p.loadHistory()
		if p.query == "" {
			p.refresh()
		}
		return p, listenForRecents(p.recentsWatcher)

	case themeChangedMsg:
		InitTheme(themeFor(msg.dark))
		return p, listenForTheme(p.themeWatcher)

	case tea.KeyMsg:
		return p.handleKey(msg)
	}
	return p, nil
}

func (p *Palette) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, p.keys.Quit):
		p.done = true
		return p, tea.Quit

	case key.Matches(msg, p.keys.Close):
		p.controller.HandleKey(search.KeyEscape)
		p.done = true
		return p, tea.Quit

	case key.Matches(msg, p.keys.Up):
		p.controller.HandleKey(search.KeyUp)
		return p, nil

	case key.Matches(msg, p.keys.Down):
		p.controller.HandleKey(search.KeyDown)
		return p, nil

	case key.Matches(msg, p.keys.Open):
		if p.recentsWatcher != nil {
			p.recentsWatcher.NotifySave()
		}
		p.controller.HandleKey(search.KeyEnter)
		if p.nav.Closed() {
			p.done = true
			return p, tea.Quit
		}
		return p, nil

	case key.Matches(msg, p.keys.Complete):
		if p.completion == "" {
			return p, nil
		}
		p.input.SetValue(p.completion)
		p.input.CursorEnd()
		return p, p.onInputChanged()
	}

	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() == before {
		return p, cmd
	}
	return p, tea.Batch(cmd, p.onInputChanged())
}

// onInputChanged updates completion and schedules a debounced search. The
// empty query is shown at once.
func (p *Palette) onInputChanged() tea.Cmd {
	raw := p.input.Value()
	p.completion = ""
	if typed := strings.TrimSpace(raw); typed != "" {
		if s := search.SuggestSearches(typed, p.history, 1); len(s) > 0 {
			p.completion = s[0]
		}
	}

	q := search.NormalizeQuery(raw)
	if q == "" {
		p.searching = false
		p.apply("", p.assemble(""))
		return nil
	}
	p.searching = true
	return tea.Tick(p.debounce, func(time.Time) tea.Msg {
		return debounceMsg{query: q}
	})
}

// searchCmd matches off the update loop. Indices are immutable once built,
// so reading ix from the command goroutine is safe.
func (p *Palette) searchCmd(q string) tea.Cmd {
	ix, actions, limits := p.ix, p.actions, p.limits
	ctx := p.assembleContext(q)
	return func() tea.Msg {
		m := search.Match(q, ix, actions, limits)
		return resultsMsg{query: q, ix: ix, assembly: search.Assemble(m, ix, ctx)}
	}
}

func (p *Palette) assembleContext(q string) search.AssembleContext {
	ctx := search.AssembleContext{ActiveProjectID: p.activeID}
	if q == "" && p.recents != nil {
		items, err := p.recents.RecentItems()
		if err != nil {
			uiLog.Warn("recents_load_failed", slog.String("error", err.Error()))
		}
		ctx.Recents = items
	}
	return ctx
}

func (p *Palette) assemble(q string) *search.Assembly {
	m := search.Match(q, p.ix, p.actions, p.limits)
	return search.Assemble(m, p.ix, p.assembleContext(q))
}

func (p *Palette) apply(q string, a *search.Assembly) {
	p.query = q
	p.searching = false
	p.controller.SetAssembly(a)
}

// refresh re-runs the current query against the current index
func (p *Palette) refresh() {
	p.apply(p.query, p.assemble(p.query))
}

func (p *Palette) loadHistory() {
	if p.recents == nil {
		return
	}
	h, err := p.recents.RecentSearches()
	if err != nil {
		uiLog.Warn("recent_searches_load_failed", slog.String("error", err.Error()))
		return
	}
	p.history = h
}

func (p *Palette) frameWidth() int {
	w := p.width - 4
	if w > paletteMaxWidth || p.width == 0 {
		w = paletteMaxWidth
	}
	if w < paletteMinWidth {
		w = paletteMinWidth
	}
	return w
}

// line is one rendered row; row is -1 for headers and blanks
type line struct {
	text string
	row  int
}

func (p *Palette) View() string {
	if p.done {
		return ""
	}
	themeMu.RLock()
	defer themeMu.RUnlock()

	width := p.frameWidth()
	inner := width - 4

	var b strings.Builder
	b.WriteString(InputBoxStyle.Width(inner).Render(p.input.View()))
	b.WriteString("\n")
	if p.completion != "" && p.completion != strings.TrimSpace(p.input.Value()) {
		b.WriteString(CompletionStyle.Render("  tab → " + truncate(p.completion, inner-8)))
		b.WriteString("\n")
	}
	if p.err != nil {
		b.WriteString(ErrorStyle.Render(truncate("  reload failed: "+p.err.Error(), inner)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	lines := p.lines(inner)
	if len(lines) == 0 {
		msg := "Type to search..."
		if p.searching {
			msg = "Searching..."
		} else if p.query != "" {
			msg = fmt.Sprintf("No results for %q", p.query)
		}
		b.WriteString(EmptyStyle.Render("  " + msg))
		b.WriteString("\n")
	}
	for _, l := range visibleWindow(lines, p.controller.Active(), p.listHeight()) {
		b.WriteString(l.text)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(HintStyle.Render(p.hintLine()))

	frame := FrameStyle.Width(width).Render(b.String())
	if p.width == 0 || p.height == 0 {
		return frame
	}
	return lipgloss.Place(p.width, p.height, lipgloss.Center, lipgloss.Center, frame)
}

func (p *Palette) listHeight() int {
	if p.height == 0 {
		return 20
	}
	return max(p.height-12, 5)
}

func (p *Palette) hintLine() string {
	parts := make([]string, 0, len(p.keys.hints()))
	for _, k := range p.keys.hints() {
		h := k.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	stats := p.session.Stats()
	return strings.Join(parts, "  ") + fmt.Sprintf("   %d entries", stats.Projects+stats.Tasks+stats.Files)
}

// lines renders the sections with one line per controller row
func (p *Palette) lines(width int) []line {
	var out []line
	row := 0
	for _, sec := range p.controller.Assembly().Sections(p.actions) {
		if len(out) > 0 {
			out = append(out, line{row: -1})
		}
		out = append(out, line{text: GroupHeaderStyle.Render(sec.Title), row: -1})
		for _, r := range sec.Results {
			out = append(out, line{text: p.renderRow(r, row, width), row: row})
			row++
		}
	}
	return out
}

func (p *Palette) renderRow(r search.Result, row, width int) string {
	icon := r.Icon
	if icon == "" {
		icon = "•"
	}
	titleWidth := width - 6
	title := r.Title
	sub := ""
	if r.Subtitle != "" {
		sub = "  " + r.Subtitle
	}
	// Keep the title whole when possible and shorten the subtitle first
	if runewidth.StringWidth(title) >= titleWidth {
		title, sub = truncate(title, titleWidth), ""
	} else {
		sub = truncate(sub, titleWidth-runewidth.StringWidth(title))
	}

	if row == p.controller.Active() {
		return RowSelectedStyle.Width(width).Render(icon + " " + title + sub)
	}
	return RowStyle.Render(IconStyle.Render(icon) + " " + title + SubtitleStyle.Render(sub))
}

// visibleWindow returns at most height lines, scrolled so the active row is
// visible.
func visibleWindow(lines []line, active, height int) []line {
	if len(lines) <= height {
		return lines
	}
	at := 0
	for i, l := range lines {
		if l.row == active {
			at = i
			break
		}
	}
	start := 0
	if at >= height {
		start = at - height + 1
	}
	return lines[start : start+height]
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
