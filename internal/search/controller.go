package search

import (
	"log/slog"
	"time"
)

// Key is a palette key press the controller understands
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyEnter
	KeyEscape
)

// Controller tracks the selection cursor over an Assembly and activates the
// selected row. With an empty query the quick actions follow the flat list.
// It is driven from a single goroutine.
type Controller struct {
	nav      Navigator
	handlers map[string]func()
	actions  []QuickAction
	recents  RecentStore
	now      func() time.Time

	assembly *Assembly
	active   int
}

// NewController binds a controller to nav. recents may be nil.
func NewController(nav Navigator, recents RecentStore, actions []QuickAction) *Controller {
	return &Controller{
		nav:      nav,
		handlers: ActionHandlers(nav),
		actions:  actions,
		recents:  recents,
		now:      time.Now,
		assembly: &Assembly{},
	}
}

// SetAssembly replaces the rows and moves the cursor to the top
func (c *Controller) SetAssembly(a *Assembly) {
	if a == nil {
		a = &Assembly{}
	}
	c.assembly = a
	c.active = 0
}

// Assembly returns the rows the cursor walks
func (c *Controller) Assembly() *Assembly {
	return c.assembly
}

// Total is the number of selectable rows
func (c *Controller) Total() int {
	total := len(c.assembly.Flat)
	if c.assembly.Query == "" {
		total += len(c.actions)
	}
	return total
}

// Active returns the cursor position
func (c *Controller) Active() int {
	return c.active
}

// SetActive moves the cursor, ignoring positions outside the rows
func (c *Controller) SetActive(i int) {
	if i >= 0 && i < c.Total() {
		c.active = i
	}
}

// Selected returns the row under the cursor
func (c *Controller) Selected() (Result, bool) {
	return c.row(c.active)
}

func (c *Controller) row(i int) (Result, bool) {
	flat := c.assembly.Flat
	if i >= 0 && i < len(flat) {
		return flat[i], true
	}
	if c.assembly.Query != "" {
		return Result{}, false
	}
	offset := i - len(flat)
	if offset >= 0 && offset < len(c.actions) {
		return actionResult(c.actions[offset]), true
	}
	return Result{}, false
}

// HandleKey applies one key press and reports whether it was consumed
func (c *Controller) HandleKey(k Key) bool {
	n := max(c.Total(), 1)
	switch k {
	case KeyDown:
		c.active = (c.active + 1) % n
	case KeyUp:
		c.active = (c.active - 1 + n) % n
	case KeyEnter:
		return c.Activate(c.active)
	case KeyEscape:
		c.nav.Close()
	default:
		return false
	}
	return true
}

// Activate runs the row at i. Flat rows record recents first; quick action
// rows after the flat list run their handler. It reports whether anything
// ran.
func (c *Controller) Activate(i int) bool {
	flat := c.assembly.Flat
	if i >= 0 && i < len(flat) {
		r := flat[i]
		c.record(r)
		Dispatch(r.Action, c.nav, c.handlers)
		return true
	}
	if c.assembly.Query != "" {
		return false
	}
	offset := i - len(flat)
	if offset < 0 || offset >= len(c.actions) {
		return false
	}
	h, ok := c.handlers[c.actions[offset].ID]
	if !ok || h == nil {
		return false
	}
	h()
	return true
}

func (c *Controller) record(r Result) {
	if c.recents == nil {
		return
	}
	if item, ok := r.Recent(); ok {
		item.At = c.now()
		if err := c.recents.AddRecentItem(item); err != nil {
			searchLog.Warn("recent_item_save_failed",
				slog.String("id", item.ID),
				slog.String("error", err.Error()))
		}
	}
	if c.assembly.Query != "" {
		if err := c.recents.AddRecentSearch(c.assembly.Query); err != nil {
			searchLog.Warn("recent_search_save_failed",
				slog.String("error", err.Error()))
		}
	}
}
