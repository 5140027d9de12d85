package search

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T, raw string, ctx AssembleContext) (*Controller, *recordingNav, *MemoryRecents) {
	t.Helper()
	ix := NewSession().Build(sampleSnapshot())
	nav := &recordingNav{}
	recents := NewMemoryRecents(10, 10)
	c := NewController(nav, recents, DefaultQuickActions())
	c.SetAssembly(query(ix, raw, ctx))
	return c, nav, recents
}

func TestController_TotalIncludesQuickActionsOnlyForEmptyQuery(t *testing.T) {
	c, _, _ := newTestController(t, "", AssembleContext{})
	assert.Equal(t, len(c.Assembly().Flat)+len(DefaultQuickActions()), c.Total())

	c, _, _ = newTestController(t, "wireframe", AssembleContext{})
	assert.Equal(t, 1, c.Total())
}

func TestController_Wraparound(t *testing.T) {
	for _, raw := range []string{"", "a", "wireframe"} {
		c, _, _ := newTestController(t, raw, AssembleContext{ActiveProjectID: "project-1"})
		n := c.Total()
		require.Positive(t, n)
		for start := range n {
			c.SetActive(start)
			for range n {
				c.HandleKey(KeyDown)
			}
			assert.Equal(t, start, c.Active(), "down from %d, query %q", start, raw)
			for range n {
				c.HandleKey(KeyUp)
			}
			assert.Equal(t, start, c.Active(), "up from %d, query %q", start, raw)
		}
	}
}

func TestController_UpFromTopWrapsToBottom(t *testing.T) {
	c, _, _ := newTestController(t, "", AssembleContext{})
	c.HandleKey(KeyUp)
	assert.Equal(t, c.Total()-1, c.Active())
}

func TestController_NoResults(t *testing.T) {
	c, nav, _ := newTestController(t, "zzzz", AssembleContext{})
	assert.Equal(t, 0, c.Total())

	c.HandleKey(KeyDown)
	assert.Equal(t, 0, c.Active())
	c.HandleKey(KeyUp)
	assert.Equal(t, 0, c.Active())
	assert.False(t, c.HandleKey(KeyEnter))
	assert.Empty(t, nav.calls)
}

func TestController_EnterRecordsRecentsAndNavigates(t *testing.T) {
	c, nav, recents := newTestController(t, "wireframe", AssembleContext{})
	fixed := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	require.True(t, c.HandleKey(KeyEnter))
	assert.Equal(t, []string{
		"close",
		"navigate project:project-1",
		"highlight project-1 task task=task-1 file= tab=",
	}, nav.calls)

	items, err := recents.RecentItems()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, RecentItem{
		ID: "task-1", Type: RecentTask, ProjectID: "project-1",
		Title: "Draft homepage wireframe", At: fixed,
	}, items[0])

	searches, err := recents.RecentSearches()
	require.NoError(t, err)
	assert.Equal(t, []string{"wireframe"}, searches)
}

func TestController_EnterOnEmptyQueryRecordsNoSearch(t *testing.T) {
	c, nav, recents := newTestController(t, "", AssembleContext{})
	require.True(t, c.HandleKey(KeyEnter))
	assert.Equal(t, []string{"close", "navigate project:project-1"}, nav.calls)

	searches, _ := recents.RecentSearches()
	assert.Empty(t, searches)
	items, _ := recents.RecentItems()
	require.Len(t, items, 1)
	assert.Equal(t, "project-1", items[0].ID)
}

func TestController_EnterOnQuickActionRow(t *testing.T) {
	c, nav, recents := newTestController(t, "", AssembleContext{})
	flat := len(c.Assembly().Flat)

	// second quick action is "Go to Tasks"
	c.SetActive(flat + 1)
	sel, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, ActionTasks, sel.ID)

	require.True(t, c.HandleKey(KeyEnter))
	assert.Equal(t, []string{"close", "navigate tasks"}, nav.calls)

	items, _ := recents.RecentItems()
	assert.Empty(t, items)
}

func TestController_MatchedQuickActionDispatchesHandler(t *testing.T) {
	c, nav, recents := newTestController(t, "inbox", AssembleContext{})
	require.Equal(t, 1, c.Total())

	require.True(t, c.HandleKey(KeyEnter))
	assert.Equal(t, []string{"close", "inbox"}, nav.calls)

	searches, _ := recents.RecentSearches()
	assert.Equal(t, []string{"inbox"}, searches)
}

func TestController_Escape(t *testing.T) {
	c, nav, _ := newTestController(t, "a", AssembleContext{})
	require.True(t, c.HandleKey(KeyEscape))
	assert.Equal(t, []string{"close"}, nav.calls)
}

func TestController_SetAssemblyResetsCursor(t *testing.T) {
	c, _, _ := newTestController(t, "", AssembleContext{})
	c.HandleKey(KeyDown)
	c.HandleKey(KeyDown)
	require.Equal(t, 2, c.Active())

	c.SetAssembly(nil)
	assert.Equal(t, 0, c.Active())
	assert.Equal(t, len(DefaultQuickActions()), c.Total())
}

func TestController_SetActiveIgnoresOutOfRange(t *testing.T) {
	c, _, _ := newTestController(t, "wireframe", AssembleContext{})
	c.SetActive(5)
	assert.Equal(t, 0, c.Active())
	c.SetActive(-1)
	assert.Equal(t, 0, c.Active())
}

func TestController_EnterTwiceRepeatsCalls(t *testing.T) {
	c, nav, _ := newTestController(t, "brief", AssembleContext{})
	c.HandleKey(KeyEnter)
	once := append([]string(nil), nav.calls...)
	c.HandleKey(KeyEnter)
	assert.Equal(t, append(once, once...), nav.calls)
}

type failingRecents struct{}

func (failingRecents) AddRecentItem(RecentItem) error { return errors.New("disk full") }
func (failingRecents) AddRecentSearch(string) error { return errors.New("disk full") }
func (failingRecents) RecentItems() ([]RecentItem, error) { return nil, nil }
func (failingRecents) RecentSearches() ([]string, error) { return nil, nil }

func TestController_RecentStoreErrorsDoNotBlockNavigation(t *testing.T) {
	ix := NewSession().Build(sampleSnapshot())
	nav := &recordingNav{}
	c := NewController(nav, failingRecents{}, DefaultQuickActions())
	c.SetAssembly(query(ix, "wireframe", AssembleContext{}))

	require.True(t, c.HandleKey(KeyEnter))
	assert.Len(t, nav.calls, 3)
}

func TestController_NilRecents(t *testing.T) {
	ix := NewSession().Build(sampleSnapshot())
	nav := &recordingNav{}
	c := NewController(nav, nil, nil)
	c.SetAssembly(query(ix, "brief", AssembleContext{}))

	require.True(t, c.HandleKey(KeyEnter))
	assert.NotEmpty(t, nav.calls)
}
