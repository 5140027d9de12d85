package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickgarreis/superlane-sub004/internal/config"
	"github.com/nickgarreis/superlane-sub004/internal/search"
)

func TestMain(m *testing.M) {
	os.Setenv(config.ProfileEnv, "_test")
	os.Exit(m.Run())
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	config.ClearUserConfigCache()
	t.Cleanup(config.ClearUserConfigCache)

	s, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RecentItemsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	at := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.AddRecentItem(search.RecentItem{ID: "project-1", Type: search.RecentProject, Title: "Website", At: at}))
	require.NoError(t, s.AddRecentItem(search.RecentItem{ID: "task-1", Type: search.RecentTask, ProjectID: "project-1", At: at.Add(time.Minute)}))

	items, err := s.RecentItems()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "task-1", items[0].ID)
	assert.Equal(t, "project-1", items[0].ProjectID)
	assert.Equal(t, search.RecentProject, items[1].Type)
	assert.True(t, items[1].At.Equal(at))
}

func TestStore_CapsFromLimits(t *testing.T) {
	s := newTestStore(t)
	s.SetLimits(2, 1)
	base := time.Now()

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.AddRecentItem(search.RecentItem{ID: id, Type: search.RecentProject, At: base.Add(time.Duration(i) * time.Second)}))
	}
	items, err := s.RecentItems()
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "c", items[0].ID)

	require.NoError(t, s.AddRecentSearch("first"))
	require.NoError(t, s.AddRecentSearch("second"))
	searches, err := s.RecentSearches()
	require.NoError(t, err)
	assert.Equal(t, []string{"second"}, searches)
}

func TestStore_DefaultCapsFromConfig(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, config.DefaultMaxRecentItems, s.maxItems)
	assert.Equal(t, config.DefaultMaxRecentSearches, s.maxSearches)
}

func TestStore_EmptySearchIgnored(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddRecentSearch(""))
	searches, err := s.RecentSearches()
	require.NoError(t, err)
	assert.Empty(t, searches)
}

func TestStore_Clear(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddRecentSearch("brief"))
	require.NoError(t, s.Clear())

	searches, err := s.RecentSearches()
	require.NoError(t, err)
	assert.Empty(t, searches)
}

func TestStore_WorksWithController(t *testing.T) {
	s := newTestStore(t)

	calls := 0
	nav := search.Callbacks{OnNavigate: func(string) { calls++ }}
	c := search.NewController(nav, s, search.DefaultQuickActions())
	c.SetAssembly(&search.Assembly{
		Query: "web",
		Flat: []search.Result{{
			ID: "project:p1", Kind: search.KindProject, ProjectID: "p1", Title: "Web",
			Action: search.Navigate(search.ProjectView("p1")),
		}},
	})

	require.True(t, c.HandleKey(search.KeyEnter))
	assert.Equal(t, 1, calls)

	items, err := s.RecentItems()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ID)

	searches, err := s.RecentSearches()
	require.NoError(t, err)
	assert.Equal(t, []string{"web"}, searches)
}

func TestOpen_ImportsLegacyExport(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	config.ClearUserConfigCache()
	t.Cleanup(config.ClearUserConfigCache)

	dir := t.TempDir()
	legacy := filepath.Join(dir, LegacyRecentsFile)
	require.NoError(t, os.WriteFile(legacy,
		[]byte(`{"recentItems":[{"id":"project-1","type":"project"}],"recentSearches":["brief"]}`), 0600))

	s, err := Open(filepath.Join(dir, "state.db"))
	require.NoError(t, err)
	defer s.Close()

	items, _ := s.RecentItems()
	assert.Len(t, items, 1)
	searches, _ := s.RecentSearches()
	assert.Equal(t, []string{"brief"}, searches)

	_, err = os.Stat(legacy)
	assert.True(t, os.IsNotExist(err), "export renamed after import")
	_, err = os.Stat(legacy + ".migrated")
	assert.NoError(t, err)
}

func TestOpenProfile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	config.ClearUserConfigCache()
	t.Cleanup(config.ClearUserConfigCache)

	s, err := OpenProfile("work")
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "work", s.Profile())
	assert.Equal(t, filepath.Join(home, config.DirName, config.ProfilesDirName, "work", config.StateDBFileName), s.Path())
}
