package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withHome points $HOME at a temp dir and resets the config cache.
func withHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(ProfileEnv, "")
	ClearUserConfigCache()
	t.Cleanup(ClearUserConfigCache)
	return home
}

func writeConfig(t *testing.T, home, content string) {
	t.Helper()
	dir := filepath.Join(home, DirName)
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, UserConfigFileName), []byte(content), 0o600))
}

func TestLoadUserConfigMissingFileUsesDefaults(t *testing.T) {
	withHome(t)

	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	s := GetSearchSettings()
	assert.Equal(t, DefaultMaxProjectResults, s.MaxProjectResults)
	assert.Equal(t, DefaultMaxTaskResults, s.MaxTaskResults)
	assert.Equal(t, DefaultMaxFileResults, s.MaxFileResults)
	assert.Equal(t, DefaultMaxActionResults, s.MaxActionResults)
	assert.Equal(t, DefaultDebounceMS, s.DebounceMS)
	assert.False(t, s.DisableCache)

	r := GetRecentsSettings()
	assert.Equal(t, DefaultMaxRecentItems, r.MaxItems)
	assert.Equal(t, DefaultMaxRecentSearches, r.MaxSearches)

	ws := GetWorkspaceSettings()
	assert.True(t, ws.GetWatch())
	assert.Equal(t, DefaultReloadPerSecond, ws.ReloadPerSecond)
	assert.Equal(t, "dark", GetTheme())
}

func TestLoadUserConfigParsesSections(t *testing.T) {
	home := withHome(t)
	writeConfig(t, home, `
theme = "light"
default_profile = "work"

[workspace]
path = "~/snapshots/ws.json"
watch = false

[search]
max_task_results = 5
disable_cache = true

[recents]
max_items = 3

[logs]
debug_level = "warn"
debug_format = "text"
`)

	s := GetSearchSettings()
	assert.Equal(t, 5, s.MaxTaskResults)
	assert.Equal(t, DefaultMaxProjectResults, s.MaxProjectResults)
	assert.True(t, s.DisableCache)

	assert.Equal(t, 3, GetRecentsSettings().MaxItems)
	assert.False(t, GetWorkspaceSettings().GetWatch())
	assert.Equal(t, "light", GetTheme())
	assert.Equal(t, "work", GetEffectiveProfile(""))

	lc := LoggingConfig("/tmp/logs", true)
	assert.Equal(t, "warn", lc.Level)
	assert.Equal(t, "text", lc.Format)

	path, err := ResolveWorkspacePath("", "work")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "snapshots", "ws.json"), path)
}

func TestLoadUserConfigParseError(t *testing.T) {
	home := withHome(t)
	writeConfig(t, home, "theme = [unterminated")

	cfg, err := LoadUserConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config.toml parse error")
	require.NotNil(t, cfg)
	assert.Equal(t, "dark", GetTheme())
}

func TestSaveUserConfigRoundTrip(t *testing.T) {
	home := withHome(t)

	cfg := DefaultConfig()
	cfg.Search.MaxFileResults = 12
	cfg.Theme = "system"
	require.NoError(t, SaveUserConfig(cfg))

	_, err := os.Stat(filepath.Join(home, DirName, UserConfigFileName+".tmp"))
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")

	loaded, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, 12, loaded.Search.MaxFileResults)
	assert.Equal(t, "system", loaded.Theme)
	assert.True(t, loaded.Workspace.GetWatch())
}

func TestGetEffectiveProfilePrecedence(t *testing.T) {
	home := withHome(t)
	writeConfig(t, home, `default_profile = "from-config"`)

	assert.Equal(t, "explicit", GetEffectiveProfile("explicit"))

	t.Setenv(ProfileEnv, "from-env")
	assert.Equal(t, "from-env", GetEffectiveProfile(""))

	t.Setenv(ProfileEnv, "")
	assert.Equal(t, "from-config", GetEffectiveProfile(""))
}

func TestGetProfileDirSanitizes(t *testing.T) {
	home := withHome(t)

	dir, err := GetProfileDir("../../etc")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, DirName, ProfilesDirName, "etc"), dir)

	_, err = GetProfileDir("..")
	assert.Error(t, err)

	dbPath, err := GetStateDBPath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, DirName, ProfilesDirName, DefaultProfile, StateDBFileName), dbPath)
}

func TestResolveWorkspacePathDefaults(t *testing.T) {
	home := withHome(t)

	path, err := ResolveWorkspacePath("", "demo")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, DirName, ProfilesDirName, "demo", WorkspaceFileName), path)

	path, err = ResolveWorkspacePath("/data/ws.json", "demo")
	require.NoError(t, err)
	assert.Equal(t, "/data/ws.json", path)
}

func TestExpandTilde(t *testing.T) {
	home := withHome(t)
	assert.Equal(t, filepath.Join(home, "a", "b"), ExpandTilde("~/a/b"))
	assert.Equal(t, "/abs/path", ExpandTilde("/abs/path"))
	assert.Equal(t, "~/../../etc", ExpandTilde("~/../../etc"))
}

func TestWorkspaceSettingsGetWatch(t *testing.T) {
	on, off := true, false
	tests := []struct {
		name  string
		watch *bool
		want  bool
	}{
		{"unset defaults on", nil, true},
		{"explicit on", &on, true},
		{"explicit off", &off, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WorkspaceSettings{Watch: tt.watch}.GetWatch())
		})
	}
}
