package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	dark "github.com/thiagokokada/dark-mode-go"

	"github.com/nickgarreis/superlane-sub004/internal/logging"
)

var configLog = logging.ForComponent(logging.CompConfig)

// UserConfigFileName is the TOML config file for user preferences
const UserConfigFileName = "config.toml"

// Search defaults
const (
	DefaultMaxProjectResults = 30
	DefaultMaxTaskResults    = 40
	DefaultMaxFileResults    = 40
	DefaultMaxActionResults  = 8
	DefaultDebounceMS        = 120
	DefaultMaxRecentItems    = 10
	DefaultMaxRecentSearches = 10
	DefaultReloadPerSecond   = 4
)

// UserConfig represents user-facing configuration in TOML format
type UserConfig struct {
	// Theme sets the palette colors: "dark" (default), "light", or "system"
	Theme string `toml:"theme"`

	// DefaultProfile is used when neither -p nor SUPERLANE_PROFILE is set
	DefaultProfile string `toml:"default_profile"`

	// Workspace controls where the snapshot is read from
	Workspace WorkspaceSettings `toml:"workspace"`

	// Search tunes the palette index
	Search SearchSettings `toml:"search"`

	// Recents caps the recent selection and search history
	Recents RecentsSettings `toml:"recents"`

	// Logs configures debug logging
	Logs LogSettings `toml:"logs"`
}

// WorkspaceSettings defines where workspace snapshots come from
type WorkspaceSettings struct {
	// Path is a snapshot JSON file or a directory holding projects.json,
	// tasks.json and files.json. Default: <profile dir>/workspace.json
	Path string `toml:"path"`

	// Watch reloads the palette when the snapshot changes on disk.
	// Pointer so an absent key can default to true.
	Watch *bool `toml:"watch"`

	// ReloadPerSecond caps snapshot reloads triggered by the watcher (default: 4)
	ReloadPerSecond int `toml:"reload_per_second"`
}

// GetWatch returns whether watching is enabled, defaulting to true
func (w WorkspaceSettings) GetWatch() bool {
	if w.Watch == nil {
		return true
	}
	return *w.Watch
}

// SearchSettings defines index caps and matching behavior
type SearchSettings struct {
	// MaxProjectResults caps project matches per query (default: 30)
	MaxProjectResults int `toml:"max_project_results"`

	// MaxTaskResults caps task matches per query (default: 40)
	MaxTaskResults int `toml:"max_task_results"`

	// MaxFileResults caps file matches per query (default: 40)
	MaxFileResults int `toml:"max_file_results"`

	// MaxActionResults caps quick action matches per query (default: 8)
	MaxActionResults int `toml:"max_action_results"`

	// DebounceMS delays matching after the last keystroke (default: 120)
	DebounceMS int `toml:"debounce_ms"`

	// DisableCache recomputes every searchable string on each rebuild
	DisableCache bool `toml:"disable_cache"`

	// EscapeSignatures length-prefixes signature fields instead of joining
	// them with "|"
	EscapeSignatures bool `toml:"escape_signatures"`
}

// RecentsSettings caps the persisted history
type RecentsSettings struct {
	// MaxItems is the number of recent selections kept (default: 10)
	MaxItems int `toml:"max_items"`

	// MaxSearches is the number of recent search terms kept (default: 10)
	MaxSearches int `toml:"max_searches"`
}

// LogSettings defines debug log configuration
type LogSettings struct {
	// DebugLevel sets the minimum log level: "debug", "info", "warn", "error"
	DebugLevel string `toml:"debug_level"`

	// DebugFormat sets the log format: "json" (default) or "text"
	DebugFormat string `toml:"debug_format"`

	// DebugMaxMB is the max size in MB for debug.log before rotation
	DebugMaxMB int `toml:"debug_max_mb"`

	// DebugBackups is the number of rotated debug.log files to keep
	DebugBackups int `toml:"debug_backups"`

	// DebugRetentionDays is the number of days to keep rotated debug logs
	DebugRetentionDays int `toml:"debug_retention_days"`

	// DebugCompress enables gzip compression for rotated debug logs
	DebugCompress bool `toml:"debug_compress"`

	// RingBufferMB is the in-memory ring buffer size in MB for crash dumps
	RingBufferMB int `toml:"ring_buffer_mb"`

	// PprofEnabled starts a pprof server on localhost:6060 in debug mode
	PprofEnabled bool `toml:"pprof_enabled"`

	// AggregateIntervalS is the event aggregation flush interval in seconds
	AggregateIntervalS int `toml:"aggregate_interval_secs"`
}

var defaultUserConfig = UserConfig{}

// Cache for user config (loaded once per process)
var (
	userConfigCache   *UserConfig
	userConfigCacheMu sync.RWMutex
)

// GetUserConfigPath returns the path to the user config file
func GetUserConfigPath() (string, error) {
	dir, err := GetSuperlaneDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, UserConfigFileName), nil
}

// LoadUserConfig loads the user configuration from TOML.
// Returns the cached config after the first load. A parse error is returned
// to the caller while the defaults are cached, so the palette still starts.
func LoadUserConfig() (*UserConfig, error) {
	userConfigCacheMu.RLock()
	if userConfigCache != nil {
		defer userConfigCacheMu.RUnlock()
		return userConfigCache, nil
	}
	userConfigCacheMu.RUnlock()

	userConfigCacheMu.Lock()
	defer userConfigCacheMu.Unlock()
	if userConfigCache != nil {
		return userConfigCache, nil
	}

	configPath, err := GetUserConfigPath()
	if err != nil {
		userConfigCache = &defaultUserConfig
		return userConfigCache, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		userConfigCache = &defaultUserConfig
		return userConfigCache, nil
	}

	var cfg UserConfig
	if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
		userConfigCache = &defaultUserConfig
		return userConfigCache, fmt.Errorf("config.toml parse error: %w", err)
	}

	userConfigCache = &cfg
	return userConfigCache, nil
}

// ReloadUserConfig forces a reload of the user config
func ReloadUserConfig() (*UserConfig, error) {
	ClearUserConfigCache()
	return LoadUserConfig()
}

// ClearUserConfigCache drops the cached config; the next load reads disk
func ClearUserConfigCache() {
	userConfigCacheMu.Lock()
	userConfigCache = nil
	userConfigCacheMu.Unlock()
}

// SaveUserConfig writes config.toml atomically: temp file, fsync, rename.
func SaveUserConfig(cfg *UserConfig) error {
	configPath, err := GetUserConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# Superlane Configuration\n")
	buf.WriteString("# Run 'superlane config show' to see effective values\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	tmpPath := configPath + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := syncFile(tmpPath); err != nil {
		configLog.Warn("config_fsync_failed", "error", err.Error())
	}
	if err := os.Rename(tmpPath, configPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize config save: %w", err)
	}

	ClearUserConfigCache()
	return nil
}

func syncFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

// DefaultConfig returns a config with every default spelled out, used by
// 'superlane config init'.
func DefaultConfig() *UserConfig {
	watch := true
	return &UserConfig{
		Theme: "dark",
		Workspace: WorkspaceSettings{
			Watch:           &watch,
			ReloadPerSecond: DefaultReloadPerSecond,
		},
		Search: SearchSettings{
			MaxProjectResults: DefaultMaxProjectResults,
			MaxTaskResults:    DefaultMaxTaskResults,
			MaxFileResults:    DefaultMaxFileResults,
			MaxActionResults:  DefaultMaxActionResults,
			DebounceMS:        DefaultDebounceMS,
		},
		Recents: RecentsSettings{
			MaxItems:    DefaultMaxRecentItems,
			MaxSearches: DefaultMaxRecentSearches,
		},
		Logs: LogSettings{
			DebugLevel:         "info",
			DebugFormat:        "json",
			DebugMaxMB:         10,
			DebugBackups:       5,
			DebugRetentionDays: 10,
			DebugCompress:      true,
			RingBufferMB:       4,
			AggregateIntervalS: 30,
		},
	}
}

// GetTheme returns the configured theme, defaulting to "dark"
func GetTheme() string {
	cfg, err := LoadUserConfig()
	if err != nil || cfg == nil {
		return "dark"
	}
	switch cfg.Theme {
	case "dark", "light", "system":
		return cfg.Theme
	}
	return "dark"
}

// ResolveTheme resolves "system" to "dark" or "light" using the OS setting.
// Detection failures fall back to dark.
func ResolveTheme() string {
	theme := GetTheme()
	if theme != "system" {
		return theme
	}
	isDark, err := dark.IsDarkMode()
	if err != nil {
		return "dark"
	}
	if isDark {
		return "dark"
	}
	return "light"
}

// GetWorkspaceSettings returns workspace settings with defaults applied
func GetWorkspaceSettings() WorkspaceSettings {
	cfg, err := LoadUserConfig()
	if err != nil || cfg == nil {
		return WorkspaceSettings{ReloadPerSecond: DefaultReloadPerSecond}
	}
	ws := cfg.Workspace
	if ws.ReloadPerSecond <= 0 {
		ws.ReloadPerSecond = DefaultReloadPerSecond
	}
	return ws
}

// GetSearchSettings returns search settings with defaults applied
func GetSearchSettings() SearchSettings {
	var s SearchSettings
	if cfg, err := LoadUserConfig(); err == nil && cfg != nil {
		s = cfg.Search
	}
	if s.MaxProjectResults <= 0 {
		s.MaxProjectResults = DefaultMaxProjectResults
	}
	if s.MaxTaskResults <= 0 {
		s.MaxTaskResults = DefaultMaxTaskResults
	}
	if s.MaxFileResults <= 0 {
		s.MaxFileResults = DefaultMaxFileResults
	}
	if s.MaxActionResults <= 0 {
		s.MaxActionResults = DefaultMaxActionResults
	}
	if s.DebounceMS <= 0 {
		s.DebounceMS = DefaultDebounceMS
	}
	return s
}

// GetRecentsSettings returns recents settings with defaults applied
func GetRecentsSettings() RecentsSettings {
	var r RecentsSettings
	if cfg, err := LoadUserConfig(); err == nil && cfg != nil {
		r = cfg.Recents
	}
	if r.MaxItems <= 0 {
		r.MaxItems = DefaultMaxRecentItems
	}
	if r.MaxSearches <= 0 {
		r.MaxSearches = DefaultMaxRecentSearches
	}
	return r
}

// GetLogSettings returns the [logs] section as written; logging.Config
// applies its own defaults for unset values.
func GetLogSettings() LogSettings {
	cfg, err := LoadUserConfig()
	if err != nil || cfg == nil {
		return LogSettings{}
	}
	return cfg.Logs
}

// LoggingConfig builds a logging.Config for dir from the [logs] section.
func LoggingConfig(dir string, debug bool) logging.Config {
	ls := GetLogSettings()
	lc := logging.Config{
		Debug:                 debug,
		LogDir:                dir,
		Level:                 "debug",
		Format:                "json",
		MaxSizeMB:             ls.DebugMaxMB,
		MaxBackups:            ls.DebugBackups,
		MaxAgeDays:            ls.DebugRetentionDays,
		Compress:              ls.DebugCompress,
		RingBufferSize:        ls.RingBufferMB * 1024 * 1024,
		AggregateIntervalSecs: ls.AggregateIntervalS,
		PprofEnabled:          ls.PprofEnabled,
	}
	if ls.DebugLevel != "" {
		lc.Level = ls.DebugLevel
	}
	if ls.DebugFormat != "" {
		lc.Format = ls.DebugFormat
	}
	return lc
}
