package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DirName is the per-user data directory under $HOME
	DirName = ".superlane"

	// ProfilesDirName holds one data directory per profile
	ProfilesDirName = "profiles"

	// DefaultProfile is used when no profile is selected
	DefaultProfile = "default"

	// StateDBFileName is the SQLite file holding recents for a profile
	StateDBFileName = "state.db"

	// WorkspaceFileName is the default snapshot file for a profile
	WorkspaceFileName = "workspace.json"

	// ProfileEnv selects the profile when no -p flag is given
	ProfileEnv = "SUPERLANE_PROFILE"
)

// GetSuperlaneDir returns ~/.superlane
func GetSuperlaneDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// GetProfileDir returns the data directory of a profile
func GetProfileDir(profile string) (string, error) {
	if profile == "" {
		profile = DefaultProfile
	}
	// Prevent path traversal through the profile name
	profile = filepath.Base(profile)
	if profile == "." || profile == ".." || profile == string(filepath.Separator) {
		return "", fmt.Errorf("invalid profile name: %s", profile)
	}

	dir, err := GetSuperlaneDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ProfilesDirName, profile), nil
}

// GetStateDBPath returns the SQLite path for a profile
func GetStateDBPath(profile string) (string, error) {
	dir, err := GetProfileDir(profile)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, StateDBFileName), nil
}

// GetEffectiveProfile resolves the profile: explicit flag, then
// SUPERLANE_PROFILE, then default_profile from config.toml.
func GetEffectiveProfile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(ProfileEnv); env != "" {
		return env
	}
	cfg, err := LoadUserConfig()
	if err == nil && cfg.DefaultProfile != "" {
		return cfg.DefaultProfile
	}
	return DefaultProfile
}

// ExpandTilde expands a leading ~/ to the home directory. Paths that would
// escape the home directory are returned unchanged.
func ExpandTilde(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	cleaned := filepath.Clean(filepath.Join(home, path[2:]))
	if !strings.HasPrefix(cleaned, home) {
		configLog.Warn("path_traversal_detected")
		return path
	}
	return cleaned
}

// ResolveWorkspacePath picks the snapshot location: explicit flag, then
// [workspace] path from config, then the profile's workspace.json.
func ResolveWorkspacePath(explicit, profile string) (string, error) {
	if explicit != "" {
		return ExpandTilde(explicit), nil
	}
	if ws := GetWorkspaceSettings(); ws.Path != "" {
		return ExpandTilde(ws.Path), nil
	}
	dir, err := GetProfileDir(profile)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, WorkspaceFileName), nil
}
