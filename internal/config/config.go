package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/samber/lo"
)

// DirName is the name of the JetStorage base and repo config directories.
const DirName = ".jetstorage"

// Config holds application configuration for the command-line tooling.
type Config struct {
	// SuggestionLimit caps the number of suggestions returned by suggest.
	SuggestionLimit int `json:"suggestion_limit"`

	// BookmarkLimit caps the number of bookmarks returned by a search.
	BookmarkLimit int `json:"bookmark_limit"`

	// BookmarksFile is the path to a Chrome-format Bookmarks JSON file.
	// Empty means the default Chrome profile location for this platform.
	BookmarksFile string `json:"bookmarks_file,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is locked" errors).
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of type names to disable entirely.
	// Known types: "values", "field", "settings", "bookmarks".
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		SuggestionLimit: 5,
		BookmarkLimit:   50,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.jetstorage.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.jetstorage) and repo (.jetstorage) directories.
// Repo config is found by walking upward from startDir to find the nearest .jetstorage/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repoConfigPath := FindRepoConfig(startDir)
	// The global dir is itself a .jetstorage dir; don't count it twice.
	if repoConfigPath == filepath.Join(globalDir, "config.json") {
		repoConfigPath = ""
	}
	repo, err := loadFileRaw(repoConfigPath)
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .jetstorage/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, DirName, "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		SuggestionLimit: lo.CoalesceOrEmpty(overlay.SuggestionLimit, base.SuggestionLimit),
		BookmarkLimit:   lo.CoalesceOrEmpty(overlay.BookmarkLimit, base.BookmarkLimit),
		BookmarksFile:   lo.CoalesceOrEmpty(strings.TrimSpace(overlay.BookmarksFile), strings.TrimSpace(base.BookmarksFile)),
		DBMaxOpenConns:  lo.CoalesceOrEmpty(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns:  lo.CoalesceOrEmpty(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	all := lo.Map(append(append([]string{}, a...), b...), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	result := lo.Uniq(lo.Compact(all))
	if len(result) == 0 {
		return nil
	}
	return result
}

// DefaultBookmarksFile returns the Chrome default-profile Bookmarks path for this platform.
func DefaultBookmarksFile(homeDir string) string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", "Google", "Chrome", "Default", "Bookmarks")
	case "windows":
		return filepath.Join(homeDir, "AppData", "Local", "Google", "Chrome", "User Data", "Default", "Bookmarks")
	default:
		return filepath.Join(homeDir, ".config", "google-chrome", "Default", "Bookmarks")
	}
}
