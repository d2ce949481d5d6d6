// Package config provides configuration management for gitstate.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const defaultDataDir = "~/.gitstate"

// Config holds all configuration for gitstate.
type Config struct {
	Language      string             `mapstructure:"language"`
	Locking       LockingConfig      `mapstructure:"locking"`
	MergeInfo     MergeInfoConfig    `mapstructure:"merge_info"`
	Git           GitConfig          `mapstructure:"git"`
	Watch         WatchConfig        `mapstructure:"watch"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	MCP           MCPConfig          `mapstructure:"mcp"`
	Storage       StorageConfig      `mapstructure:"storage"`
	Log           LogConfig          `mapstructure:"log"`
	Theme         ThemeConfig        `mapstructure:"theme"`
}

// LockingConfig holds exclusive-lock workflow settings.
type LockingConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// User is the lock owner name that counts as the current user.
	// Empty means git's user.name.
	User string `mapstructure:"user"`
}

// MergeInfoConfig selects how merge-conflict queries are answered.
type MergeInfoConfig struct {
	Mode string `mapstructure:"mode"`
}

// GitConfig holds repository access settings.
type GitConfig struct {
	Binary       string `mapstructure:"binary"`
	Remote       string `mapstructure:"remote"`
	HistoryDepth int    `mapstructure:"history_depth"`
	Workers      int    `mapstructure:"workers"`
}

// WatchConfig holds file watcher settings.
type WatchConfig struct {
	Debounce Duration `mapstructure:"debounce"`
}

// NotificationConfig holds notification settings.
type NotificationConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Sound   bool `mapstructure:"sound"`
}

// MCPConfig holds MCP server settings.
type MCPConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ThemeConfig holds theme customization settings (colors and icons).
type ThemeConfig struct {
	ColorTitle    string `mapstructure:"color_title"`
	ColorPath     string `mapstructure:"color_path"`
	ColorMuted    string `mapstructure:"color_muted"`
	ColorHelp     string `mapstructure:"color_help"`
	ColorLocked   string `mapstructure:"color_locked"`
	ColorOutdated string `mapstructure:"color_outdated"`
	ColorConflict string `mapstructure:"color_conflict"`
	ColorAdded    string `mapstructure:"color_added"`
	ColorModified string `mapstructure:"color_modified"`
	ColorDeleted  string `mapstructure:"color_deleted"`

	IconCheckedOut          string `mapstructure:"icon_checked_out"`
	IconCheckedOutByOther   string `mapstructure:"icon_checked_out_by_other"`
	IconNotAtHeadRevision   string `mapstructure:"icon_not_at_head_revision"`
	IconNotInDepot          string `mapstructure:"icon_not_in_depot"`
	IconOpenForAdd          string `mapstructure:"icon_open_for_add"`
	IconBranched            string `mapstructure:"icon_branched"`
	IconMarkedForDelete     string `mapstructure:"icon_marked_for_delete"`
	IconModifiedOtherBranch string `mapstructure:"icon_modified_other_branch"`
}

// DefaultThemeConfig returns the default theme configuration.
func DefaultThemeConfig() ThemeConfig {
	return ThemeConfig{
		ColorTitle:    "#7C6FE0",
		ColorPath:     "#E2E8F0",
		ColorMuted:    "#6B7280",
		ColorHelp:     "#95A5A6",
		ColorLocked:   "#F59E0B",
		ColorOutdated: "#60A5FA",
		ColorConflict: "#EF4444",
		ColorAdded:    "#2ECC71",
		ColorModified: "#A78BFA",
		ColorDeleted:  "#F87171",

		IconCheckedOut:          "✎",
		IconCheckedOutByOther:   "🔒",
		IconNotAtHeadRevision:   "⇣",
		IconNotInDepot:          "?",
		IconOpenForAdd:          "+",
		IconBranched:            "⑂",
		IconMarkedForDelete:     "✗",
		IconModifiedOtherBranch: "⚡",
	}
}

// Duration is a wrapper around time.Duration for TOML parsing.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// String returns the string representation of the duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Language: "en",
		Locking: LockingConfig{
			Enabled: false,
		},
		MergeInfo: MergeInfoConfig{
			Mode: "resolve",
		},
		Git: GitConfig{
			Binary:       "git",
			Remote:       "origin",
			HistoryDepth: 50,
			Workers:      4,
		},
		Watch: WatchConfig{
			Debounce: Duration(600 * time.Millisecond),
		},
		Notifications: NotificationConfig{
			Enabled: true,
			Sound:   false,
		},
		MCP: MCPConfig{
			Enabled: true,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir,
		},
		Log: LogConfig{
			Level: "info",
		},
		Theme: DefaultThemeConfig(),
	}
}

// Load loads the configuration from the default config file, creating it
// with defaults on first use.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from configPath. Environment variables
// prefixed with GITSTATE_ override file values (GITSTATE_LOCKING_ENABLED=true).
func LoadFrom(configPath string) (*Config, error) {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := SaveTo(configPath, DefaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	v := newViper(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	dataDir, err := expandHome(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.Storage.DataDir = dataDir

	return &cfg, nil
}

// Save saves the configuration to the default config file.
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return SaveTo(configPath, cfg)
}

// SaveTo saves the configuration to configPath.
func SaveTo(configPath string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := newViper(configPath)
	v.Set("language", cfg.Language)
	v.Set("locking.enabled", cfg.Locking.Enabled)
	v.Set("locking.user", cfg.Locking.User)
	v.Set("merge_info.mode", cfg.MergeInfo.Mode)
	v.Set("git.binary", cfg.Git.Binary)
	v.Set("git.remote", cfg.Git.Remote)
	v.Set("git.history_depth", cfg.Git.HistoryDepth)
	v.Set("git.workers", cfg.Git.Workers)
	v.Set("watch.debounce", cfg.Watch.Debounce.String())
	v.Set("notifications.enabled", cfg.Notifications.Enabled)
	v.Set("notifications.sound", cfg.Notifications.Sound)
	v.Set("mcp.enabled", cfg.MCP.Enabled)
	v.Set("storage.data_dir", cfg.Storage.DataDir)
	v.Set("log.level", cfg.Log.Level)

	t := cfg.Theme
	v.Set("theme.color_title", t.ColorTitle)
	v.Set("theme.color_path", t.ColorPath)
	v.Set("theme.color_muted", t.ColorMuted)
	v.Set("theme.color_help", t.ColorHelp)
	v.Set("theme.color_locked", t.ColorLocked)
	v.Set("theme.color_outdated", t.ColorOutdated)
	v.Set("theme.color_conflict", t.ColorConflict)
	v.Set("theme.color_added", t.ColorAdded)
	v.Set("theme.color_modified", t.ColorModified)
	v.Set("theme.color_deleted", t.ColorDeleted)
	v.Set("theme.icon_checked_out", t.IconCheckedOut)
	v.Set("theme.icon_checked_out_by_other", t.IconCheckedOutByOther)
	v.Set("theme.icon_not_at_head_revision", t.IconNotAtHeadRevision)
	v.Set("theme.icon_not_in_depot", t.IconNotInDepot)
	v.Set("theme.icon_open_for_add", t.IconOpenForAdd)
	v.Set("theme.icon_branched", t.IconBranched)
	v.Set("theme.icon_marked_for_delete", t.IconMarkedForDelete)
	v.Set("theme.icon_modified_other_branch", t.IconModifiedOtherBranch)

	return v.WriteConfigAs(configPath)
}

// GetConfigPath returns the path to the config file. GITSTATE_CONFIG overrides it.
func GetConfigPath() (string, error) {
	if p := os.Getenv("GITSTATE_CONFIG"); p != "" {
		return p, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".gitstate", "config.toml"), nil
}

// GetDBPath returns the path to the database file.
func GetDBPath(cfg *Config) string {
	return filepath.Join(cfg.Storage.DataDir, "gitstate.db")
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	v.SetEnvPrefix("GITSTATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// expandHome resolves a leading ~ against the home directory.
func expandHome(dir string) (string, error) {
	if dir == "" {
		dir = defaultDataDir
	}
	if dir != "~" && !strings.HasPrefix(dir, "~/") {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(dir, "~")), nil
}

// setDefaults sets default values for viper.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("language", d.Language)
	v.SetDefault("locking.enabled", d.Locking.Enabled)
	v.SetDefault("locking.user", d.Locking.User)
	v.SetDefault("merge_info.mode", d.MergeInfo.Mode)
	v.SetDefault("git.binary", d.Git.Binary)
	v.SetDefault("git.remote", d.Git.Remote)
	v.SetDefault("git.history_depth", d.Git.HistoryDepth)
	v.SetDefault("git.workers", d.Git.Workers)
	v.SetDefault("watch.debounce", d.Watch.Debounce.String())
	v.SetDefault("notifications.enabled", d.Notifications.Enabled)
	v.SetDefault("notifications.sound", d.Notifications.Sound)
	v.SetDefault("mcp.enabled", d.MCP.Enabled)
	v.SetDefault("storage.data_dir", d.Storage.DataDir)
	v.SetDefault("log.level", d.Log.Level)

	// Theme defaults
	t := d.Theme
	v.SetDefault("theme.color_title", t.ColorTitle)
	v.SetDefault("theme.color_path", t.ColorPath)
	v.SetDefault("theme.color_muted", t.ColorMuted)
	v.SetDefault("theme.color_help", t.ColorHelp)
	v.SetDefault("theme.color_locked", t.ColorLocked)
	v.SetDefault("theme.color_outdated", t.ColorOutdated)
	v.SetDefault("theme.color_conflict", t.ColorConflict)
	v.SetDefault("theme.color_added", t.ColorAdded)
	v.SetDefault("theme.color_modified", t.ColorModified)
	v.SetDefault("theme.color_deleted", t.ColorDeleted)
	v.SetDefault("theme.icon_checked_out", t.IconCheckedOut)
	v.SetDefault("theme.icon_checked_out_by_other", t.IconCheckedOutByOther)
	v.SetDefault("theme.icon_not_at_head_revision", t.IconNotAtHeadRevision)
	v.SetDefault("theme.icon_not_in_depot", t.IconNotInDepot)
	v.SetDefault("theme.icon_open_for_add", t.IconOpenForAdd)
	v.SetDefault("theme.icon_branched", t.IconBranched)
	v.SetDefault("theme.icon_marked_for_delete", t.IconMarkedForDelete)
	v.SetDefault("theme.icon_modified_other_branch", t.IconModifiedOtherBranch)
}
