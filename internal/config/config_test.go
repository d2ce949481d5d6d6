package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Locking.Enabled {
		t.Error("locking should be off by default")
	}
	if cfg.MergeInfo.Mode != "resolve" {
		t.Errorf("MergeInfo.Mode = %q, want resolve", cfg.MergeInfo.Mode)
	}
	if cfg.Git.HistoryDepth != 50 || cfg.Git.Workers != 4 {
		t.Errorf("Git = %+v", cfg.Git)
	}
	if time.Duration(cfg.Watch.Debounce) != 600*time.Millisecond {
		t.Errorf("Watch.Debounce = %v, want 600ms", cfg.Watch.Debounce)
	}
}

func TestLoadFrom_CreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file was not created: %v", err)
	}

	home, _ := os.UserHomeDir()
	if cfg.Storage.DataDir != filepath.Join(home, ".gitstate") {
		t.Errorf("Storage.DataDir = %q, want it expanded under home", cfg.Storage.DataDir)
	}
	if cfg.Git.Remote != "origin" {
		t.Errorf("Git.Remote = %q, want origin", cfg.Git.Remote)
	}
	if time.Duration(cfg.Watch.Debounce) != 600*time.Millisecond {
		t.Errorf("Watch.Debounce = %v, want 600ms", cfg.Watch.Debounce)
	}
	if cfg.Theme.IconCheckedOutByOther == "" {
		t.Error("theme icons were not defaulted")
	}
}

func TestLoadFrom_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := strings.Join([]string{
		`language = "fr"`,
		`[locking]`,
		`enabled = true`,
		`user = "carol"`,
		`[merge_info]`,
		`mode = "legacy"`,
		`[git]`,
		`history_depth = 5`,
		`[watch]`,
		`debounce = "2s"`,
		`[storage]`,
		`data_dir = "/var/lib/gitstate"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if !cfg.Locking.Enabled || cfg.Locking.User != "carol" {
		t.Errorf("Locking = %+v", cfg.Locking)
	}
	if cfg.MergeInfo.Mode != "legacy" {
		t.Errorf("MergeInfo.Mode = %q, want legacy", cfg.MergeInfo.Mode)
	}
	if cfg.Git.HistoryDepth != 5 {
		t.Errorf("Git.HistoryDepth = %d, want 5", cfg.Git.HistoryDepth)
	}
	if cfg.Git.Workers != 4 {
		t.Errorf("Git.Workers = %d, want default 4", cfg.Git.Workers)
	}
	if time.Duration(cfg.Watch.Debounce) != 2*time.Second {
		t.Errorf("Watch.Debounce = %v, want 2s", cfg.Watch.Debounce)
	}
	if cfg.Storage.DataDir != "/var/lib/gitstate" {
		t.Errorf("Storage.DataDir = %q", cfg.Storage.DataDir)
	}
	if cfg.Language != "fr" {
		t.Errorf("Language = %q, want fr", cfg.Language)
	}
}

func TestLoadFrom_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("GITSTATE_LOCKING_ENABLED", "true")
	t.Setenv("GITSTATE_MERGE_INFO_MODE", "legacy")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if !cfg.Locking.Enabled {
		t.Error("GITSTATE_LOCKING_ENABLED was ignored")
	}
	if cfg.MergeInfo.Mode != "legacy" {
		t.Errorf("MergeInfo.Mode = %q, want legacy", cfg.MergeInfo.Mode)
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Locking.Enabled = true
	cfg.Watch.Debounce = Duration(1500 * time.Millisecond)
	cfg.Storage.DataDir = "/data"
	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if !got.Locking.Enabled {
		t.Error("Locking.Enabled lost in round trip")
	}
	if time.Duration(got.Watch.Debounce) != 1500*time.Millisecond {
		t.Errorf("Watch.Debounce = %v, want 1.5s", got.Watch.Debounce)
	}
}

func TestGetConfigPath_EnvOverride(t *testing.T) {
	t.Setenv("GITSTATE_CONFIG", "/tmp/custom.toml")
	got, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if got != "/tmp/custom.toml" {
		t.Errorf("GetConfigPath() = %q", got)
	}
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("750ms")); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if time.Duration(d) != 750*time.Millisecond {
		t.Errorf("Duration = %v", d)
	}
	if err := d.UnmarshalText([]byte("soon")); err == nil {
		t.Error("UnmarshalText(soon) should fail")
	}
	text, _ := d.MarshalText()
	if string(text) != "750ms" {
		t.Errorf("MarshalText() = %q", text)
	}
}
