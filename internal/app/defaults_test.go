package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("uses env vars when set", func(t *testing.T) {
		t.Setenv("INTAKE_CONFIG_PATH", "/custom/config.toml")
		t.Setenv("INTAKE_HOME", "/custom/intake")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		if defaults["config_path"] != "/custom/config.toml" {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], "/custom/config.toml")
		}
		if defaults["base_dir"] != "/custom/intake" {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], "/custom/intake")
		}
		if defaults["log_dir"] != "/custom/intake/log" {
			t.Errorf("log_dir = %q, want %q", defaults["log_dir"], "/custom/intake/log")
		}
	})

	t.Run("falls back to home dir defaults", func(t *testing.T) {
		t.Setenv("INTAKE_CONFIG_PATH", "")
		t.Setenv("INTAKE_HOME", "")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		homeDir, _ := os.UserHomeDir()

		wantConfig := filepath.Join(homeDir, ".config", "intake.toml")
		if defaults["config_path"] != wantConfig {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], wantConfig)
		}

		wantBase := filepath.Join(homeDir, ".local", "share", "intake")
		if defaults["base_dir"] != wantBase {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], wantBase)
		}

		wantLog := filepath.Join(wantBase, "log")
		if defaults["log_dir"] != wantLog {
			t.Errorf("log_dir = %q, want %q", defaults["log_dir"], wantLog)
		}
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("INTAKE_CONFIG_PATH", filepath.Join(home, "absent.toml"))
		t.Setenv("INTAKE_HOME", home)

		cfg, path, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if path != filepath.Join(home, "absent.toml") {
			t.Errorf("path = %q", path)
		}
		if cfg.BaseDir != home || cfg.LogDir != filepath.Join(home, "log") {
			t.Errorf("cfg dirs = (%q, %q), want defaults under %q", cfg.BaseDir, cfg.LogDir, home)
		}
	})

	t.Run("reads existing file", func(t *testing.T) {
		home := t.TempDir()
		path := filepath.Join(home, "intake.toml")
		if err := os.WriteFile(path, []byte("[store]\ntype = \"sqlite\"\n"), 0644); err != nil {
			t.Fatal(err)
		}
		t.Setenv("INTAKE_CONFIG_PATH", path)
		t.Setenv("INTAKE_HOME", home)

		cfg, _, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Store.Type != "sqlite" {
			t.Errorf("Store.Type = %q, want sqlite", cfg.Store.Type)
		}
		if cfg.Tracker.TickInterval.Duration == 0 {
			t.Error("TickInterval not defaulted")
		}
	})
}
