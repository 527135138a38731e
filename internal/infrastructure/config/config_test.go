package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Server.Port)
	}
	if len(cfg.Manifests.Patterns) != 3 {
		t.Errorf("Expected 3 default patterns, got %v", cfg.Manifests.Patterns)
	}
	if !cfg.Events.Enabled || cfg.Events.Heartbeat != 25*time.Second {
		t.Errorf("Unexpected events defaults: %+v", cfg.Events)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("EVENTS_ENABLED", "false")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "9999" {
		t.Errorf("Env should override default port, got %s", cfg.Server.Port)
	}
	if cfg.Events.Enabled {
		t.Error("Env should disable events")
	}
}

func TestFileOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "9999")

	path := filepath.Join(t.TempDir(), "layoutd.toml")
	content := "[server]\nport = \"7070\"\n\n[manifests]\ndefault = \"home\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("File should win over env, got %s", cfg.Server.Port)
	}
	if cfg.Manifests.Default != "home" {
		t.Errorf("File should set manifest default, got %s", cfg.Manifests.Default)
	}
	// Settings absent from the file keep their env/default values.
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Unset file keys must not clobber defaults, got %s", cfg.Server.Host)
	}
}

func TestMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Missing config file should fail loudly")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg := LoadOrDefault()
	if cfg == nil || cfg.Server.Port == "" {
		t.Fatal("LoadOrDefault should always return a usable config")
	}
}
