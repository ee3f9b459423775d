package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
state_manifest: /var/lib/keel/state.yaml
target_manifest: ./target.star
changed: [km, pes-spool]
log_level: debug
command_timeout: 10s
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.StateManifest != "/var/lib/keel/state.yaml" {
		t.Errorf("unexpected state manifest: %q", cfg.StateManifest)
	}
	if len(cfg.Changed) != 2 {
		t.Errorf("expected 2 changed names, got %v", cfg.Changed)
	}
	if cfg.CommandTimeout != Duration(10*time.Second) {
		t.Errorf("expected 10s timeout, got %v", cfg.CommandTimeout)
	}
}

func TestLoadMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	if _, err := Load(path, true); err == nil {
		t.Error("expected error for required missing file")
	}

	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("unexpected error for optional missing file: %v", err)
	}
	if cfg == nil || cfg.LogLevel != "" {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv(ConfigEnvVar, "/tmp/keel-test.yaml")
	if got := DefaultPath(); got != "/tmp/keel-test.yaml" {
		t.Errorf("expected env override, got %q", got)
	}
}
