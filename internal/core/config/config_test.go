package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"graphindex/internal/core/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graphindex.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	content := `
profile = "debug"

[graph]
cls = "local"

[graph.grpc_server]

[runner]
bin_dir = "./target"
timeout = "30m"

[journal]
enabled = true
path = "state/journal.db"

[watch]
debounce = "1s"
exclude = ["*.tmp"]
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Profile != "debug" {
		t.Errorf("expected profile debug, got %s", cfg.Profile)
	}
	if cfg.Graph.Cls != "local" {
		t.Errorf("expected graph cls local, got %s", cfg.Graph.Cls)
	}
	if cfg.Runner.BinDir != "./target" {
		t.Errorf("unexpected bin_dir: %s", cfg.Runner.BinDir)
	}
	if cfg.Runner.Timeout != 30*time.Minute {
		t.Errorf("expected timeout 30m, got %v", cfg.Runner.Timeout)
	}
	if !cfg.Journal.Enabled || cfg.Journal.Path != "state/journal.db" {
		t.Errorf("unexpected journal config: %+v", cfg.Journal)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("expected debounce 1s, got %v", cfg.Watch.Debounce)
	}
}

func TestLoadMissingGraphStanza(t *testing.T) {
	content := `
profile = "release"
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("expected error for missing [graph] stanza")
	}
	if !errors.IsCode(err, errors.CodeConfiguration) {
		t.Errorf("expected CONFIGURATION_ERROR, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !errors.IsCode(err, errors.CodeConfiguration) {
		t.Errorf("expected CONFIGURATION_ERROR, got %v", err)
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[graph]\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Profile != DefaultProfile {
		t.Errorf("expected default profile %q, got %q", DefaultProfile, cfg.Profile)
	}
	if cfg.Graph.Cls != "local" {
		t.Errorf("expected default cls local, got %s", cfg.Graph.Cls)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("expected default debounce 500ms, got %v", cfg.Watch.Debounce)
	}
	if cfg.Journal.Enabled {
		t.Error("journal should be disabled by default")
	}
}

func TestDefaultMatchesEmptyStanza(t *testing.T) {
	cfg := Default()
	if cfg.Graph.Cls != "local" || cfg.Profile != DefaultProfile {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}
