package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Quiz.LockDelayMS != nil || cfg.Source.APIKey != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `[quiz]
lock-delay-ms = 500

[source]
api-key = "k_123"
timeout-sec = 5
image-rps = 2.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Quiz.LockDelayMS == nil || *cfg.Quiz.LockDelayMS != 500 {
		t.Fatalf("unexpected lock delay %+v", cfg.Quiz.LockDelayMS)
	}
	if cfg.Source.APIKey == nil || *cfg.Source.APIKey != "k_123" {
		t.Fatalf("unexpected api key")
	}
	if cfg.Source.Endpoint != nil {
		t.Fatalf("endpoint should be unset")
	}
	if cfg.Source.ImageRPS == nil || *cfg.Source.ImageRPS != 2.5 {
		t.Fatalf("unexpected image rps")
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[quiz]\nrounds = 3\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "quiz.rounds") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestParseEnv(t *testing.T) {
	t.Setenv("TUIQUIZ_API_KEY", "k_env")
	t.Setenv("TUIQUIZ_DB", "/tmp/q.db")
	cfg, err := ParseEnv()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.APIKey != "k_env" || cfg.DBPath != "/tmp/q.db" || cfg.Endpoint != "" {
		t.Fatalf("unexpected env config %+v", cfg)
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_CONFIG_HOME", "/conf")
	t.Setenv("XDG_CACHE_HOME", "/cache")
	if got := DefaultDBPath(); got != filepath.Join("/data", "tuiquiz", "tuiquiz.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultConfigPath(); got != filepath.Join("/conf", "tuiquiz", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultCatalogPath(); got != filepath.Join("/cache", "tuiquiz", "catalog.json") {
		t.Fatalf("unexpected catalog path %q", got)
	}
}
