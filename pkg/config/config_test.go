package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadDefaultsWhenFileAbsent(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "gemini" || cfg.ListenAddr != ":8080" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
listen_addr: ":9000"
provider: openai
model: gpt-4o-mini
max_cycles: 10
tool_timeout: 30s
weaviate:
  host: "search:8080"
  scheme: https
  class: EarningsReport
`)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9000" || cfg.Model != "gpt-4o-mini" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if time.Duration(cfg.ToolTimeout) != 30*time.Second {
		t.Errorf("tool_timeout = %v", time.Duration(cfg.ToolTimeout))
	}
	if cfg.Weaviate.Host != "search:8080" || cfg.Weaviate.Scheme != "https" {
		t.Errorf("weaviate config not applied: %+v", cfg.Weaviate)
	}
	if cfg.APIKey != "sk-test" {
		t.Errorf("api key not taken from environment: %q", cfg.APIKey)
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	path := writeConfig(t, "provider: clippy\nmodel: m\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, "tool_timeout: soon\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}
