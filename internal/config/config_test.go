package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pustakam/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatalf("expected missing file, resolved %s", resolved)
	}
	if cfg.Providers.Default != "google" {
		t.Fatalf("default provider = %q", cfg.Providers.Default)
	}
	if cfg.Generation.AutoRetryLimit != 2 {
		t.Fatalf("auto retry limit = %d", cfg.Generation.AutoRetryLimit)
	}
	if !cfg.Generation.ContinueOnError {
		t.Fatal("expected continue_on_error default true")
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + filepath.Join(dir, "data") + `"

[providers]
default = " Groq "

[providers.groq]
api_key = "gsk-test"

[generation]
request_timeout_seconds = 0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Providers.Default != "groq" {
		t.Fatalf("default provider not normalized: %q", cfg.Providers.Default)
	}
	if cfg.Generation.RequestTimeoutSeconds != 120 {
		t.Fatalf("zero timeout not replaced: %d", cfg.Generation.RequestTimeoutSeconds)
	}
	section, ok := cfg.ProviderSettings("groq")
	if !ok || section.APIKey != "gsk-test" {
		t.Fatalf("groq section = %+v, ok=%v", section, ok)
	}
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Providers.Default = "openai"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "providers.default") {
		t.Fatalf("expected provider validation error, got %v", err)
	}
}

func TestValidateRejectsBadLogFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "logfmt"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected log format validation error")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample config not found after create")
	}
	if cfg.Providers.Default != "google" {
		t.Fatalf("sample default provider = %q", cfg.Providers.Default)
	}
}

func TestPathHelpers(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = "/tmp/pustakam-test"
	if got := cfg.DatabasePath(); got != "/tmp/pustakam-test/books.db" {
		t.Fatalf("DatabasePath = %q", got)
	}
	if got := cfg.SocketPath(); !strings.HasSuffix(got, "pustakam.sock") {
		t.Fatalf("SocketPath = %q", got)
	}
}
