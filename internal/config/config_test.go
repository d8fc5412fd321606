package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hperssn/sous/internal/config"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load(filepath.Join(tempHome, "absent.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent")
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}

	wantDB := filepath.Join(tempHome, ".local", "share", "sous", "sous.db")
	if cfg.Storage.DSN != wantDB {
		t.Fatalf("unexpected sqlite path: got %q want %q", cfg.Storage.DSN, wantDB)
	}
	if cfg.Server.Listen != "127.0.0.1:8080" {
		t.Fatalf("unexpected listen address: %q", cfg.Server.Listen)
	}
	if !cfg.Session.VoiceDefault {
		t.Fatal("expected voice on by default")
	}
	if cfg.TickInterval() != time.Second {
		t.Fatalf("tick interval = %v", cfg.TickInterval())
	}
	if cfg.Narration.Language != "en-US" || cfg.Narration.Rate != 0.9 {
		t.Fatalf("unexpected narration defaults: %+v", cfg.Narration)
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sous.toml")
	content := `
[server]
listen = ":9000"

[storage]
backend = "postgres"
dsn = "postgres://localhost/sous?sslmode=disable"

[session]
voice_default = false
tick_interval_ms = 250
report_retry_delay = 1
report_timeout = 5
idle_ttl_minutes = 30

[narration]
rate = 1.2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SOUS_LOG_LEVEL", "DEBUG")
	t.Setenv("SOUS_LISTEN", ":9100")

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Server.Listen != ":9100" {
		t.Fatalf("env did not override listen: %q", cfg.Server.Listen)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Storage.Backend != "postgres" || !strings.HasPrefix(cfg.Storage.DSN, "postgres://") {
		t.Fatalf("unexpected storage: %+v", cfg.Storage)
	}
	if cfg.Session.VoiceDefault {
		t.Fatal("expected voice off from file")
	}
	if cfg.TickInterval() != 250*time.Millisecond || cfg.IdleTTL() != 30*time.Minute {
		t.Fatalf("unexpected session timing: %+v", cfg.Session)
	}
	if cfg.Narration.Rate != 1.2 || cfg.Narration.Language != "en-US" {
		t.Fatalf("unexpected narration: %+v", cfg.Narration)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown backend", "[storage]\nbackend = \"mongo\"\n", "storage.backend"},
		{"bad format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"tick too fast", "[session]\ntick_interval_ms = 5\n", "tick_interval_ms"},
		{"zero retry delay", "[session]\nreport_retry_delay = 0\n", "report_retry_delay"},
		{"rate out of range", "[narration]\nrate = 4.0\n", "narration.rate"},
		{"unknown key", "[server]\nport = 80\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sous.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
