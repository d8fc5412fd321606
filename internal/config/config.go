package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Server contains the HTTP listener settings.
type Server struct {
	Listen string `toml:"listen"`
}

// Storage selects the recipe store. DSN is a file path for sqlite and a
// connection string for postgres; memory ignores it.
type Storage struct {
	Backend string `toml:"backend"`
	DSN     string `toml:"dsn"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Session contains cooking session timing.
type Session struct {
	VoiceDefault            bool `toml:"voice_default"`
	TickIntervalMillis      int  `toml:"tick_interval_ms"`
	ReportRetryDelaySeconds int  `toml:"report_retry_delay"`
	ReportTimeoutSeconds    int  `toml:"report_timeout"`
	IdleTTLMinutes          int  `toml:"idle_ttl_minutes"`
}

// Narration contains text-to-speech settings sent with each utterance.
type Narration struct {
	Language string  `toml:"language"`
	Rate     float64 `toml:"rate"`
}

// Config encapsulates all configuration values for the service.
type Config struct {
	Server    Server    `toml:"server"`
	Storage   Storage   `toml:"storage"`
	Logging   Logging   `toml:"logging"`
	Session   Session   `toml:"session"`
	Narration Narration `toml:"narration"`
}

// Load locates, parses, and validates a configuration file. A missing file
// is not an error: defaults plus environment overrides are used.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Session.TickIntervalMillis) * time.Millisecond
}

func (c *Config) ReportRetryDelay() time.Duration {
	return time.Duration(c.Session.ReportRetryDelaySeconds) * time.Second
}

func (c *Config) ReportTimeout() time.Duration {
	return time.Duration(c.Session.ReportTimeoutSeconds) * time.Second
}

func (c *Config) IdleTTL() time.Duration {
	return time.Duration(c.Session.IdleTTLMinutes) * time.Minute
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sous.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}
