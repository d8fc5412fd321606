package config

import (
	"fmt"
	"os"
	"strings"
)

const envPrefix = "SOUS_"

// applyEnv lets the environment override file values, which is how
// containers configure the service.
func (c *Config) applyEnv() {
	if v := getEnv("LISTEN"); v != "" {
		c.Server.Listen = v
	}
	if v := getEnv("STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := getEnv("STORAGE_DSN"); v != "" {
		c.Storage.DSN = v
	}
	if v := getEnv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := getEnv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + key))
}

func (c *Config) normalize() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "sqlite" {
		path, err := expandPath(c.Storage.DSN)
		if err != nil {
			return fmt.Errorf("storage.dsn: %w", err)
		}
		c.Storage.DSN = path
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	c.Narration.Language = strings.TrimSpace(c.Narration.Language)
	if c.Narration.Language == "" {
		c.Narration.Language = defaultNarrationLanguage
	}
	if c.Narration.Rate == 0 {
		c.Narration.Rate = defaultNarrationRate
	}
	return nil
}
