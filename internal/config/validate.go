package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Listen == "" {
		return errors.New("server.listen must be set")
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateSession(); err != nil {
		return err
	}
	if c.Narration.Rate < 0.1 || c.Narration.Rate > 2 {
		return errors.New("narration.rate must be between 0.1 and 2")
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case "memory":
		return nil
	case "sqlite", "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the %s backend", c.Storage.Backend)
		}
		return nil
	default:
		return fmt.Errorf("storage.backend: unsupported value %q", c.Storage.Backend)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateSession() error {
	if c.Session.TickIntervalMillis < 100 {
		return errors.New("session.tick_interval_ms must be at least 100")
	}
	if c.Session.ReportRetryDelaySeconds <= 0 {
		return errors.New("session.report_retry_delay must be positive")
	}
	if c.Session.ReportTimeoutSeconds <= 0 {
		return errors.New("session.report_timeout must be positive")
	}
	if c.Session.IdleTTLMinutes <= 0 {
		return errors.New("session.idle_ttl_minutes must be positive")
	}
	return nil
}
