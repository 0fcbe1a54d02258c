package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateDaemon(); err != nil {
		return err
	}
	if err := c.validateLock(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	return c.validateLogging()
}

// ValidateDaemonMode checks the settings only daemon mode needs.
func (c *Config) ValidateDaemonMode() error {
	if strings.TrimSpace(c.Daemon.Command) == "" {
		return errors.New("--run is required when using --daemon (or set daemon.command)")
	}
	return nil
}

func (c *Config) validateSource() error {
	if strings.TrimSpace(c.Source.Binary) == "" {
		return errors.New("source.binary must be set")
	}
	return nil
}

func (c *Config) validateDaemon() error {
	if err := ensurePositiveMap(map[string]int{
		"daemon.interval_seconds":        c.Daemon.IntervalSeconds,
		"daemon.command_timeout_seconds": c.Daemon.CommandTimeoutSeconds,
	}); err != nil {
		return err
	}
	if strings.TrimSpace(c.Daemon.Shell) == "" {
		return errors.New("daemon.shell must be set")
	}
	return nil
}

func (c *Config) validateLock() error {
	if c.Lock.TimeoutSeconds < 0 {
		return errors.New("lock.timeout_seconds must be zero or positive")
	}
	if c.Lock.RetryIntervalMS <= 0 {
		return errors.New("lock.retry_interval_ms must be positive")
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.MaxEntries < 0 {
		return errors.New("history.max_entries must be zero or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
