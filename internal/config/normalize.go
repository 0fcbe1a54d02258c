package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSource()
	if err := c.normalizeDaemon(); err != nil {
		return err
	}
	if err := c.normalizeLock(); err != nil {
		return err
	}
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSource() {
	if value, ok := os.LookupEnv("TICKTEER_BD_BINARY"); ok && strings.TrimSpace(value) != "" {
		c.Source.Binary = value
	}
	c.Source.Binary = strings.TrimSpace(c.Source.Binary)
	if c.Source.Binary == "" {
		c.Source.Binary = defaultSourceBinary
	}
	if len(c.Source.Args) == 0 {
		c.Source.Args = defaultSourceArgs()
	}
}

func (c *Config) normalizeDaemon() error {
	c.Daemon.Command = strings.TrimSpace(c.Daemon.Command)
	c.Daemon.Args = strings.TrimSpace(c.Daemon.Args)
	c.Daemon.Shell = strings.TrimSpace(c.Daemon.Shell)
	if c.Daemon.Shell == "" {
		c.Daemon.Shell = defaultShell
	}
	if c.Daemon.IntervalSeconds == 0 {
		c.Daemon.IntervalSeconds = defaultIntervalSeconds
	}
	if c.Daemon.CommandTimeoutSeconds == 0 {
		c.Daemon.CommandTimeoutSeconds = defaultCommandTimeoutSeconds
	}
	if strings.TrimSpace(c.Daemon.TemplateFile) != "" {
		expanded, err := expandPath(strings.TrimSpace(c.Daemon.TemplateFile))
		if err != nil {
			return fmt.Errorf("daemon.template_file: %w", err)
		}
		c.Daemon.TemplateFile = expanded
	}
	return nil
}

func (c *Config) normalizeLock() error {
	if strings.TrimSpace(c.Lock.Path) != "" {
		expanded, err := expandPath(strings.TrimSpace(c.Lock.Path))
		if err != nil {
			return fmt.Errorf("lock.path: %w", err)
		}
		c.Lock.Path = expanded
	}
	if c.Lock.RetryIntervalMS == 0 {
		c.Lock.RetryIntervalMS = defaultLockRetryIntervalMS
	}
	return nil
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = filepath.Join(c.Paths.StateDir, defaultHistoryFile)
	}
	expanded, err := expandPath(strings.TrimSpace(c.History.Path))
	if err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	c.History.Path = expanded
	if c.History.MaxEntries == 0 {
		c.History.MaxEntries = defaultHistoryMaxEntries
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// Normalize re-applies normalization after callers override fields (CLI flags).
func (c *Config) Normalize() error {
	return c.normalize()
}
