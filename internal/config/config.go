package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Source describes how ready tickets are fetched.
type Source struct {
	Binary string   `toml:"binary"`
	Args   []string `toml:"args"`
}

// Daemon contains configuration for the polling loop and the per-ticket command.
type Daemon struct {
	Command               string `toml:"command"`
	Args                  string `toml:"args"`
	IntervalSeconds       int    `toml:"interval_seconds"`
	CommandTimeoutSeconds int    `toml:"command_timeout_seconds"`
	Shell                 string `toml:"shell"`
	Template              string `toml:"template"`
	TemplateFile          string `toml:"template_file"`
	UseStdin              bool   `toml:"use_stdin"`
}

// Lock configures the marker lock that gates command execution. An empty path
// disables the gate.
type Lock struct {
	Path            string `toml:"path"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	RetryIntervalMS int    `toml:"retry_interval_ms"`
}

// History configures the execution journal.
type History struct {
	Enabled    bool   `toml:"enabled"`
	Path       string `toml:"path"`
	MaxEntries int    `toml:"max_entries"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Tickteer.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Source  Source  `toml:"source"`
	Daemon  Daemon  `toml:"daemon"`
	Lock    Lock    `toml:"lock"`
	History History `toml:"history"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tickteer/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
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

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
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

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tickteer.toml")
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

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Interval returns the pause between daemon cycles.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Daemon.IntervalSeconds) * time.Second
}

// CommandTimeout returns the wall-clock bound on a single command execution.
func (c *Config) CommandTimeout() time.Duration {
	return time.Duration(c.Daemon.CommandTimeoutSeconds) * time.Second
}

// LockTimeout returns how long the daemon waits for the processing lock.
func (c *Config) LockTimeout() time.Duration {
	return time.Duration(c.Lock.TimeoutSeconds) * time.Second
}

// LockRetryInterval returns the backoff between lock attempts.
func (c *Config) LockRetryInterval() time.Duration {
	return time.Duration(c.Lock.RetryIntervalMS) * time.Millisecond
}

// CommandLine joins the configured command and its arguments the way the
// shell receives them.
func (c *Config) CommandLine() string {
	command := strings.TrimSpace(c.Daemon.Command)
	if args := strings.TrimSpace(c.Daemon.Args); args != "" {
		return command + " " + args
	}
	return command
}

// InstanceLockPath is the flock file guarding against two daemons sharing one
// state directory.
func (c *Config) InstanceLockPath() string {
	return filepath.Join(c.Paths.StateDir, "tickteer.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
