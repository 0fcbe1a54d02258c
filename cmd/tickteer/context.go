package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"tickteer/internal/config"
	"tickteer/internal/logging"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = *c.logLevelFlag
			if err := cfg.Normalize(); err != nil {
				c.configErr = err
				return
			}
			if err := cfg.Validate(); err != nil {
				c.configErr = err
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

// consoleLogger logs to w only. Used by the short-lived commands; the daemon
// also writes the log file.
func (c *commandContext) consoleLogger(w io.Writer) *slog.Logger {
	cfg := c.config
	opts := logging.Options{Level: "info", Format: "console", Writer: w}
	if cfg != nil {
		opts.Level = cfg.Logging.Level
		opts.Format = cfg.Logging.Format
	}
	logger, err := logging.New(opts)
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

// applyRootOverrides copies explicitly set root flags onto cfg and
// revalidates it.
func applyRootOverrides(cmd *cobra.Command, cfg *config.Config, opts rootOptions) error {
	flags := cmd.Flags()
	if flags.Changed("run") {
		cfg.Daemon.Command = opts.run
	}
	if flags.Changed("args") {
		cfg.Daemon.Args = opts.args
	}
	if flags.Changed("use-stdin-template") {
		cfg.Daemon.Template = opts.template
	}
	if flags.Changed("use-stdin-template-file") {
		cfg.Daemon.TemplateFile = opts.templateFile
	}
	if flags.Changed("interval") {
		cfg.Daemon.IntervalSeconds = opts.interval
		if opts.interval <= 0 {
			return fmt.Errorf("--interval must be positive, got %d", opts.interval)
		}
	}
	if flags.Changed("lock-path") {
		cfg.Lock.Path = opts.lockPath
	}
	if flags.Changed("lock-timeout") {
		if opts.lockTimeout < 0 {
			return fmt.Errorf("--lock-timeout must be zero or positive, got %d", opts.lockTimeout)
		}
		cfg.Lock.TimeoutSeconds = opts.lockTimeout
	}
	if err := cfg.Normalize(); err != nil {
		return err
	}
	return cfg.Validate()
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
