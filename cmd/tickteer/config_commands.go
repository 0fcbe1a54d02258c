package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tickteer/internal/config"
	"tickteer/internal/deps"
	"tickteer/internal/ticket"
	"tickteer/internal/tmpl"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set daemon.command (or pass --run) before starting the daemon.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file and check external binaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if !ctx.configSeen {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}

			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			for _, s := range statuses {
				state := "ok"
				if !s.Available {
					state = s.Detail
					if s.Optional {
						state += " (optional)"
					}
				}
				fmt.Fprintf(out, "%s: %s\n", s.Name, state)
			}

			template, origin, err := tmpl.Load(cfg.Daemon.Template, cfg.Daemon.TemplateFile, nil)
			if err != nil {
				return fmt.Errorf("load template: %w", err)
			}
			fmt.Fprintf(out, "Template: %s\n", origin)
			if unknown := unknownPlaceholders(template); len(unknown) > 0 {
				fmt.Fprintf(out, "Template warning: no ticket field for %s; left verbatim\n", strings.Join(unknown, ", "))
			}

			if missing := deps.Missing(statuses); len(missing) > 0 {
				return fmt.Errorf("%d required dependency(ies) missing", len(missing))
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

// unknownPlaceholders lists the {{key}} references that no ticket field
// supplies.
func unknownPlaceholders(template string) []string {
	fields := ticket.Ticket{}.Fields()
	var unknown []string
	for _, key := range tmpl.Placeholders(template) {
		if _, ok := fields[key]; !ok {
			unknown = append(unknown, "{{"+key+"}}")
		}
	}
	return unknown
}
