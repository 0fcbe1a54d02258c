package main

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	daemon       bool
	run          string
	args         string
	template     string
	templateFile string
	interval     int
	lockPath     string
	lockTimeout  int
	json         bool
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var opts rootOptions

	ctx := newCommandContext(&configFlag, &logLevelFlag)

	rootCmd := &cobra.Command{
		Use:   "tickteer",
		Short: "List ready tickets and process them one at a time",
		Long: `tickteer lists ready tickets from the bd CLI sorted by priority.

With --daemon it polls every --interval seconds, picks the most urgent ticket
and runs --run with the rendered ticket template on stdin.

Template placeholders: {{id}} {{title}} {{description}} {{status}}
{{priority}} {{priority_label}} {{issue_type}} {{type_label}}
{{created_by}} {{created_at}} {{updated_at}}`,
		Example: `  tickteer
  tickteer --daemon --run ./process-ticket.sh --args="--priority high"
  tickteer --daemon --run my-tool --use-stdin-template-file template.txt`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyRootOverrides(cmd, cfg, opts); err != nil {
				return err
			}
			if opts.daemon {
				return runDaemon(cmd, cfg)
			}
			return runList(cmd, ctx, cfg, opts.json)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")

	flags := rootCmd.Flags()
	flags.BoolVar(&opts.daemon, "daemon", false, "Run in daemon mode (continuously process tickets)")
	flags.StringVar(&opts.run, "run", "", "Command to execute for each ticket (required for daemon mode)")
	flags.StringVar(&opts.args, "args", "", "Arguments to pass to the command")
	flags.StringVar(&opts.template, "use-stdin-template", "", "Template string to pass to the command via stdin")
	flags.StringVar(&opts.templateFile, "use-stdin-template-file", "", "Path to a file containing the template for stdin")
	flags.IntVar(&opts.interval, "interval", 30, "Seconds to wait between checks in daemon mode")
	flags.StringVar(&opts.lockPath, "lock-path", "", "Marker file that gates command execution across processes")
	flags.IntVar(&opts.lockTimeout, "lock-timeout", 0, "Seconds to wait for the processing lock each cycle")
	flags.BoolVar(&opts.json, "json", false, "Print ready tickets as JSON")

	rootCmd.AddCommand(newLockCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
