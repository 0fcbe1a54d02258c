package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tickteer/internal/config"
	"tickteer/internal/daemon"
	"tickteer/internal/deps"
	"tickteer/internal/filelock"
	"tickteer/internal/history"
	"tickteer/internal/logging"
	"tickteer/internal/runner"
	"tickteer/internal/source"
	"tickteer/internal/tmpl"
)

func runDaemon(cmd *cobra.Command, cfg *config.Config) error {
	if err := cfg.ValidateDaemonMode(); err != nil {
		return err
	}
	if missing := deps.Missing(deps.CheckBinaries(deps.Requirements(cfg))); len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, m := range missing {
			names = append(names, fmt.Sprintf("%s (%s)", m.Command, m.Detail))
		}
		return fmt.Errorf("%w: missing dependencies: %s", source.ErrUnavailable, strings.Join(names, ", "))
	}

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := uuid.NewString()
	logger, err := logging.NewFromConfig(cfg, runID, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	instance, err := daemon.AcquireInstance(cfg.InstanceLockPath())
	if err != nil {
		return err
	}
	defer func() {
		if err := instance.Release(); err != nil {
			logger.Warn("instance lock release failed", logging.Error(err))
		}
	}()

	template, origin, err := tmpl.Load(cfg.Daemon.Template, cfg.Daemon.TemplateFile, logger)
	if err != nil {
		return err
	}

	var recorder history.Recorder
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer store.Close()
		if pruned, err := store.Prune(context.Background(), cfg.History.MaxEntries); err != nil {
			logger.Warn("history prune failed", logging.Error(err))
		} else if pruned > 0 {
			logger.Debug("pruned history", logging.Int64("removed", pruned))
		}
		recorder = store
	}

	var gate *filelock.Lock
	if cfg.Lock.Path != "" {
		gate = filelock.New(cfg.Lock.Path,
			filelock.WithRetryInterval(cfg.LockRetryInterval()),
			filelock.WithLogger(logger),
		)
	}

	d, err := daemon.New(daemon.Options{
		Source:      source.NewBeads(cfg.Source.Binary, cfg.Source.Args, source.WithLogger(logger)),
		Runner:      runner.NewShell(cfg.Daemon.Shell, cfg.CommandTimeout()),
		Command:     cfg.CommandLine(),
		Template:    template,
		UseStdin:    cfg.Daemon.UseStdin,
		Interval:    cfg.Interval(),
		Gate:        gate,
		GateTimeout: cfg.LockTimeout(),
		Recorder:    recorder,
		RunID:       runID,
		Logger:      logger,
		Stdout:      cmd.OutOrStdout(),
		Stderr:      cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Starting tickteer daemon")
	fmt.Fprintf(out, "   Command: %s\n", cfg.CommandLine())
	fmt.Fprintf(out, "   Interval: %d seconds\n", cfg.Daemon.IntervalSeconds)
	fmt.Fprintf(out, "   Template: %s\n", origin)
	if gate != nil {
		fmt.Fprintf(out, "   Lock: %s\n", gate.Path())
	}
	fmt.Fprintln(out, "   Press Ctrl+C to stop")
	fmt.Fprintln(out, strings.Repeat("-", 50))

	state, runErr := d.Run(signalCtx)

	fmt.Fprintln(out)
	if runErr != nil {
		fmt.Fprintln(out, "Daemon stopped: ticket source failed")
	} else {
		fmt.Fprintln(out, "Daemon stopped")
	}
	fmt.Fprintf(out, "Total tickets processed: %d\n", state.ProcessedCount)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}
