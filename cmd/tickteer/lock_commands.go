package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tickteer/internal/config"
	"tickteer/internal/filelock"
	"tickteer/internal/runner"
)

// errLockBusy is returned by `lock exec` when the marker stays held for the
// whole timeout.
var errLockBusy = errors.New("lock is held by another process")

func newLockCommand(ctx *commandContext) *cobra.Command {
	var pathFlag string

	lockCmd := &cobra.Command{
		Use:   "lock",
		Short: "Inspect and use the processing lock marker",
	}
	lockCmd.PersistentFlags().StringVarP(&pathFlag, "path", "p", "", "Marker path (defaults to lock.path)")

	resolve := func() (*config.Config, string, error) {
		cfg, err := ctx.ensureConfig()
		if err != nil {
			return nil, "", err
		}
		path := strings.TrimSpace(pathFlag)
		if path == "" {
			path = cfg.Lock.Path
		}
		if path == "" {
			return nil, "", errors.New("lock path required (use --path or set lock.path)")
		}
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return nil, "", fmt.Errorf("resolve lock path: %w", err)
		}
		return cfg, expanded, nil
	}

	lockCmd.AddCommand(newLockStatusCommand(resolve))
	lockCmd.AddCommand(newLockClearCommand(resolve))
	lockCmd.AddCommand(newLockExecCommand(ctx, resolve))
	return lockCmd
}

type lockPathResolver func() (*config.Config, string, error)

func newLockStatusCommand(resolve lockPathResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the marker exists and who wrote it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, path, err := resolve()
			if err != nil {
				return err
			}
			marker, err := filelock.Inspect(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Lock: %s\n", marker.Path)
			if !marker.Present {
				fmt.Fprintln(out, "State: free")
				return nil
			}
			fmt.Fprintln(out, "State: held")
			if marker.Owner > 0 {
				fmt.Fprintf(out, "Owner PID: %d\n", marker.Owner)
				fmt.Fprintf(out, "Owner alive: %s\n", yesNo(marker.Alive))
			} else {
				fmt.Fprintf(out, "Owner: %q (unrecognized)\n", marker.OwnerRaw)
			}
			fmt.Fprintf(out, "Since: %s\n", marker.ModTime.Format(time.RFC3339))
			if marker.Owner > 0 && !marker.Alive {
				fmt.Fprintln(out, "The owning process is gone; remove the marker with `tickteer lock clear`.")
			}
			return nil
		},
	}
}

func newLockClearCommand(resolve lockPathResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the marker regardless of owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, path, err := resolve()
			if err != nil {
				return err
			}
			removed, err := filelock.Clear(path)
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed lock marker %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "No lock marker at %s\n", path)
			}
			return nil
		},
	}
}

func newLockExecCommand(ctx *commandContext, resolve lockPathResolver) *cobra.Command {
	var timeoutSeconds int

	cmd := &cobra.Command{
		Use:   "exec [flags] -- command [args...]",
		Short: "Run a command while holding the lock",
		Long: `Acquire the marker, run the command with its arguments passed through
unchanged (no shell parsing), then release the marker. Exits non-zero without
running anything when the lock stays held for the whole timeout, and reports
a marker that could not be removed afterwards.`,
		Example: `  tickteer lock exec -- make deploy
  tickteer lock exec -t 30 -- sh -c 'bd ready | head -n 5'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, path, err := resolve()
			if err != nil {
				return err
			}
			if timeoutSeconds < 0 {
				return fmt.Errorf("--timeout must be zero or positive, got %d", timeoutSeconds)
			}
			lock := filelock.New(path,
				filelock.WithRetryInterval(cfg.LockRetryInterval()),
				filelock.WithLogger(ctx.consoleLogger(cmd.ErrOrStderr())),
			)
			acquired, err := lock.Acquire(cmd.Context(), time.Duration(timeoutSeconds)*time.Second)
			if err != nil {
				return fmt.Errorf("acquire lock %s: %w", path, err)
			}
			if !acquired {
				return fmt.Errorf("%w: %s", errLockBusy, path)
			}
			defer func() {
				if relErr := lock.Release(); relErr != nil {
					err = errors.Join(err, fmt.Errorf("release lock %s: %w", path, relErr))
				}
			}()

			shell := runner.NewShell(cfg.Daemon.Shell, cfg.CommandTimeout())
			result, runErr := shell.Run(context.WithoutCancel(cmd.Context()), runner.Request{Args: args})
			fmt.Fprint(cmd.OutOrStdout(), result.Stdout)
			fmt.Fprint(cmd.ErrOrStderr(), result.Stderr)
			if runErr != nil {
				return runErr
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&timeoutSeconds, "timeout", "t", 0, "Seconds to wait for the lock (0 tries once)")
	return cmd
}
