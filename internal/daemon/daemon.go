package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"tickteer/internal/filelock"
	"tickteer/internal/history"
	"tickteer/internal/logging"
	"tickteer/internal/runner"
	"tickteer/internal/source"
	"tickteer/internal/ticket"
	"tickteer/internal/tmpl"
)

// Options wires a Daemon. Source, Runner and Command are required.
type Options struct {
	Source   source.Source
	Runner   runner.Runner
	Command  string
	Template string
	UseStdin bool
	Interval time.Duration

	// Gate, when set, is held for the duration of each command execution.
	Gate        *filelock.Lock
	GateTimeout time.Duration

	Recorder history.Recorder
	RunID    string
	Logger   *slog.Logger
	Stdout   io.Writer
	Stderr   io.Writer
}

// Daemon runs the polling loop.
type Daemon struct {
	source      source.Source
	runner      runner.Runner
	command     string
	template    string
	useStdin    bool
	interval    time.Duration
	gate        *filelock.Lock
	gateTimeout time.Duration
	recorder    history.Recorder
	runID       string
	logger      *slog.Logger
	stdout      io.Writer
	stderr      io.Writer

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// New validates opts and returns a ready Daemon.
func New(opts Options) (*Daemon, error) {
	if opts.Source == nil || opts.Runner == nil {
		return nil, errors.New("daemon requires a ticket source and a command runner")
	}
	if strings.TrimSpace(opts.Command) == "" {
		return nil, errors.New("daemon requires a command")
	}
	if opts.Interval <= 0 {
		return nil, errors.New("daemon interval must be positive")
	}
	if opts.Template == "" {
		opts.Template = tmpl.DefaultTemplate
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	logger := logging.NewComponentLogger(opts.Logger, "daemon")
	if opts.RunID != "" {
		logger = logger.With(logging.String(logging.FieldRunID, opts.RunID))
	}
	return &Daemon{
		source:      opts.Source,
		runner:      opts.Runner,
		command:     opts.Command,
		template:    opts.Template,
		useStdin:    opts.UseStdin,
		interval:    opts.Interval,
		gate:        opts.Gate,
		gateTimeout: opts.GateTimeout,
		recorder:    opts.Recorder,
		runID:       opts.RunID,
		logger:      logger,
		stdout:      opts.Stdout,
		stderr:      opts.Stderr,
		sleep:       sleepContext,
		now:         time.Now,
	}, nil
}

// Run loops until ctx is cancelled or a cycle is fatal. Cancellation is only
// observed between cycles; a command already running is bounded by its own
// timeout. The returned State reflects every completed cycle.
func (d *Daemon) Run(ctx context.Context) (State, error) {
	var state State
	d.logger.Info("daemon started",
		logging.String("command", d.command),
		logging.Duration("interval", d.interval),
		logging.Bool("gate", d.gate != nil),
	)

	for ctx.Err() == nil {
		next, cycle := d.Step(context.WithoutCancel(ctx), state)
		state = next
		if cycle.Outcome.Fatal() {
			logging.ErrorWithContext(d.logger, "ticket source failed; stopping daemon", "source_unavailable",
				logging.Error(cycle.Err),
				logging.String(logging.FieldErrorHint, "check that the ticket source binary is installed and its database is readable"),
				logging.Int("processed", state.ProcessedCount),
			)
			return state, cycle.Err
		}
		if err := d.sleep(ctx, d.interval); err != nil {
			break
		}
	}

	d.logger.Info("daemon stopped", logging.Int("processed", state.ProcessedCount))
	return state, nil
}

// Step runs one cycle against state and returns the next state.
func (d *Daemon) Step(ctx context.Context, state State) (State, Cycle) {
	tickets, err := d.source.Ready(ctx)
	if err != nil {
		return state, Cycle{Outcome: OutcomeFatal, Err: err}
	}

	top, ok := ticket.Top(tickets)
	if !ok {
		d.logger.Info("no ready tickets", logging.String(logging.FieldOutcome, OutcomeIdle.String()))
		return state, Cycle{Outcome: OutcomeIdle}
	}

	logger := d.logger.With(logging.String(logging.FieldTicketID, top.ID))
	if top.ID == state.LastProcessedID {
		logger.Info("ticket already processed; waiting for source to advance",
			logging.String(logging.FieldOutcome, OutcomeSkipped.String()),
		)
		return state, Cycle{Outcome: OutcomeSkipped, Ticket: top}
	}

	if d.gate != nil {
		acquired, err := d.gate.Acquire(ctx, d.gateTimeout)
		if err != nil || !acquired {
			attrs := []logging.Attr{
				logging.String(logging.FieldLockPath, d.gate.Path()),
				logging.String(logging.FieldOutcome, OutcomeLocked.String()),
				logging.String(logging.FieldImpact, "ticket was not processed this cycle"),
			}
			if err != nil {
				attrs = append(attrs, logging.Error(err))
			}
			logging.WarnWithContext(logger, "processing lock unavailable; retrying next cycle", "lock_unavailable", attrs...)
			return state, Cycle{Outcome: OutcomeLocked, Ticket: top, Err: err}
		}
		defer func() {
			if err := d.gate.Release(); err != nil {
				logger.Warn("processing lock release failed", logging.Error(err))
			}
		}()
	}

	logger.Info("processing ticket",
		logging.String("title", top.Title),
		logging.String("priority", top.PriorityLabel()),
	)
	started := d.now()
	result, runErr := d.runner.Run(ctx, runner.Request{
		Command:  d.command,
		Stdin:    tmpl.Render(d.template, top.Fields()),
		UseStdin: d.useStdin,
	})
	d.forward(result)

	cycle := Cycle{Ticket: top, Result: result}
	if runErr != nil || !result.Success() {
		cycle.Outcome = OutcomeFailed
		cycle.Err = runErr
		if cycle.Err == nil {
			cycle.Err = fmt.Errorf("command exited with status %d", result.ExitCode)
		}
		hint := "inspect the command output above"
		if result.TimedOut {
			hint = "the command exceeded its timeout; raise daemon.command_timeout_seconds or speed it up"
		}
		logging.WarnWithContext(logger, "ticket command failed", "command_failed",
			logging.String(logging.FieldOutcome, cycle.Outcome.String()),
			logging.Int("exit_code", result.ExitCode),
			logging.Bool("timed_out", result.TimedOut),
			logging.Duration("duration", result.Duration),
			logging.Error(cycle.Err),
			logging.String(logging.FieldErrorHint, hint),
			logging.String(logging.FieldImpact, "ticket will be retried next cycle"),
		)
	} else {
		cycle.Outcome = OutcomeProcessed
		state.LastProcessedID = top.ID
		state.ProcessedCount++
		logger.Info("ticket processed",
			logging.String(logging.FieldOutcome, cycle.Outcome.String()),
			logging.Duration("duration", result.Duration),
			logging.Int("processed", state.ProcessedCount),
		)
	}

	d.record(ctx, cycle, started)
	return state, cycle
}

// forward writes the command's captured streams through unchanged.
func (d *Daemon) forward(result runner.Result) {
	if result.Stdout != "" {
		_, _ = io.WriteString(d.stdout, result.Stdout)
	}
	if result.Stderr != "" {
		_, _ = io.WriteString(d.stderr, result.Stderr)
	}
}

func (d *Daemon) record(ctx context.Context, cycle Cycle, started time.Time) {
	if d.recorder == nil {
		return
	}
	entry := history.Entry{
		RunID:     d.runID,
		TicketID:  cycle.Ticket.ID,
		Title:     cycle.Ticket.Title,
		Priority:  cycle.Ticket.Priority,
		Outcome:   cycle.Outcome.String(),
		ExitCode:  cycle.Result.ExitCode,
		Duration:  cycle.Result.Duration,
		StartedAt: started,
	}
	if cycle.Err != nil {
		entry.Error = cycle.Err.Error()
	}
	if err := d.recorder.Record(ctx, entry); err != nil {
		logging.WarnWithContext(d.logger, "history record failed", "history_write_failed",
			logging.String(logging.FieldTicketID, cycle.Ticket.ID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "execution missing from history"),
		)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
