package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"tickteer/internal/logging"
	"tickteer/internal/ticket"
)

// ErrUnavailable marks any failure to obtain a ticket list: the binary is
// missing, it exited non-zero, or its output did not decode.
var ErrUnavailable = errors.New("ticket source unavailable")

// Source lists the tickets that are ready to be worked on.
type Source interface {
	Ready(ctx context.Context) ([]ticket.Ticket, error)
}

// Executor runs the source binary and returns its stdout.
type Executor interface {
	Output(ctx context.Context, binary string, args []string) ([]byte, error)
}

type commandExecutor struct{}

func (commandExecutor) Output(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%w: %s", err, msg)
		}
		return out, err
	}
	return out, nil
}

// Beads reads tickets from the `bd` CLI (or any binary with the same JSON
// output).
type Beads struct {
	binary string
	args   []string
	exec   Executor
	logger *slog.Logger
}

// Option customizes a Beads source.
type Option func(*Beads)

// WithExecutor overrides how the binary is invoked.
func WithExecutor(e Executor) Option {
	return func(b *Beads) {
		if e != nil {
			b.exec = e
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Beads) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBeads builds a source that runs binary with args.
func NewBeads(binary string, args []string, opts ...Option) *Beads {
	b := &Beads{
		binary: strings.TrimSpace(binary),
		args:   append([]string(nil), args...),
		exec:   commandExecutor{},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = logging.NewComponentLogger(b.logger, "source")
	return b
}

// Command returns the invocation as a single display string.
func (b *Beads) Command() string {
	return strings.TrimSpace(b.binary + " " + strings.Join(b.args, " "))
}

// Ready runs the source and decodes its output.
func (b *Beads) Ready(ctx context.Context) ([]ticket.Ticket, error) {
	if b.binary == "" {
		return nil, fmt.Errorf("%w: no source binary configured", ErrUnavailable)
	}
	out, err := b.exec.Output(ctx, b.binary, b.args)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s not found in PATH", ErrUnavailable, b.binary)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, b.Command(), err)
	}
	tickets, err := ticket.Decode(out)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s output: %w", ErrUnavailable, b.binary, err)
	}
	b.logger.Debug("fetched ready tickets", logging.Int("count", len(tickets)))
	return tickets, nil
}

// Static is a fixed in-memory source.
type Static []ticket.Ticket

// Ready returns a copy of the tickets.
func (s Static) Ready(context.Context) ([]ticket.Ticket, error) {
	return append([]ticket.Ticket(nil), s...), nil
}
