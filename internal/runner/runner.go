package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultTimeout bounds a single command execution.
const DefaultTimeout = 5 * time.Minute

// waitDelay is how long Wait keeps reading pipes after the process group was
// killed.
const waitDelay = 2 * time.Second

// ErrTimeout reports that a command was killed after exceeding its timeout.
var ErrTimeout = errors.New("command timed out")

// Request describes one execution. Command is a shell command line; Args,
// when set, is run directly with no shell parsing and Command is ignored.
type Request struct {
	Command string
	Args    []string
	// Stdin is piped to the command when UseStdin is set.
	Stdin    string
	UseStdin bool
}

// Result captures what a finished (or killed) command produced.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	TimedOut bool
}

// Success reports a zero exit status within the timeout.
func (r Result) Success() bool {
	return !r.TimedOut && r.ExitCode == 0
}

// Runner executes commands. The daemon depends on this interface so tests can
// substitute a fake.
type Runner interface {
	Run(ctx context.Context, req Request) (Result, error)
}

// Shell runs commands through `<shell> -c`.
type Shell struct {
	Shell   string
	Timeout time.Duration
}

// NewShell constructs a Shell runner. Empty values fall back to sh and DefaultTimeout.
func NewShell(shell string, timeout time.Duration) *Shell {
	if strings.TrimSpace(shell) == "" {
		shell = "sh"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Shell{Shell: shell, Timeout: timeout}
}

// Run executes req.Args or req.Command. The error is nil only for a zero exit status; a
// non-zero exit returns an *exec.ExitError, a timeout returns ErrTimeout. The
// Result is populated in every case where the process started.
func (s *Shell) Run(ctx context.Context, req Request) (Result, error) {
	argv := req.Args
	if len(argv) == 0 {
		if strings.TrimSpace(req.Command) == "" {
			return Result{ExitCode: -1}, errors.New("command is required")
		}
		argv = []string{s.Shell, "-c", req.Command}
	} else if strings.TrimSpace(argv[0]) == "" {
		return Result{ExitCode: -1}, errors.New("command is required")
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...) //nolint:gosec
	// Own process group so a timeout kills the shell and everything it spawned.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
	cmd.WaitDelay = waitDelay

	if req.UseStdin {
		cmd.Stdin = strings.NewReader(req.Stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	result := Result{
		ExitCode: exitCode(cmd),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		result.TimedOut = true
		return result, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return result, fmt.Errorf("command exited with status %d: %w", result.ExitCode, err)
		}
		return result, fmt.Errorf("run command: %w", err)
	}
	return result, nil
}

func exitCode(cmd *exec.Cmd) int {
	if cmd.ProcessState == nil {
		return -1
	}
	return cmd.ProcessState.ExitCode()
}
