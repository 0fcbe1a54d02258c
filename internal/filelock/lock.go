package filelock

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"tickteer/internal/logging"
)

// DefaultRetryInterval is the backoff between create attempts while the marker
// is held by someone else.
const DefaultRetryInterval = 50 * time.Millisecond

// ErrReentrant is returned when Acquire is called on a handle that already
// holds its lock.
var ErrReentrant = errors.New("lock already held by this handle")

// State reports whether a handle currently holds its lock.
type State int

const (
	Unlocked State = iota
	Locked
)

func (s State) String() string {
	if s == Locked {
		return "locked"
	}
	return "unlocked"
}

// Option configures a Lock.
type Option func(*Lock)

// WithOwner overrides the identifier written into the marker. Defaults to the
// current process ID.
func WithOwner(owner int) Option {
	return func(l *Lock) {
		l.owner = owner
	}
}

// WithRetryInterval sets the backoff between attempts.
func WithRetryInterval(d time.Duration) Option {
	return func(l *Lock) {
		if d > 0 {
			l.retry = d
		}
	}
}

// WithLogger attaches a logger used to report filesystem errors.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Lock) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Lock is a handle bound to a marker path. The zero state is Unlocked.
type Lock struct {
	path   string
	owner  int
	retry  time.Duration
	logger *slog.Logger

	mu    sync.Mutex
	state State
}

// New constructs an unlocked handle for path.
func New(path string, opts ...Option) *Lock {
	l := &Lock{
		path:   path,
		owner:  os.Getpid(),
		retry:  DefaultRetryInterval,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = logging.NewComponentLogger(l.logger, "filelock").With(logging.String(logging.FieldLockPath, path))
	return l
}

// Path returns the marker location.
func (l *Lock) Path() string { return l.path }

// Owner returns the identifier written into the marker on acquisition.
func (l *Lock) Owner() int { return l.owner }

// State reports whether this handle holds the lock.
func (l *Lock) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Held is shorthand for State() == Locked.
func (l *Lock) Held() bool { return l.State() == Locked }

// Acquire tries to create the marker until it succeeds or timeout elapses.
// A timeout <= 0 makes exactly one attempt. It returns (false, nil) when the
// marker is held by someone else for the whole window, and (false, err) when
// the filesystem fails for any other reason or ctx is cancelled.
func (l *Lock) Acquire(ctx context.Context, timeout time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == Locked {
		return false, ErrReentrant
	}
	if timeout < 0 {
		timeout = 0
	}
	deadline := time.Now().Add(timeout)

	for {
		created, err := l.tryCreate()
		if err != nil {
			l.logger.Error("lock acquisition failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "lock_create_failed"),
				logging.String(logging.FieldErrorHint, "check permissions and free space on the lock directory"),
			)
			return false, err
		}
		if created {
			l.state = Locked
			l.logger.Debug("lock acquired", logging.Int("owner", l.owner))
			return true, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			l.logger.Debug("lock unavailable", logging.Duration("timeout", timeout))
			return false, nil
		}
		wait := l.retry
		if remaining < wait {
			wait = remaining
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false, ctx.Err()
		case <-timer.C:
		}
	}
}

// tryCreate makes one create-exclusive attempt. It reports (false, nil) when
// the marker already exists.
func (l *Lock) tryCreate() (bool, error) {
	if dir := filepath.Dir(l.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("create lock directory: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("create lock marker: %w", err)
	}

	_, writeErr := f.WriteString(strconv.Itoa(l.owner))
	closeErr := f.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		// The marker is ours; leaving it would block everyone forever.
		_ = os.Remove(l.path)
		return false, fmt.Errorf("write lock owner: %w", err)
	}
	return true, nil
}

// Release deletes the marker if this handle holds it. It is safe to call at
// any time. A marker already removed out-of-band is not an error; any other
// removal failure is returned, but the handle still becomes Unlocked.
func (l *Lock) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != Locked {
		return nil
	}
	l.state = Unlocked

	if err := os.Remove(l.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Debug("lock marker already removed")
			return nil
		}
		logging.WarnWithContext(l.logger, "lock marker removal failed", "lock_release_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove the marker manually"),
			logging.String(logging.FieldImpact, "other processes stay blocked until the marker is gone"),
		)
		return fmt.Errorf("remove lock marker: %w", err)
	}
	l.logger.Debug("lock released")
	return nil
}
