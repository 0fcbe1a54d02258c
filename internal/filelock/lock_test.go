package filelock_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"tickteer/internal/filelock"
)

func lockPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "tickets.lock")
}

func TestAcquireWritesOwnerPID(t *testing.T) {
	path := lockPath(t)
	lock := filelock.New(path)

	ok, err := lock.Acquire(context.Background(), time.Second)
	if err != nil || !ok {
		t.Fatalf("Acquire = %v, %v", ok, err)
	}
	defer lock.Release()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read marker: %v", err)
	}
	if string(data) != strconv.Itoa(os.Getpid()) {
		t.Fatalf("marker content %q, want %d", data, os.Getpid())
	}
	if !lock.Held() || lock.State() != filelock.Locked {
		t.Fatalf("expected handle to be locked, got %s", lock.State())
	}
}

func TestAcquireZeroTimeoutMakesSingleAttempt(t *testing.T) {
	path := lockPath(t)
	holder := filelock.New(path)
	if ok, err := holder.Acquire(context.Background(), 0); err != nil || !ok {
		t.Fatalf("holder Acquire = %v, %v", ok, err)
	}
	defer holder.Release()

	other := filelock.New(path, filelock.WithOwner(424242))
	start := time.Now()
	ok, err := other.Acquire(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected second handle to fail while marker is held")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("zero timeout should not wait, took %s", elapsed)
	}
	if other.Held() {
		t.Fatal("failed acquire must leave handle unlocked")
	}
}

func TestAcquireWaitsAtLeastTimeout(t *testing.T) {
	path := lockPath(t)
	holder := filelock.New(path)
	if ok, _ := holder.Acquire(context.Background(), 0); !ok {
		t.Fatal("holder could not acquire")
	}
	defer holder.Release()

	timeout := 200 * time.Millisecond
	waiter := filelock.New(path, filelock.WithRetryInterval(20*time.Millisecond))
	start := time.Now()
	ok, err := waiter.Acquire(context.Background(), timeout)
	if err != nil || ok {
		t.Fatalf("Acquire = %v, %v; want false, nil", ok, err)
	}
	if elapsed := time.Since(start); elapsed < timeout {
		t.Fatalf("gave up after %s, before the %s timeout", elapsed, timeout)
	}
}

func TestAcquireSucceedsWhenHolderReleases(t *testing.T) {
	path := lockPath(t)
	holder := filelock.New(path)
	if ok, _ := holder.Acquire(context.Background(), 0); !ok {
		t.Fatal("holder could not acquire")
	}

	released := make(chan error, 1)
	go func() {
		time.Sleep(100 * time.Millisecond)
		released <- holder.Release()
	}()

	waiter := filelock.New(path, filelock.WithOwner(7), filelock.WithRetryInterval(10*time.Millisecond))
	ok, err := waiter.Acquire(context.Background(), 5*time.Second)
	if err != nil || !ok {
		t.Fatalf("waiter Acquire = %v, %v", ok, err)
	}
	defer waiter.Release()
	if err := <-released; err != nil {
		t.Fatalf("holder Release: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "7" {
		t.Fatalf("expected waiter to own the marker, got %q", data)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	path := lockPath(t)
	lock := filelock.New(path)

	if err := lock.Release(); err != nil {
		t.Fatalf("Release before Acquire: %v", err)
	}
	if ok, _ := lock.Acquire(context.Background(), 0); !ok {
		t.Fatal("could not acquire")
	}
	for i := 0; i < 3; i++ {
		if err := lock.Release(); err != nil {
			t.Fatalf("Release #%d: %v", i+1, err)
		}
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected marker removed, stat err=%v", err)
	}
}

func TestReleaseToleratesMarkerRemovedExternally(t *testing.T) {
	path := lockPath(t)
	lock := filelock.New(path)
	if ok, _ := lock.Acquire(context.Background(), 0); !ok {
		t.Fatal("could not acquire")
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove marker: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release after external removal: %v", err)
	}
	if lock.Held() {
		t.Fatal("expected handle unlocked")
	}

	// The path is free again for anyone.
	other := filelock.New(path)
	if ok, err := other.Acquire(context.Background(), 0); err != nil || !ok {
		t.Fatalf("re-acquire = %v, %v", ok, err)
	}
	other.Release()
}

func TestAcquireAfterMarkerDeletedByHand(t *testing.T) {
	path := lockPath(t)
	if err := os.WriteFile(path, []byte("999999"), 0o644); err != nil {
		t.Fatalf("seed marker: %v", err)
	}
	lock := filelock.New(path)
	if ok, _ := lock.Acquire(context.Background(), 0); ok {
		t.Fatal("expected existing marker to block acquisition")
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove marker: %v", err)
	}
	if ok, err := lock.Acquire(context.Background(), 0); err != nil || !ok {
		t.Fatalf("Acquire after removal = %v, %v", ok, err)
	}
	lock.Release()
}

func TestAcquireCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c", "tickets.lock")
	lock := filelock.New(path)
	if ok, err := lock.Acquire(context.Background(), 0); err != nil || !ok {
		t.Fatalf("Acquire = %v, %v", ok, err)
	}
	defer lock.Release()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected marker in nested directory: %v", err)
	}
}

func TestRepeatedCycles(t *testing.T) {
	path := lockPath(t)
	lock := filelock.New(path)
	for i := 0; i < 5; i++ {
		if ok, err := lock.Acquire(context.Background(), time.Second); err != nil || !ok {
			t.Fatalf("cycle %d Acquire = %v, %v", i, ok, err)
		}
		if err := lock.Release(); err != nil {
			t.Fatalf("cycle %d Release: %v", i, err)
		}
	}
}

func TestAcquireOnHeldHandleIsReentrantError(t *testing.T) {
	lock := filelock.New(lockPath(t))
	if ok, _ := lock.Acquire(context.Background(), 0); !ok {
		t.Fatal("could not acquire")
	}
	defer lock.Release()

	ok, err := lock.Acquire(context.Background(), time.Second)
	if ok || !errors.Is(err, filelock.ErrReentrant) {
		t.Fatalf("Acquire = %v, %v; want ErrReentrant", ok, err)
	}
	if !lock.Held() {
		t.Fatal("reentrant attempt must not drop the lock")
	}
}

func TestAcquireHonorsContextCancellation(t *testing.T) {
	path := lockPath(t)
	holder := filelock.New(path)
	if ok, _ := holder.Acquire(context.Background(), 0); !ok {
		t.Fatal("holder could not acquire")
	}
	defer holder.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	waiter := filelock.New(path)
	ok, err := waiter.Acquire(ctx, time.Minute)
	if ok || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Acquire = %v, %v; want context error", ok, err)
	}
}

func TestAcquireReportsFilesystemErrors(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	lock := filelock.New(filepath.Join(blocker, "tickets.lock"))
	ok, err := lock.Acquire(context.Background(), time.Second)
	if ok || err == nil {
		t.Fatalf("Acquire = %v, %v; want filesystem error", ok, err)
	}
	if lock.Held() {
		t.Fatal("handle must stay unlocked after an error")
	}
}

func TestAcquireConcurrentHandlesExactlyOneWins(t *testing.T) {
	const racers = 16
	path := lockPath(t)

	for round := 0; round < 50; round++ {
		locks := make([]*filelock.Lock, racers)
		for i := range locks {
			locks[i] = filelock.New(path, filelock.WithOwner(i+1))
		}

		var wins atomic.Int32
		var wg sync.WaitGroup
		start := make(chan struct{})
		errs := make(chan error, racers)
		for _, lock := range locks {
			wg.Add(1)
			go func(lock *filelock.Lock) {
				defer wg.Done()
				<-start
				ok, err := lock.Acquire(context.Background(), 0)
				if err != nil {
					errs <- err
					return
				}
				if ok {
					wins.Add(1)
				}
			}(lock)
		}
		close(start)
		wg.Wait()
		close(errs)

		for err := range errs {
			t.Fatalf("round %d: Acquire returned error: %v", round, err)
		}
		if got := wins.Load(); got != 1 {
			t.Fatalf("round %d: %d handles acquired the lock, want exactly 1", round, got)
		}
		for _, lock := range locks {
			if err := lock.Release(); err != nil {
				t.Fatalf("round %d: Release: %v", round, err)
			}
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("round %d: marker left behind, stat err=%v", round, err)
		}
	}
}

func TestReleaseReportsRemovalFailureAndUnlocks(t *testing.T) {
	path := lockPath(t)
	lock := filelock.New(path)
	if ok, err := lock.Acquire(context.Background(), 0); err != nil || !ok {
		t.Fatalf("Acquire = %v, %v", ok, err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove marker: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(path, "child"), 0o755); err != nil {
		t.Fatalf("replace marker with directory: %v", err)
	}

	if err := lock.Release(); err == nil {
		t.Fatal("expected Release to report the removal failure")
	}
	if lock.State() != filelock.Unlocked {
		t.Fatalf("expected handle to be unlocked after failed release, got %s", lock.State())
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("second Release should be a no-op, got %v", err)
	}
}
