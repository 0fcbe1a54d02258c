package filelock

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// Marker describes the on-disk state of a lock path.
type Marker struct {
	Path     string
	Present  bool
	Owner    int
	OwnerRaw string
	ModTime  time.Time
	// Alive is only meaningful when Owner > 0. It is a point-in-time probe and
	// never used to break a lock.
	Alive bool
}

// Inspect reads the marker at path without modifying it.
func Inspect(path string) (Marker, error) {
	m := Marker{Path: path}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return m, nil
		}
		return m, fmt.Errorf("stat lock marker: %w", err)
	}
	m.Present = true
	m.ModTime = info.ModTime()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Released between stat and read.
			return Marker{Path: path}, nil
		}
		return m, fmt.Errorf("read lock marker: %w", err)
	}
	m.OwnerRaw = strings.TrimSpace(string(data))
	if pid, err := strconv.Atoi(m.OwnerRaw); err == nil && pid > 0 {
		m.Owner = pid
		m.Alive = processAlive(pid)
	}
	return m, nil
}

// Clear removes the marker regardless of who holds it. It reports whether a
// marker was present.
func Clear(path string) (bool, error) {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("remove lock marker: %w", err)
	}
	return true, nil
}

func processAlive(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}
