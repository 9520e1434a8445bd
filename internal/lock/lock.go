// Package lock keeps two bookshelf processes from mutating the same
// collection at once. The lock is a file holding the owner's PID; a file left
// behind by a process that is no longer running is taken over.
package lock

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/bookshelf/bookshelf/internal/config"
)

const DefaultDir = "~/.bookshelf/locks"

// ErrHeld is returned when another running process owns the lock.
var ErrHeld = errors.New("lock held by another bookshelf process")

// Path returns the lock file for a database collection.
func Path(database, collection string) string {
	return filepath.Join(config.ExpandHome(DefaultDir), database+"."+collection+".lock")
}

// Acquire creates the lock file with the current process PID. The file is
// created exclusively; an existing file is only taken over when its owner is
// no longer running.
func Acquire(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating lock directory: %w", err)
	}

	for range 2 {
		err := create(path)
		if err == nil || !errors.Is(err, fs.ErrExist) {
			return err
		}

		held, pid, err := IsHeld(path)
		if err != nil {
			return fmt.Errorf("reading lock: %w", err)
		}
		if pid == os.Getpid() {
			return nil
		}
		if held {
			return fmt.Errorf("%w (PID %d); only one mutating command can run per collection", ErrHeld, pid)
		}
		// stale: remove it and race for a fresh exclusive create
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing stale lock: %w", err)
		}
	}
	return fmt.Errorf("%w: lost the race for %s", ErrHeld, path)
}

func create(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("writing lock: %w", err)
	}
	return f.Close()
}

// Release removes the lock file.
func Release(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// IsHeld checks if the lock is currently held by a running process.
func IsHeld(path string) (bool, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return false, 0, nil
	}
	if isProcessRunning(pid) {
		return true, pid, nil
	}
	return false, pid, nil
}

func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	return err == nil
}
