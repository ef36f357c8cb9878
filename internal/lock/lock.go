// Package lock keeps a single fitmin process writing the stats record.
package lock

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrHeld is returned when another live process owns the lock.
var ErrHeld = errors.New("stats are being written by another fitmin process")

// Lock is a PID file marking the process that owns the stats record.
type Lock struct {
	Path string
}

// New creates a Lock for the given path. Nothing is written until Acquire.
func New(path string) *Lock {
	return &Lock{Path: path}
}

// Acquire records the current process as owner. A file left behind by a
// dead process is taken over.
func (l *Lock) Acquire() error {
	if pid, ok := l.Holder(); ok && pid != os.Getpid() {
		return fmt.Errorf("%w (pid %d)", ErrHeld, pid)
	}
	return l.write(os.Getpid())
}

// Release removes the lock if the current process owns it.
func (l *Lock) Release() error {
	pid, err := l.read()
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if pid != os.Getpid() {
		return nil
	}
	return os.Remove(l.Path)
}

// Holder returns the PID in the lock file and whether that process is alive.
func (l *Lock) Holder() (int, bool) {
	pid, err := l.read()
	if err != nil {
		return 0, false
	}
	return pid, alive(pid)
}

func (l *Lock) write(pid int) error {
	return os.WriteFile(l.Path, []byte(strconv.Itoa(pid)+"\n"), 0o644)
}

func (l *Lock) read() (int, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid lock file content: %w", err)
	}
	return pid, nil
}
