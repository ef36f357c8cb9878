//go:build windows

package lock

import (
	"os"
	"syscall"
)

// alive reports whether pid names a running process.
func alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
