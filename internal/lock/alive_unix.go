//go:build !windows

package lock

import "syscall"

// alive reports whether pid names a running process.
func alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	// Signal 0 checks existence without delivering anything.
	return syscall.Kill(pid, 0) == nil
}
