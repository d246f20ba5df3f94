// Package pidfile provides PID file management for the focus daemon.
package pidfile

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/grovetools/focus/errors"
)

// Acquire writes the current PID to the file.
// It returns DAEMON_ALREADY_RUNNING if another live process holds it.
func Acquire(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create pid directory")
	}

	if pid, err := Read(path); err == nil {
		if IsProcessAlive(pid) && pid != os.Getpid() {
			return errors.DaemonRunning(pid)
		}
		// Process is dead, cleanup stale file
		_ = os.Remove(path)
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to write pid file").WithDetail("path", path)
	}
	return nil
}

// Release removes the PID file. A missing file is not an error.
func Release(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Read returns the PID stored in the file.
func Read(path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(content)))
}

// IsRunning checks if the daemon described by the pidfile is alive.
func IsRunning(path string) (bool, int, error) {
	pid, err := Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return IsProcessAlive(pid), pid, nil
}

// IsProcessAlive checks whether a process with the given PID exists by
// sending it signal 0. EPERM still means the process exists.
func IsProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || os.IsPermission(err)
}
