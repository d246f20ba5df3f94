// Package paths provides XDG-compliant path resolution for focus.
//
// Resolution order:
// 1. FOCUS_HOME (portable root) → $FOCUS_HOME/{config,state,run}
// 2. XDG env vars → $XDG_*_HOME/focus
// 3. Platform defaults → ~/.config/focus, ~/.local/state/focus
package paths

import (
	"os"
	"path/filepath"
	"time"
)

const appName = "focus"

func home(sub string) string {
	if focusHome := os.Getenv("FOCUS_HOME"); focusHome != "" {
		return filepath.Join(focusHome, sub)
	}
	return ""
}

// ConfigDir returns the directory holding the global focus.yml.
func ConfigDir() string {
	if dir := home("config"); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", appName)
	}
	return ""
}

// StateDir returns the directory for the key/value store, pidfile and logs.
func StateDir() string {
	if dir := home("state"); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".local", "state", appName)
	}
	return ""
}

// RuntimeDir returns the directory for the daemon socket.
// Uses XDG_RUNTIME_DIR when available (Linux), falls back to StateDir (macOS).
func RuntimeDir() string {
	if dir := home("run"); dir != "" {
		return dir
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, appName)
	}
	return StateDir()
}

// SocketPath returns the path to the focus daemon unix socket.
func SocketPath() string {
	return filepath.Join(RuntimeDir(), "focusd.sock")
}

// PidFilePath returns the path to the focus daemon PID file.
func PidFilePath() string {
	return filepath.Join(StateDir(), "focusd.pid")
}

// StorePath returns the default key/value store file for the given backend.
func StorePath(backend string) string {
	if backend == "sqlite" {
		return filepath.Join(StateDir(), "store.db")
	}
	return filepath.Join(StateDir(), "store.yml")
}

// LogDir returns the directory for component log files.
func LogDir() string {
	return filepath.Join(StateDir(), "logs")
}

// LogFilePath returns today's log file for a component.
func LogFilePath(component string) string {
	return filepath.Join(LogDir(), component+"-"+time.Now().Format("2006-01-02")+".log")
}
