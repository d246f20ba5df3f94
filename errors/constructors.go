package errors

import "fmt"

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *FocusError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *FocusError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// StorageFailed wraps a key/value backend failure for the given key.
func StorageFailed(code ErrorCode, key string, err error) *FocusError {
	return Wrap(err, code, fmt.Sprintf("storage operation failed for key '%s'", key)).
		WithDetail("key", key)
}

// TaskNotFound creates a task not found error
func TaskNotFound(id string) *FocusError {
	return New(ErrCodeTaskNotFound, fmt.Sprintf("task '%s' not found", id)).
		WithDetail("task", id)
}

// DaemonNotRunning creates an error for an unreachable daemon socket.
func DaemonNotRunning(socket string, err error) *FocusError {
	return Wrap(err, ErrCodeDaemonNotRunning, "focus daemon is not reachable").
		WithDetail("socket", socket)
}

// DaemonRunning creates an error for a second daemon instance.
func DaemonRunning(pid int) *FocusError {
	return New(ErrCodeDaemonRunning, fmt.Sprintf("daemon already running with PID %d", pid)).
		WithDetail("pid", pid)
}

// RuleConflict creates an error for a rule ID that is already installed.
func RuleConflict(id int) *FocusError {
	return New(ErrCodeRuleConflict, fmt.Sprintf("rule %d is already installed", id)).
		WithDetail("rule", id)
}

// InvalidInput creates an invalid input error
func InvalidInput(reason string) *FocusError {
	return New(ErrCodeInvalidInput, reason)
}
