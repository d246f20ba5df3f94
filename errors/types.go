package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Storage errors
	ErrCodeStorageOpen  ErrorCode = "STORAGE_OPEN"
	ErrCodeStorageRead  ErrorCode = "STORAGE_READ"
	ErrCodeStorageWrite ErrorCode = "STORAGE_WRITE"

	// Task errors
	ErrCodeTaskNotFound ErrorCode = "TASK_NOT_FOUND"

	// Daemon errors
	ErrCodeDaemonNotRunning ErrorCode = "DAEMON_NOT_RUNNING"
	ErrCodeDaemonRunning    ErrorCode = "DAEMON_ALREADY_RUNNING"
	ErrCodeDaemonProtocol   ErrorCode = "DAEMON_PROTOCOL"

	// Rule errors
	ErrCodeRuleConflict ErrorCode = "RULE_CONFLICT"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// FocusError represents a structured error with context
type FocusError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *FocusError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *FocusError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *FocusError) WithDetail(key string, value interface{}) *FocusError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *FocusError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new FocusError
func New(code ErrorCode, message string) *FocusError {
	return &FocusError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a FocusError
func Wrap(err error, code ErrorCode, message string) *FocusError {
	return &FocusError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is reports whether any error in err's chain is a FocusError with the given code.
func Is(err error, code ErrorCode) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from the first FocusError in the chain.
func GetCode(err error) ErrorCode {
	for err != nil {
		if focusErr, ok := err.(*FocusError); ok {
			return focusErr.Code
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = unwrapper.Unwrap()
	}
	return ""
}
