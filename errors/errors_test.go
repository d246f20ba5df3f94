package errors

import (
	"fmt"
	"testing"
)

func TestFocusError(t *testing.T) {
	// Test basic error creation
	err := New(ErrCodeTaskNotFound, "task not found")
	if err.Code != ErrCodeTaskNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeTaskNotFound, err.Code)
	}

	// Test error wrapping
	cause := fmt.Errorf("underlying error")
	wrapped := Wrap(cause, ErrCodeStorageWrite, "write failed")

	if wrapped.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}

	// Test Is function
	if !Is(wrapped, ErrCodeStorageWrite) {
		t.Error("Is should return true for matching code")
	}

	if Is(wrapped, ErrCodeTaskNotFound) {
		t.Error("Is should return false for non-matching code")
	}

	// Codes survive fmt.Errorf wrapping
	outer := fmt.Errorf("saving session: %w", wrapped)
	if GetCode(outer) != ErrCodeStorageWrite {
		t.Errorf("expected code %s through wrapping, got %s", ErrCodeStorageWrite, GetCode(outer))
	}

	if Is(nil, "") {
		t.Error("Is should be false for nil errors")
	}

	// Test WithDetail
	detailed := err.WithDetail("task", "t1").WithDetail("attempt", 2)
	if detailed.Details["task"] != "t1" {
		t.Error("WithDetail should add details")
	}
}

func TestErrorConstructors(t *testing.T) {
	err := TaskNotFound("t1")
	if err.Code != ErrCodeTaskNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeTaskNotFound, err.Code)
	}
	if err.Details["task"] != "t1" {
		t.Error("TaskNotFound should include task detail")
	}

	err = RuleConflict(3)
	if err.Code != ErrCodeRuleConflict {
		t.Errorf("expected code %s, got %s", ErrCodeRuleConflict, err.Code)
	}
	if err.Details["rule"] != 3 {
		t.Error("RuleConflict should include rule detail")
	}

	err = DaemonNotRunning("/tmp/focus.sock", fmt.Errorf("dial"))
	if err.Details["socket"] != "/tmp/focus.sock" {
		t.Error("DaemonNotRunning should include socket detail")
	}
}
