// Package daemon provides a client for the focus daemon (focusd).
// It implements a transparent fallback pattern: if the daemon is running,
// requests go over its Unix socket; if not, an offline client answers the
// way a missing daemon would.
package daemon

import (
	"context"
	"time"

	"github.com/grovetools/focus/pkg/models"
)

// Client defines the interface for interacting with the focus daemon.
// Both RemoteClient and OfflineClient implement this interface.
type Client interface {
	// SetFocusState sends a FOCUS_STATE message and waits for the ack.
	SetFocusState(ctx context.Context, state models.FocusState) error

	// GetFocusState asks whether the daemon is enforcing a focus session.
	GetFocusState(ctx context.Context) (models.StatusResponse, error)

	// Rules returns the installed block rules.
	Rules(ctx context.Context) (*RulesSnapshot, error)

	// Check reports whether a navigation to url would be blocked.
	Check(ctx context.Context, url string) (*Decision, error)

	// StreamState subscribes to rule table updates.
	// The channel is closed when the context is cancelled or the
	// connection is lost.
	StreamState(ctx context.Context) (<-chan StateUpdate, error)

	// IsRunning returns true if the daemon is available and responding.
	IsRunning() bool

	// Close cleans up any resources used by the client.
	Close() error
}

// StateUpdate is a rule table change pushed from the daemon to subscribers.
type StateUpdate struct {
	UpdateType string             `json:"update_type"` // "rules" or "focus"
	Active     bool               `json:"active"`
	Added      int                `json:"added,omitempty"`
	Removed    int                `json:"removed,omitempty"`
	Rules      []models.BlockRule `json:"rules,omitempty"`
}

// RulesSnapshot is the daemon's rule table at one point in time.
type RulesSnapshot struct {
	Active    bool               `json:"active"`
	Rules     []models.BlockRule `json:"rules"`
	StartedAt time.Time          `json:"started_at"`
}

// Decision is the daemon's verdict on one URL.
type Decision struct {
	URL     string `json:"url"`
	Host    string `json:"host,omitempty"`
	Blocked bool   `json:"blocked"`
	RuleID  int    `json:"rule_id,omitempty"`
}
