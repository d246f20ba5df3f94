// Package store holds the daemon's installed block rules. It is the
// enforcement point: navigations are checked against it, and rule changes
// are published to stream subscribers.
package store

import "github.com/grovetools/focus/pkg/models"

// UpdateType defines what kind of change happened.
type UpdateType string

const (
	UpdateRules UpdateType = "rules"
	UpdateFocus UpdateType = "focus"
)

// Update represents a change to the rule table.
type Update struct {
	Type    UpdateType         `json:"update_type"`
	Active  bool               `json:"active"`
	Added   int                `json:"added,omitempty"`
	Removed int                `json:"removed,omitempty"`
	Rules   []models.BlockRule `json:"rules,omitempty"`
}

// Decision is the result of checking a navigation against the table.
type Decision struct {
	URL     string `json:"url"`
	Host    string `json:"host,omitempty"`
	Blocked bool   `json:"blocked"`
	RuleID  int    `json:"rule_id,omitempty"`
}
