// Package models defines the data shared by the page side (focus commands)
// and the daemon: the persisted focus session, the notification payload and
// the wire messages exchanged between the two.
package models

// FocusSession is the persisted focus record. A session is either absent or
// fully populated; no partial session is ever written.
type FocusSession struct {
	Active       bool     `json:"active"`
	TaskID       string   `json:"taskId"`
	StartTime    int64    `json:"startTime"` // epoch milliseconds
	BlockedSites []string `json:"blockedSites"`
}

// Valid reports whether the session carries the fields an active session needs.
func (s FocusSession) Valid() bool {
	return s.Active && s.TaskID != "" && s.StartTime != 0
}

// State converts the session into the notifier payload.
func (s FocusSession) State() FocusState {
	if !s.Active {
		return FocusState{}
	}
	return FocusState{
		Active:       true,
		TaskID:       s.TaskID,
		StartTime:    s.StartTime,
		BlockedSites: append([]string(nil), s.BlockedSites...),
	}
}

// FocusState is what the cross-context notifier broadcasts on every
// transition: {active:false} or the full active session.
type FocusState struct {
	Active       bool     `json:"active"`
	TaskID       string   `json:"taskId,omitempty"`
	StartTime    int64    `json:"startTime,omitempty"`
	BlockedSites []string `json:"blockedSites,omitempty"`
}
