package models

// MessageType discriminates wire messages.
type MessageType string

const (
	// MessageFocusState carries a session transition to the daemon.
	MessageFocusState MessageType = "FOCUS_STATE"
	// MessageGetFocusState asks the daemon whether enforcement is installed.
	MessageGetFocusState MessageType = "GET_FOCUS_STATE"
)

// Message is the envelope for every page → daemon message.
// For GET_FOCUS_STATE only Type is meaningful.
type Message struct {
	Type         MessageType `json:"type"`
	Active       bool        `json:"active"`
	BlockedSites []string    `json:"blockedSites,omitempty"`
}

// StatusResponse answers GET_FOCUS_STATE.
type StatusResponse struct {
	Active bool `json:"active"`
}

// Ack answers FOCUS_STATE.
type Ack struct {
	OK bool `json:"ok"`
}
