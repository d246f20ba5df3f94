// Package notify carries focus state transitions from the process that owns
// the session to the daemon that enforces it.
package notify

import (
	"context"
	"sync"

	"github.com/grovetools/focus/pkg/models"
)

// Notifier broadcasts a focus state. Delivery is one-way and best effort;
// callers log a returned error and carry on.
type Notifier interface {
	Notify(ctx context.Context, state models.FocusState) error
}

// NewMessage builds the FOCUS_STATE wire message for state.
func NewMessage(state models.FocusState) models.Message {
	msg := models.Message{Type: models.MessageFocusState, Active: state.Active}
	if state.Active {
		msg.BlockedSites = append([]string{}, state.BlockedSites...)
	}
	return msg
}

// Func adapts a function to the Notifier interface.
type Func func(ctx context.Context, state models.FocusState) error

// Notify calls f.
func (f Func) Notify(ctx context.Context, state models.FocusState) error {
	return f(ctx, state)
}

// Nop discards every notification.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(context.Context, models.FocusState) error { return nil }

// Recorder keeps every notification it receives, in order.
type Recorder struct {
	mu     sync.Mutex
	states []models.FocusState
	// Err, when set, is returned from Notify after the state is recorded.
	Err error
}

// Notify records state.
func (r *Recorder) Notify(_ context.Context, state models.FocusState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
	return r.Err
}

// States returns a copy of the recorded states.
func (r *Recorder) States() []models.FocusState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.FocusState(nil), r.states...)
}

// Messages returns the recorded states as wire messages.
func (r *Recorder) Messages() []models.Message {
	states := r.States()
	out := make([]models.Message, len(states))
	for i, s := range states {
		out[i] = NewMessage(s)
	}
	return out
}

// Reset forgets all recorded states.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.states = nil
	r.mu.Unlock()
}
