// Package translator turns focus state notifications into installed block
// rules and answers status queries from its own view of enforcement.
package translator

import (
	"context"
	"sync"

	"github.com/grovetools/focus/errors"
	"github.com/grovetools/focus/pkg/models"
	"github.com/sirupsen/logrus"
)

// RuleSink installs and removes rules. remove is applied before add.
type RuleSink interface {
	UpdateDynamicRules(remove []int, add []models.BlockRule) error
}

// ActiveRecorder is implemented by sinks that also track the focus flag.
type ActiveRecorder interface {
	SetActive(active bool)
}

// Translator keeps the IDs of the rules it installed and the last focus
// flag it processed. Both start empty, so a restarted daemon enforces
// nothing until the next notification.
type Translator struct {
	sink   RuleSink
	logger *logrus.Entry

	mu          sync.Mutex
	ruleIDs     []int
	focusActive bool
}

// New creates a Translator installing rules into sink.
func New(sink RuleSink, logger *logrus.Entry) *Translator {
	return &Translator{sink: sink, logger: logger}
}

// Apply processes one FOCUS_STATE notification: every tracked rule is
// removed, then rules for msg.BlockedSites are installed if msg is active.
// Concurrent calls are serialized so two notifications never interleave.
// Sink failures are logged and leave the tracked set empty.
func (t *Translator) Apply(ctx context.Context, msg models.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.ruleIDs) > 0 {
		if err := t.sink.UpdateDynamicRules(t.ruleIDs, nil); err != nil {
			t.logger.WithError(err).WithField("rules", len(t.ruleIDs)).Error("Failed to remove focus rules")
		}
	}
	t.ruleIDs = nil
	t.focusActive = msg.Active
	if rec, ok := t.sink.(ActiveRecorder); ok {
		rec.SetActive(msg.Active)
	}

	if !msg.Active || len(msg.BlockedSites) == 0 {
		t.logger.WithField("active", msg.Active).Info("Focus rules cleared")
		return
	}
	if ctx.Err() != nil {
		t.logger.WithError(ctx.Err()).Warn("Focus state dropped before installing rules")
		return
	}

	rules := BuildRules(msg.BlockedSites)
	if err := t.sink.UpdateDynamicRules(nil, rules); err != nil {
		t.logger.WithError(err).WithField("rules", len(rules)).Error("Failed to install focus rules")
		return
	}
	t.ruleIDs = make([]int, len(rules))
	for i, r := range rules {
		t.ruleIDs[i] = r.ID
	}

	t.logger.WithFields(logrus.Fields{
		"sites": len(msg.BlockedSites),
		"rules": len(rules),
	}).Info("Focus rules installed")
}

// Status reports whether the last processed notification was active.
func (t *Translator) Status() models.StatusResponse {
	t.mu.Lock()
	defer t.mu.Unlock()
	return models.StatusResponse{Active: t.focusActive}
}

// RuleIDs returns the IDs currently tracked as installed.
func (t *Translator) RuleIDs() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]int(nil), t.ruleIDs...)
}

// Handle dispatches a wire message and returns its reply: an Ack for
// FOCUS_STATE, a StatusResponse for GET_FOCUS_STATE.
func (t *Translator) Handle(ctx context.Context, msg models.Message) (any, error) {
	switch msg.Type {
	case models.MessageFocusState:
		t.Apply(ctx, msg)
		return models.Ack{OK: true}, nil
	case models.MessageGetFocusState:
		return t.Status(), nil
	default:
		return nil, errors.New(errors.ErrCodeDaemonProtocol, "unknown message type").
			WithDetail("type", string(msg.Type))
	}
}
