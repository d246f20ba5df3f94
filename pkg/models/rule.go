package models

// ResourceMainFrame is the only resource type focus rules apply to:
// top-level page navigations.
const ResourceMainFrame = "main_frame"

// RuleActionBlock blocks the matched request.
const RuleActionBlock = "block"

// BlockRule is a dynamic network-blocking rule installed by the daemon.
type BlockRule struct {
	ID        int           `json:"id"`
	Priority  int           `json:"priority"`
	Action    RuleAction    `json:"action"`
	Condition RuleCondition `json:"condition"`
}

// RuleAction describes what happens to a matched request.
type RuleAction struct {
	Type string `json:"type"`
}

// RuleCondition selects the requests a rule applies to.
type RuleCondition struct {
	// URLFilter is "*://<host>/*" or "*://*.<host>/*".
	URLFilter     string   `json:"urlFilter"`
	ResourceTypes []string `json:"resourceTypes"`
}
