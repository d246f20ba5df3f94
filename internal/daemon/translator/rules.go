package translator

import (
	"fmt"
	"strings"

	"github.com/grovetools/focus/pkg/models"
)

const (
	// RuleIDStart is the ID of the first generated rule.
	RuleIDStart = 1
	// MaxRules caps the number of installed rules. Two rules are generated
	// per host, so at most MaxRules/2 hosts are blocked.
	MaxRules = 100
	// RulePriority is the priority of every generated rule.
	RulePriority = 1
)

// NormalizeHosts lowercases and trims each entry, drops any scheme and
// everything from the first "/", strips one leading ".", drops empties and
// removes duplicates keeping first-seen order. Rules match whole hosts, so
// "example.com/news" blocks all of example.com.
func NormalizeHosts(sites []string) []string {
	seen := make(map[string]bool, len(sites))
	hosts := make([]string, 0, len(sites))
	for _, site := range sites {
		host := strings.ToLower(strings.TrimSpace(site))
		if _, rest, ok := strings.Cut(host, "://"); ok {
			host = rest
		}
		host, _, _ = strings.Cut(host, "/")
		host = strings.TrimPrefix(host, ".")
		if host == "" || seen[host] {
			continue
		}
		seen[host] = true
		hosts = append(hosts, host)
	}
	return hosts
}

// BuildRules expands sites into block rules: for each host a bare-domain
// rule followed by a subdomain rule, with sequential IDs from RuleIDStart.
// Generation stops once MaxRules rules exist.
func BuildRules(sites []string) []models.BlockRule {
	hosts := NormalizeHosts(sites)
	rules := make([]models.BlockRule, 0, min(2*len(hosts), MaxRules))
	id := RuleIDStart
	for _, host := range hosts {
		if len(rules)+2 > MaxRules {
			break
		}
		rules = append(rules,
			newRule(id, fmt.Sprintf("*://%s/*", host)),
			newRule(id+1, fmt.Sprintf("*://*.%s/*", host)),
		)
		id += 2
	}
	return rules
}

func newRule(id int, filter string) models.BlockRule {
	return models.BlockRule{
		ID:       id,
		Priority: RulePriority,
		Action:   models.RuleAction{Type: models.RuleActionBlock},
		Condition: models.RuleCondition{
			URLFilter:     filter,
			ResourceTypes: []string{models.ResourceMainFrame},
		},
	}
}
