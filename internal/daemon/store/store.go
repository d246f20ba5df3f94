package store

import (
	"net/url"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/grovetools/focus/errors"
	"github.com/grovetools/focus/pkg/models"
	"github.com/moby/patternmatcher"
)

// Store is the in-memory rule table for the daemon.
// It is thread-safe and supports pub/sub for real-time updates.
type Store struct {
	mu          sync.RWMutex
	rules       map[int]models.BlockRule
	active      bool
	subscribers map[chan Update]struct{}
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		rules:       make(map[int]models.BlockRule),
		subscribers: make(map[chan Update]struct{}),
	}
}

// UpdateDynamicRules removes the rules with the given IDs, then adds the
// given rules. Unknown IDs in remove are ignored. If an added rule's ID is
// already installed, or repeated within add, nothing changes and a
// RULE_CONFLICT error is returned.
func (s *Store) UpdateDynamicRules(remove []int, add []models.BlockRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removing := make(map[int]bool, len(remove))
	for _, id := range remove {
		removing[id] = true
	}
	seen := make(map[int]bool, len(add))
	for _, r := range add {
		if _, exists := s.rules[r.ID]; (exists && !removing[r.ID]) || seen[r.ID] {
			return errors.RuleConflict(r.ID)
		}
		seen[r.ID] = true
	}

	removed := 0
	for _, id := range remove {
		if _, ok := s.rules[id]; ok {
			delete(s.rules, id)
			removed++
		}
	}
	for _, r := range add {
		s.rules[r.ID] = r
	}

	if removed == 0 && len(add) == 0 {
		return nil
	}
	s.broadcastLocked(Update{
		Type:    UpdateRules,
		Active:  s.active,
		Added:   len(add),
		Removed: removed,
		Rules:   s.sortedLocked(),
	})
	return nil
}

// SetActive records whether a focus session is being enforced.
func (s *Store) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == active {
		return
	}
	s.active = active
	s.broadcastLocked(Update{Type: UpdateFocus, Active: active})
}

// Active reports the last value passed to SetActive.
func (s *Store) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Rules returns the installed rules ordered by ID.
func (s *Store) Rules() []models.BlockRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked()
}

// IDs returns the installed rule IDs in ascending order.
func (s *Store) IDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int, 0, len(s.rules))
	for id := range s.rules {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Match reports whether a navigation to rawURL of the given resource type
// is blocked, and by which rule. The lowest matching rule ID wins.
func (s *Store) Match(rawURL, resourceType string) (Decision, error) {
	d := Decision{URL: rawURL}

	host, err := hostOf(rawURL)
	if err != nil {
		return d, err
	}
	d.Host = host

	for _, rule := range s.Rules() {
		if !slices.Contains(rule.Condition.ResourceTypes, resourceType) {
			continue
		}
		pattern, ok := hostPattern(rule.Condition.URLFilter)
		if !ok {
			continue
		}
		pm, err := patternmatcher.New([]string{pattern})
		if err != nil {
			continue
		}
		matched, err := pm.MatchesOrParentMatches(host)
		if err != nil || !matched {
			continue
		}
		d.Blocked = rule.Action.Type == models.RuleActionBlock
		d.RuleID = rule.ID
		return d, nil
	}
	return d, nil
}

// Subscribe creates a new subscription channel for rule updates.
func (s *Store) Subscribe() chan Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Update, 100) // Buffered
	s.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Store) Unsubscribe(ch chan Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[ch]; !ok {
		return
	}
	delete(s.subscribers, ch)
	close(ch)
}

func (s *Store) broadcastLocked(u Update) {
	for ch := range s.subscribers {
		select {
		case ch <- u:
		default:
			// Non-blocking send to prevent slow clients from stalling the daemon
		}
	}
}

func (s *Store) sortedLocked() []models.BlockRule {
	out := make([]models.BlockRule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// hostPattern turns "*://host/*" into "host" and "*://*.host/*" into
// "*.host".
func hostPattern(filter string) (string, bool) {
	rest, ok := strings.CutPrefix(filter, "*://")
	if !ok {
		return "", false
	}
	rest, ok = strings.CutSuffix(rest, "/*")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

func hostOf(rawURL string) (string, error) {
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.InvalidInput("invalid url").WithDetail("url", rawURL)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", errors.InvalidInput("url has no host").WithDetail("url", rawURL)
	}
	return host, nil
}
