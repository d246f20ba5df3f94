package translator

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/grovetools/focus/errors"
	"github.com/grovetools/focus/internal/daemon/store"
	"github.com/grovetools/focus/pkg/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func sites(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("site%d.com", i)
	}
	return out
}

func focusOn(sites ...string) models.Message {
	return models.Message{Type: models.MessageFocusState, Active: true, BlockedSites: sites}
}

func focusOff() models.Message {
	return models.Message{Type: models.MessageFocusState}
}

func TestBuildRulesSingleHost(t *testing.T) {
	rules := BuildRules([]string{"foo.com"})
	require.Len(t, rules, 2)

	assert.Equal(t, 1, rules[0].ID)
	assert.Equal(t, "*://foo.com/*", rules[0].Condition.URLFilter)
	assert.Equal(t, 2, rules[1].ID)
	assert.Equal(t, "*://*.foo.com/*", rules[1].Condition.URLFilter)

	for _, r := range rules {
		assert.Equal(t, 1, r.Priority)
		assert.Equal(t, models.RuleActionBlock, r.Action.Type)
		assert.Equal(t, []string{models.ResourceMainFrame}, r.Condition.ResourceTypes)
	}
}

func TestBuildRulesNormalizes(t *testing.T) {
	tests := []struct {
		name  string
		sites []string
		want  []string
	}{
		{
			name:  "case and leading dot collapse",
			sites: []string{"Example.com", "example.com", ".example.com"},
			want:  []string{"*://example.com/*", "*://*.example.com/*"},
		},
		{
			name:  "first seen order",
			sites: []string{"b.com", " A.com ", "b.com"},
			want:  []string{"*://b.com/*", "*://*.b.com/*", "*://a.com/*", "*://*.a.com/*"},
		},
		{
			name:  "blanks dropped",
			sites: []string{"", "  ", ".", "c.com"},
			want:  []string{"*://c.com/*", "*://*.c.com/*"},
		},
		{
			name:  "path dropped",
			sites: []string{"example.com/news", "example.com/"},
			want:  []string{"*://example.com/*", "*://*.example.com/*"},
		},
		{
			name:  "scheme dropped",
			sites: []string{"https://News.example.com/today"},
			want:  []string{"*://news.example.com/*", "*://*.news.example.com/*"},
		},
		{
			name:  "path only",
			sites: []string{"/news"},
			want:  []string{},
		},
		{
			name:  "empty",
			sites: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := BuildRules(tt.sites)
			got := make([]string, len(rules))
			for i, r := range rules {
				got[i] = r.Condition.URLFilter
				assert.Equal(t, RuleIDStart+i, r.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildRulesCap(t *testing.T) {
	for _, n := range []int{50, 51, 75, 200} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			rules := BuildRules(sites(n))
			assert.Len(t, rules, MaxRules)
			assert.Equal(t, MaxRules, rules[len(rules)-1].ID)
			assert.Equal(t, "*://*.site49.com/*", rules[len(rules)-1].Condition.URLFilter)
		})
	}
	assert.Len(t, BuildRules(sites(3)), 6)
}

func TestBuildRulesDeterministic(t *testing.T) {
	in := []string{"x.com", "Y.com", ".z.com"}
	assert.Equal(t, BuildRules(in), BuildRules(in))
}

func TestApplyInstallsAndClears(t *testing.T) {
	table := store.New()
	tr := New(table, testLogger())
	ctx := context.Background()

	assert.False(t, tr.Status().Active, "inactive before any notification")

	tr.Apply(ctx, focusOn("foo.com", "bar.com"))
	assert.True(t, tr.Status().Active)
	assert.Equal(t, []int{1, 2, 3, 4}, table.IDs())
	assert.Equal(t, []int{1, 2, 3, 4}, tr.RuleIDs())
	assert.True(t, table.Active())

	tr.Apply(ctx, focusOn("baz.com"))
	assert.Equal(t, []int{1, 2}, table.IDs())
	assert.Equal(t, "*://baz.com/*", table.Rules()[0].Condition.URLFilter)

	tr.Apply(ctx, focusOff())
	assert.False(t, tr.Status().Active)
	assert.Empty(t, table.IDs())
	assert.Empty(t, tr.RuleIDs())
}

func TestApplySiteWithPathBlocksHost(t *testing.T) {
	table := store.New()
	tr := New(table, testLogger())

	tr.Apply(context.Background(), focusOn("example.com/news"))

	for _, u := range []string{"https://example.com/news/today", "https://example.com/", "http://www.example.com/x"} {
		d, err := table.Match(u, models.ResourceMainFrame)
		require.NoError(t, err)
		assert.True(t, d.Blocked, u)
	}
}

func TestApplyActiveWithNoSites(t *testing.T) {
	table := store.New()
	tr := New(table, testLogger())

	tr.Apply(context.Background(), focusOn())
	assert.True(t, tr.Status().Active)
	assert.Empty(t, table.IDs())
}

func TestApplyOverCap(t *testing.T) {
	table := store.New()
	tr := New(table, testLogger())

	tr.Apply(context.Background(), focusOn(sites(60)...))
	assert.Len(t, table.Rules(), MaxRules)
}

func TestApplyLeavesForeignRules(t *testing.T) {
	table := store.New()
	require.NoError(t, table.UpdateDynamicRules(nil, []models.BlockRule{{ID: 500}}))
	tr := New(table, testLogger())

	tr.Apply(context.Background(), focusOn("a.com"))
	tr.Apply(context.Background(), focusOff())
	assert.Equal(t, []int{500}, table.IDs())
}

// slowSink records calls and sleeps inside each one to widen any
// interleaving window.
type slowSink struct {
	mu    sync.Mutex
	calls []string
}

func (s *slowSink) UpdateDynamicRules(remove []int, add []models.BlockRule) error {
	s.mu.Lock()
	if len(add) > 0 {
		s.calls = append(s.calls, "add")
	} else {
		s.calls = append(s.calls, "remove")
	}
	s.mu.Unlock()
	time.Sleep(time.Millisecond)
	return nil
}

func TestApplySerializes(t *testing.T) {
	sink := &slowSink{}
	tr := New(sink, testLogger())
	ctx := context.Background()

	// Seed so every subsequent Apply has something to remove.
	tr.Apply(ctx, focusOn("seed.com"))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Apply(ctx, focusOn("a.com"))
		}()
	}
	wg.Wait()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	calls := sink.calls[1:]
	require.Len(t, calls, 20)
	for i := 0; i < len(calls); i += 2 {
		assert.Equal(t, "remove", calls[i])
		assert.Equal(t, "add", calls[i+1])
	}
}

type failingSink struct{}

func (failingSink) UpdateDynamicRules([]int, []models.BlockRule) error {
	return errors.New(errors.ErrCodeInternal, "sink down")
}

func TestApplySinkFailureIsNotSurfaced(t *testing.T) {
	tr := New(failingSink{}, testLogger())

	reply, err := tr.Handle(context.Background(), focusOn("a.com"))
	require.NoError(t, err)
	assert.Equal(t, models.Ack{OK: true}, reply)
	assert.True(t, tr.Status().Active)
	assert.Empty(t, tr.RuleIDs())
}

func TestHandle(t *testing.T) {
	tr := New(store.New(), testLogger())
	ctx := context.Background()

	reply, err := tr.Handle(ctx, models.Message{Type: models.MessageGetFocusState})
	require.NoError(t, err)
	assert.Equal(t, models.StatusResponse{Active: false}, reply)

	reply, err = tr.Handle(ctx, focusOn("a.com"))
	require.NoError(t, err)
	assert.Equal(t, models.Ack{OK: true}, reply)

	reply, err = tr.Handle(ctx, models.Message{Type: models.MessageGetFocusState})
	require.NoError(t, err)
	assert.Equal(t, models.StatusResponse{Active: true}, reply)

	_, err = tr.Handle(ctx, models.Message{Type: "PING"})
	assert.True(t, errors.Is(err, errors.ErrCodeDaemonProtocol))
}
