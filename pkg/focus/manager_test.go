package focus

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/grovetools/focus/pkg/models"
	"github.com/grovetools/focus/pkg/notify"
	"github.com/grovetools/focus/state"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTasks map[string]models.Task

func (f fakeTasks) Lookup(id string) (models.Task, bool) {
	t, ok := f[id]
	return t, ok
}

type fakeSites []string

func (f fakeSites) BlockedSites() []string { return f }

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// recordingView keeps every view call as a string event.
type recordingView struct {
	mu     sync.Mutex
	events []string
}

func (v *recordingView) add(e string) {
	v.mu.Lock()
	v.events = append(v.events, e)
	v.mu.Unlock()
}

func (v *recordingView) ShowFocus(title string)  { v.add("focus:" + title) }
func (v *recordingView) ShowElapsed(text string) { v.add("tick:" + text) }
func (v *recordingView) ShowTasks()              { v.add("tasks") }

func (v *recordingView) Events() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.events...)
}

func (v *recordingView) Last() string {
	events := v.Events()
	if len(events) == 0 {
		return ""
	}
	return events[len(events)-1]
}

type harness struct {
	store    *state.MemoryStore
	rec      *notify.Recorder
	view     *recordingView
	clock    *fakeClock
	sites    fakeSites
	tasks    fakeTasks
	interval time.Duration
}

func newHarness() *harness {
	return &harness{
		store:    state.NewMemoryStore(),
		rec:      &notify.Recorder{},
		view:     &recordingView{},
		clock:    &fakeClock{now: time.UnixMilli(1000)},
		sites:    fakeSites{"youtube.com", "reddit.com"},
		tasks:    fakeTasks{"t1": {ID: "t1", Text: "Write report"}},
		interval: time.Hour,
	}
}

func (h *harness) manager(t *testing.T) *Manager {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	m := NewManager(Options{
		Store:        h.store,
		Tasks:        h.tasks,
		Settings:     h.sites,
		Notifier:     h.rec,
		View:         h.view,
		Logger:       logrus.NewEntry(logger),
		Now:          h.clock.Now,
		TickInterval: h.interval,
	})
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func (h *harness) stored(t *testing.T) (string, bool) {
	t.Helper()
	v, ok, err := h.store.Get(StorageKey)
	require.NoError(t, err)
	return v, ok
}

func TestStartThenEnd(t *testing.T) {
	h := newHarness()
	m := h.manager(t)
	ctx := context.Background()

	require.NoError(t, m.StartFocus(ctx, "t1"))

	data, ok := h.stored(t)
	require.True(t, ok)
	assert.JSONEq(t, `{"active":true,"taskId":"t1","startTime":1000,"blockedSites":["youtube.com","reddit.com"]}`, data)
	assert.Equal(t, []string{"focus:Write report", "tick:00:00:00"}, h.view.Events())

	require.NoError(t, m.EndFocus(ctx))

	_, ok = h.stored(t)
	assert.False(t, ok, "record must be deleted, not nulled")

	states := h.rec.States()
	require.Len(t, states, 2)
	assert.Equal(t, models.FocusState{
		Active:       true,
		TaskID:       "t1",
		StartTime:    1000,
		BlockedSites: []string{"youtube.com", "reddit.com"},
	}, states[0])
	assert.Equal(t, models.FocusState{Active: false}, states[1])

	assert.Equal(t, "tasks", h.view.Last())
	assert.False(t, m.Session().Active)
}

func TestStartUnknownTaskIsNoop(t *testing.T) {
	h := newHarness()
	m := h.manager(t)

	require.NoError(t, m.StartFocus(context.Background(), "missing"))

	_, ok := h.stored(t)
	assert.False(t, ok)
	assert.Empty(t, h.rec.States())
	assert.Empty(t, h.view.Events())
}

func TestStartSnapshotsSites(t *testing.T) {
	h := newHarness()
	m := h.manager(t)

	require.NoError(t, m.StartFocus(context.Background(), "t1"))
	h.sites[0] = "changed.com"

	assert.Equal(t, []string{"youtube.com", "reddit.com"}, m.Session().BlockedSites)
}

func TestStartWhileActiveReplacesSession(t *testing.T) {
	h := newHarness()
	h.tasks["t2"] = models.Task{ID: "t2", Text: "Review"}
	m := h.manager(t)
	ctx := context.Background()

	require.NoError(t, m.StartFocus(ctx, "t1"))
	h.clock.Set(time.UnixMilli(5000))
	require.NoError(t, m.StartFocus(ctx, "t2"))

	s := m.Session()
	assert.Equal(t, "t2", s.TaskID)
	assert.Equal(t, int64(5000), s.StartTime)
	assert.Len(t, h.rec.States(), 2)
}

func TestRestoreOnLoad(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	first := h.manager(t)
	require.NoError(t, first.StartFocus(ctx, "t1"))
	require.NoError(t, first.Close())

	h.clock.Set(time.UnixMilli(61000))
	h.rec.Reset()
	view := &recordingView{}
	h.view = view

	m := h.manager(t)
	restored, err := m.RestoreOnLoad(ctx)
	require.NoError(t, err)
	assert.True(t, restored)

	assert.Equal(t, int64(1000), m.Session().StartTime, "start time survives reload")
	assert.Equal(t, []string{"focus:Write report", "tick:00:01:00"}, view.Events())
	assert.Equal(t, time.Minute, m.Elapsed())

	states := h.rec.States()
	require.Len(t, states, 1)
	assert.True(t, states[0].Active)

	data, ok := h.stored(t)
	require.True(t, ok)
	assert.Contains(t, data, `"startTime":1000`)
}

func TestRestoreOnLoadIsIdempotent(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.store.Set(StorageKey,
		`{"active":true,"taskId":"t1","startTime":1000,"blockedSites":["a.com"]}`))
	h.clock.Set(time.UnixMilli(4000))
	m := h.manager(t)
	ctx := context.Background()

	_, err := m.RestoreOnLoad(ctx)
	require.NoError(t, err)
	firstSession := m.Session()
	firstView := h.view.Last()

	_, err = m.RestoreOnLoad(ctx)
	require.NoError(t, err)

	assert.Equal(t, firstSession, m.Session())
	assert.Equal(t, firstView, h.view.Last())

	states := h.rec.States()
	require.Len(t, states, 2)
	assert.Equal(t, states[0], states[1])
}

func TestRestoreOnLoadTreatsBadRecordsAsAbsent(t *testing.T) {
	tests := []struct {
		name   string
		stored string
	}{
		{name: "malformed json", stored: `{"active":tru`},
		{name: "wrong types", stored: `{"active":true,"taskId":7,"startTime":"yesterday"}`},
		{name: "inactive", stored: `{"active":false,"taskId":"t1","startTime":1000}`},
		{name: "missing task id", stored: `{"active":true,"startTime":1000}`},
		{name: "missing start time", stored: `{"active":true,"taskId":"t1"}`},
		{name: "not an object", stored: `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			require.NoError(t, h.store.Set(StorageKey, tt.stored))
			m := h.manager(t)

			restored, err := m.RestoreOnLoad(context.Background())
			require.NoError(t, err)
			assert.False(t, restored)
			assert.Empty(t, h.rec.States())
			assert.Empty(t, h.view.Events())
		})
	}
}

func TestRestoreOnLoadMissingTaskKeepsRecord(t *testing.T) {
	h := newHarness()
	record := `{"active":true,"taskId":"gone","startTime":1000,"blockedSites":[]}`
	require.NoError(t, h.store.Set(StorageKey, record))
	m := h.manager(t)

	restored, err := m.RestoreOnLoad(context.Background())
	require.NoError(t, err)
	assert.False(t, restored)
	assert.Empty(t, h.rec.States())

	data, ok := h.stored(t)
	assert.True(t, ok)
	assert.Equal(t, record, data)
}

func TestRestoreOnLoadDefaultsMissingSites(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.store.Set(StorageKey, `{"active":true,"taskId":"t1","startTime":1000}`))
	m := h.manager(t)

	_, err := m.RestoreOnLoad(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{}, m.Session().BlockedSites)
	assert.Equal(t, []models.FocusState{{Active: true, TaskID: "t1", StartTime: 1000}}, h.rec.States())
}

func TestRestoreOnLoadDefaultsMissingActive(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.store.Set(StorageKey, `{"taskId":"t1","startTime":1000,"blockedSites":["a.com"]}`))
	m := h.manager(t)

	restored, err := m.RestoreOnLoad(context.Background())
	require.NoError(t, err)
	assert.True(t, restored)
	assert.True(t, m.Session().Active)
	assert.Equal(t, []models.FocusState{{
		Active:       true,
		TaskID:       "t1",
		StartTime:    1000,
		BlockedSites: []string{"a.com"},
	}}, h.rec.States())
	assert.Equal(t, "focus:Write report", h.view.Events()[0])
}

func TestSessionSnapshotIsACopy(t *testing.T) {
	h := newHarness()
	m := h.manager(t)
	assert.Nil(t, m.Session().BlockedSites)

	require.NoError(t, m.StartFocus(context.Background(), "t1"))
	snap := m.Session()
	snap.BlockedSites[0] = "changed.com"
	assert.Equal(t, []string{"youtube.com", "reddit.com"}, m.Session().BlockedSites)
}

func TestNotifyFailureDoesNotBlockTransition(t *testing.T) {
	h := newHarness()
	h.rec.Err = fmt.Errorf("daemon not running")
	m := h.manager(t)

	require.NoError(t, m.StartFocus(context.Background(), "t1"))
	_, ok := h.stored(t)
	assert.True(t, ok)
	assert.True(t, m.Session().Active)
}

func TestPersistBeforeNotify(t *testing.T) {
	h := newHarness()
	var seen []bool
	notifier := notify.Func(func(_ context.Context, s models.FocusState) error {
		_, ok, _ := h.store.Get(StorageKey)
		seen = append(seen, ok)
		return nil
	})
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	m := NewManager(Options{
		Store:    h.store,
		Tasks:    h.tasks,
		Settings: h.sites,
		Notifier: notifier,
		Logger:   logrus.NewEntry(logger),
		Now:      h.clock.Now,
	})
	defer m.Close()

	ctx := context.Background()
	require.NoError(t, m.StartFocus(ctx, "t1"))
	require.NoError(t, m.EndFocus(ctx))
	assert.Equal(t, []bool{true, false}, seen)
}

func TestNoTickAfterEnd(t *testing.T) {
	h := newHarness()
	h.interval = time.Millisecond
	m := h.manager(t)
	ctx := context.Background()

	require.NoError(t, m.StartFocus(ctx, "t1"))
	assert.Eventually(t, func() bool {
		return len(h.view.Events()) > 3
	}, time.Second, time.Millisecond)

	require.NoError(t, m.EndFocus(ctx))
	count := len(h.view.Events())
	assert.Equal(t, "tasks", h.view.Last())

	time.Sleep(20 * time.Millisecond)
	assert.Len(t, h.view.Events(), count)
	assert.Equal(t, "tasks", h.view.Last())
}

func TestReload(t *testing.T) {
	h := newHarness()
	m := h.manager(t)
	ctx := context.Background()

	require.NoError(t, h.store.Set(StorageKey,
		`{"active":true,"taskId":"t1","startTime":1000,"blockedSites":["a.com"]}`))
	require.NoError(t, m.Reload(ctx))
	assert.True(t, m.Session().Active)
	assert.Equal(t, []string{"focus:Write report", "tick:00:00:00"}, h.view.Events())

	// Same record again changes nothing.
	require.NoError(t, m.Reload(ctx))
	assert.Len(t, h.view.Events(), 2)

	require.NoError(t, h.store.Delete(StorageKey))
	require.NoError(t, m.Reload(ctx))
	assert.False(t, m.Session().Active)
	assert.Equal(t, "tasks", h.view.Last())

	assert.Empty(t, h.rec.States(), "reload never notifies")
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{59 * time.Second, "00:00:59"},
		{time.Minute, "00:01:00"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
		{36 * time.Hour, "36:00:00"},
		{100 * time.Hour, "100:00:00"},
		{-5 * time.Second, "00:00:00"},
		{1500 * time.Millisecond, "00:00:01"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatElapsed(tt.d))
		})
	}
}
