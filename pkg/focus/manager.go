// Package focus runs focus sessions: it persists the session record, keeps a
// ticking elapsed-time display, and tells the daemon about every transition.
package focus

import (
	"context"
	"sync"
	"time"

	"github.com/grovetools/focus/errors"
	"github.com/grovetools/focus/logging"
	"github.com/grovetools/focus/pkg/models"
	"github.com/grovetools/focus/pkg/notify"
	"github.com/grovetools/focus/state"
	"github.com/sirupsen/logrus"
)

// DefaultTickInterval is the period of the elapsed-time display.
const DefaultTickInterval = time.Second

// TaskLookup resolves task IDs.
type TaskLookup interface {
	Lookup(id string) (models.Task, bool)
}

// SiteSource provides the blocked-site list snapshotted at session start.
type SiteSource interface {
	BlockedSites() []string
}

// Options configures a Manager. Store, Tasks and Settings are required.
type Options struct {
	Store        state.Store
	Tasks        TaskLookup
	Settings     SiteSource
	Notifier     notify.Notifier
	View         View
	Logger       *logrus.Entry
	Now          func() time.Time
	TickInterval time.Duration
}

// Manager owns the focus session for one process. It is the only writer of
// the session record.
type Manager struct {
	store    state.Store
	tasks    TaskLookup
	settings SiteSource
	notifier notify.Notifier
	view     View
	logger   *logrus.Entry
	now      func() time.Time
	interval time.Duration

	mu       sync.Mutex
	session  models.FocusSession
	stopTick context.CancelFunc
	tickDone chan struct{}
}

// NewManager creates a Manager with no active session.
func NewManager(opts Options) *Manager {
	m := &Manager{
		store:    opts.Store,
		tasks:    opts.Tasks,
		settings: opts.Settings,
		notifier: opts.Notifier,
		view:     opts.View,
		logger:   opts.Logger,
		now:      opts.Now,
		interval: opts.TickInterval,
	}
	if m.notifier == nil {
		m.notifier = notify.Nop{}
	}
	if m.view == nil {
		m.view = NopView{}
	}
	if m.logger == nil {
		m.logger = logging.NewLogger("focus")
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.interval <= 0 {
		m.interval = DefaultTickInterval
	}
	return m
}

// StartFocus begins a session on taskID. An unknown task is a silent no-op.
// Starting while a session is running replaces it.
func (m *Manager) StartFocus(ctx context.Context, taskID string) error {
	task, ok := m.tasks.Lookup(taskID)
	if !ok {
		m.logger.WithField("task_id", taskID).Debug("Ignoring focus start for unknown task")
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	session := models.FocusSession{
		Active:       true,
		TaskID:       taskID,
		StartTime:    m.now().UnixMilli(),
		BlockedSites: append([]string{}, m.settings.BlockedSites()...),
	}

	data, err := encodeSession(session)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageWrite, "failed to encode focus session")
	}
	if err := m.store.Set(StorageKey, data); err != nil {
		return err
	}

	m.stopTickerLocked()
	m.session = session
	m.notifyLocked(ctx, session.State())

	m.view.ShowFocus(task.Text)
	m.startTickerLocked(session.StartTime)

	m.logger.WithFields(logrus.Fields{
		"task_id":       taskID,
		"blocked_sites": len(session.BlockedSites),
	}).Info("Focus session started")
	return nil
}

// EndFocus clears the session record, notifies, stops the ticker and
// restores the task view. It acts on the stored record even if this Manager
// never saw the session start.
func (m *Manager) EndFocus(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Delete(StorageKey); err != nil {
		return err
	}
	m.session = models.FocusSession{}
	m.notifyLocked(ctx, models.FocusState{Active: false})

	m.stopTickerLocked()
	m.view.ShowTasks()

	m.logger.Info("Focus session ended")
	return nil
}

// RestoreOnLoad resumes a persisted session. The elapsed time continues from
// the stored start time and the daemon is notified again. A missing or
// undecodable record, or one whose task no longer exists, changes nothing;
// the record itself is left in the store.
func (m *Manager) RestoreOnLoad(ctx context.Context) (bool, error) {
	session, task, ok, err := m.loadResolvable()
	if err != nil || !ok {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopTickerLocked()
	m.session = session
	m.view.ShowFocus(task.Text)
	m.startTickerLocked(session.StartTime)
	m.notifyLocked(ctx, session.State())

	m.logger.WithField("task_id", session.TaskID).Info("Focus session restored")
	return true, nil
}

// Reload brings the in-memory session and the view in line with the store
// after another process changed it. It never writes or notifies.
func (m *Manager) Reload(ctx context.Context) error {
	session, task, ok, err := m.loadResolvable()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case ok && sameSession(m.session, session):
		return nil
	case ok:
		m.stopTickerLocked()
		m.session = session
		m.view.ShowFocus(task.Text)
		m.startTickerLocked(session.StartTime)
		m.logger.WithField("task_id", session.TaskID).Debug("Focus session picked up from store")
	case m.session.Active:
		m.stopTickerLocked()
		m.session = models.FocusSession{}
		m.view.ShowTasks()
		m.logger.Debug("Focus session cleared by another process")
	}
	return nil
}

// Session returns a copy of the current in-memory session.
func (m *Manager) Session() models.FocusSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.session
	if s.Active {
		s.BlockedSites = append([]string{}, s.BlockedSites...)
	}
	return s
}

// Elapsed returns the running time of the current session, or zero.
func (m *Manager) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.session.Active {
		return 0
	}
	return elapsedSince(m.session.StartTime, m.now())
}

// Close stops the ticker. Storage is left untouched so the session resumes
// on the next RestoreOnLoad.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopTickerLocked()
	return nil
}

func (m *Manager) loadResolvable() (models.FocusSession, models.Task, bool, error) {
	data, found, err := m.store.Get(StorageKey)
	if err != nil {
		return models.FocusSession{}, models.Task{}, false, err
	}
	if !found {
		return models.FocusSession{}, models.Task{}, false, nil
	}
	session, ok := decodeSession(data)
	if !ok {
		m.logger.Debug("Stored focus session is not usable, treating as absent")
		return models.FocusSession{}, models.Task{}, false, nil
	}
	task, ok := m.tasks.Lookup(session.TaskID)
	if !ok {
		m.logger.WithField("task_id", session.TaskID).Debug("Stored focus session refers to a missing task")
		return models.FocusSession{}, models.Task{}, false, nil
	}
	return session, task, true, nil
}

func (m *Manager) notifyLocked(ctx context.Context, s models.FocusState) {
	if err := m.notifier.Notify(ctx, s); err != nil {
		m.logger.WithError(err).WithField("active", s.Active).Warn("Failed to deliver focus state")
	}
}

// startTickerLocked renders the elapsed time immediately and then once per
// interval until stopTickerLocked is called.
func (m *Manager) startTickerLocked(startMs int64) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	m.stopTick = cancel
	m.tickDone = done

	view, now, interval := m.view, m.now, m.interval
	view.ShowElapsed(FormatElapsed(elapsedSince(startMs, now())))

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if ctx.Err() != nil {
					return
				}
				view.ShowElapsed(FormatElapsed(elapsedSince(startMs, now())))
			}
		}
	}()
}

// stopTickerLocked cancels the ticker and waits for its goroutine to exit.
func (m *Manager) stopTickerLocked() {
	if m.stopTick == nil {
		return
	}
	m.stopTick()
	<-m.tickDone
	m.stopTick = nil
	m.tickDone = nil
}

func sameSession(a, b models.FocusSession) bool {
	return a.Active == b.Active && a.TaskID == b.TaskID && a.StartTime == b.StartTime
}
