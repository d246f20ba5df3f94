// Package focusview is the interactive terminal view of a focus session:
// a task picker while idle and a running timer while focusing.
package focusview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/focus/pkg/models"
	"github.com/grovetools/focus/tui/theme"
)

// Messages sent by ProgramView.
type (
	focusMsg   struct{ title string }
	elapsedMsg struct{ text string }
	tasksMsg   struct{}
	errMsg     struct{ err error }
)

// Config wires the model to the session manager. The callbacks run inside
// tea.Cmds, never on the update loop.
type Config struct {
	Theme *theme.Theme
	// LoadTasks returns the tasks shown while idle.
	LoadTasks func() []models.Task
	// StartFocus starts a session on the given task.
	StartFocus func(taskID string) error
	// EndFocus ends the running session.
	EndFocus func() error
	// Restore runs once the program is started, so the view can already
	// receive updates.
	Restore func() error
}

// Model is the bubbletea model for the focus view.
type Model struct {
	cfg     Config
	keys    KeyMap
	help    help.Model
	tasks   []models.Task
	cursor  int
	focused bool
	title   string
	elapsed string
	err     error
	width   int
}

// New creates a Model showing the task list.
func New(cfg Config) Model {
	if cfg.Theme == nil {
		cfg.Theme = theme.New(models.DefaultTheme)
	}
	m := Model{
		cfg:  cfg,
		keys: DefaultKeyMap,
		help: help.New(),
	}
	m.reloadTasks()
	return m
}

// Init is the first command that will be executed.
func (m Model) Init() tea.Cmd {
	if m.cfg.Restore == nil {
		return nil
	}
	return run(m.cfg.Restore)
}

// Focused reports whether the model is showing a running session.
func (m Model) Focused() bool { return m.focused }

// Elapsed returns the last elapsed text shown.
func (m Model) Elapsed() string { return m.elapsed }

func (m *Model) reloadTasks() {
	if m.cfg.LoadTasks == nil {
		return
	}
	m.tasks = m.cfg.LoadTasks()
	if m.cursor >= len(m.tasks) {
		m.cursor = max(len(m.tasks)-1, 0)
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case focusMsg:
		m.focused = true
		m.title = msg.title
		m.err = nil
		return m, nil

	case elapsedMsg:
		m.elapsed = msg.text
		return m, nil

	case tasksMsg:
		m.focused = false
		m.title = ""
		m.elapsed = ""
		m.reloadTasks()
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.focused {
		if key.Matches(msg, m.keys.End) && m.cfg.EndFocus != nil {
			return m, run(m.cfg.EndFocus)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Start):
		if m.cursor < len(m.tasks) && m.cfg.StartFocus != nil {
			id := m.tasks[m.cursor].ID
			return m, run(func() error { return m.cfg.StartFocus(id) })
		}
	}
	return m, nil
}

// run executes fn off the update loop and reports a failure as errMsg.
func run(fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

// View renders the model.
func (m Model) View() string {
	th := m.cfg.Theme
	var b strings.Builder

	if m.focused {
		body := th.Muted.Render("Focusing on") + "\n" +
			th.Title.Render(m.title) + "\n\n" +
			th.Timer.Render(m.elapsed)
		b.WriteString(th.Box.Render(body))
	} else {
		b.WriteString(th.Title.Render("Tasks"))
		b.WriteString("\n\n")
		if len(m.tasks) == 0 {
			b.WriteString(th.Muted.Render("No tasks. Add one with 'focus task add'."))
			b.WriteString("\n")
		}
		for i, t := range m.tasks {
			b.WriteString(m.renderTask(i, t))
			b.WriteString("\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(th.Priority["red"].Render(m.err.Error()))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderTask(i int, t models.Task) string {
	th := m.cfg.Theme
	cursor := "  "
	text := t.Text
	if t.Done {
		text = th.Done.Render(text)
	}
	if i == m.cursor {
		cursor = th.Selected.Render("> ")
		if !t.Done {
			text = th.Selected.Render(text)
		}
	}

	dot := "●"
	if style, ok := th.Priority[t.Priority]; ok {
		dot = style.Render(dot)
	}
	return fmt.Sprintf("%s%s %s %s", cursor, dot, text, th.Muted.Render("["+t.Tag+"]"))
}
