package focus

import (
	"fmt"
	"io"
	"sync"
)

// View is the visible side of a session. The manager calls ShowFocus when a
// session starts or resumes, ShowElapsed on every tick, and ShowTasks when
// the session ends. ShowElapsed is called from the ticker goroutine.
type View interface {
	ShowFocus(title string)
	ShowElapsed(text string)
	ShowTasks()
}

// NopView ignores all updates.
type NopView struct{}

func (NopView) ShowFocus(string)   {}
func (NopView) ShowElapsed(string) {}
func (NopView) ShowTasks()         {}

// WriterView writes view changes as plain text lines.
type WriterView struct {
	mu sync.Mutex
	w  io.Writer
	// Ticks controls whether elapsed updates are written.
	Ticks bool
}

// NewWriterView returns a WriterView writing to w.
func NewWriterView(w io.Writer, ticks bool) *WriterView {
	return &WriterView{w: w, Ticks: ticks}
}

func (v *WriterView) ShowFocus(title string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.w, "Focusing on: %s\n", title)
}

func (v *WriterView) ShowElapsed(text string) {
	if !v.Ticks {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.w, "\r%s", text)
}

func (v *WriterView) ShowTasks() {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.w, "Focus session ended")
}
