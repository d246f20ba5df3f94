package focusview

import tea "github.com/charmbracelet/bubbletea"

// ProgramView forwards session view changes to a running tea.Program.
// Send returns immediately once the program has exited.
type ProgramView struct {
	p *tea.Program
}

// NewProgramView returns a view bound to p.
func NewProgramView(p *tea.Program) *ProgramView {
	return &ProgramView{p: p}
}

func (v *ProgramView) ShowFocus(title string)  { v.p.Send(focusMsg{title: title}) }
func (v *ProgramView) ShowElapsed(text string) { v.p.Send(elapsedMsg{text: text}) }
func (v *ProgramView) ShowTasks()              { v.p.Send(tasksMsg{}) }
