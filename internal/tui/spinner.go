package tui

import (
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// stopMsg ends a running spinner program.
type stopMsg struct{}

type spinnerModel struct {
	spinner spinner.Model
	message string
	start   time.Time
	done    bool
}

func newSpinnerModel(msg string) spinnerModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle
	return spinnerModel{spinner: sp, message: msg, start: time.Now()}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stopMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	elapsed := faintStyle.Render("(" + formatElapsed(time.Since(m.start)) + ")")
	if m.done {
		return m.message + " " + elapsed + "\n"
	}
	return m.spinner.View() + " " + m.message + " " + elapsed
}

// runSpinner starts a spinner program on out and returns a function that
// stops it and waits for the final frame to render.
func runSpinner(out io.Writer, msg string) func() {
	p := tea.NewProgram(newSpinnerModel(msg), tea.WithOutput(out), tea.WithInput(nil))
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		_, _ = p.Run()
	}()

	stopped := false
	return func() {
		if stopped {
			return
		}
		stopped = true
		p.Send(stopMsg{})
		<-exited
	}
}
