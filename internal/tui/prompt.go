package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type promptModel struct {
	label     string
	input     textinput.Model
	done      bool
	cancelled bool
}

func newPromptModel(label string) promptModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 128
	ti.Focus()
	return promptModel{label: label, input: ti}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) Value() string {
	return strings.TrimSpace(m.input.Value())
}

func (m promptModel) View() string {
	if m.cancelled {
		return faintStyle.Render("  cancelled") + "\n"
	}
	if m.done {
		return fmt.Sprintf("%s %s\n", titleStyle.Render(m.label+":"), m.Value())
	}
	return titleStyle.Render(m.label) + "\n" + m.input.View() + "\n"
}

// confirmModel asks a yes/no question. Anything but an explicit yes is no.
type confirmModel struct {
	question  string
	yes       bool
	done      bool
	cancelled bool
}

func newConfirmModel(question string) confirmModel {
	return confirmModel{question: question}
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y":
		m.yes, m.done = true, true
		return m, tea.Quit
	case "n", "N":
		m.yes, m.done = false, true
		return m, tea.Quit
	case "left", "right", "tab", "h", "l":
		m.yes = !m.yes
	case "enter":
		m.done = true
		return m, tea.Quit
	case "esc", "ctrl+c":
		m.yes, m.cancelled = false, true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.cancelled {
		return faintStyle.Render("  cancelled") + "\n"
	}
	answer := "no"
	if m.yes {
		answer = "yes"
	}
	if m.done {
		return fmt.Sprintf("%s %s\n", titleStyle.Render(m.question), answer)
	}

	yes, no := faintStyle.Render(" Yes "), cursorStyle.Render("[No]")
	if m.yes {
		yes, no = cursorStyle.Render("[Yes]"), faintStyle.Render(" No ")
	}
	return fmt.Sprintf("%s\n  %s  %s\n%s\n", titleStyle.Render(m.question), yes, no,
		faintStyle.Render("  [y/n] Answer  [←→] Toggle  [Enter] Confirm"))
}
