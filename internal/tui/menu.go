package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"condasetup/internal/lifecycle"
)

// menuModel lists numbered items. Arrows move the cursor; typing fills a
// free-text answer (a number or a name) that wins over the cursor on enter.
type menuModel struct {
	title     string
	items     []lifecycle.MenuItem
	cursor    int
	input     textinput.Model
	answer    string
	done      bool
	cancelled bool
}

func newMenuModel(title string, items []lifecycle.MenuItem) menuModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "number or name"
	ti.Focus()
	return menuModel{title: title, items: items, input: ti}
}

func (m menuModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyUp:
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case tea.KeyDown:
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
			return m, nil
		case tea.KeyEnter:
			m.answer = strings.TrimSpace(m.input.Value())
			if m.answer == "" && len(m.items) > 0 {
				m.answer = m.items[m.cursor].Key
			}
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

func (m menuModel) View() string {
	if m.cancelled {
		return faintStyle.Render("  cancelled") + "\n"
	}
	if m.done {
		return fmt.Sprintf("%s %s\n", titleStyle.Render(m.title), m.answer)
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n\n")
	for i, item := range m.items {
		line := fmt.Sprintf("%s. %s", item.Key, item.Label)
		if i == m.cursor {
			sb.WriteString("▸ " + cursorStyle.Render(line))
		} else {
			sb.WriteString("  " + line)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.input.View())
	sb.WriteString("\n")
	sb.WriteString(faintStyle.Render("  [↑↓] Navigate  [Enter] Select  [Esc] Cancel"))
	sb.WriteString("\n")
	return sb.String()
}
