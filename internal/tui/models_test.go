package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"condasetup/internal/lifecycle"
)

func testItems() []lifecycle.MenuItem {
	return []lifecycle.MenuItem{
		{Key: "1", Label: "Use an environment"},
		{Key: "2", Label: "Reinstall"},
		{Key: "3", Label: "Exit"},
	}
}

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMenuCursorSelection(t *testing.T) {
	m := newMenuModel("Main menu", testItems())

	updated, _ := m.Update(key(tea.KeyDown))
	updated, _ = updated.(menuModel).Update(key(tea.KeyDown))
	updated, _ = updated.(menuModel).Update(key(tea.KeyDown))
	m = updated.(menuModel)
	if m.cursor != 2 {
		t.Fatalf("cursor should clamp at last item, got %d", m.cursor)
	}

	updated, _ = m.Update(key(tea.KeyUp))
	updated, cmd := updated.(menuModel).Update(key(tea.KeyEnter))
	m = updated.(menuModel)
	if !m.done || m.answer != "2" {
		t.Fatalf("expected answer 2, got done=%v answer=%q", m.done, m.answer)
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
}

func TestMenuTypedAnswerWins(t *testing.T) {
	m := newMenuModel("Select an environment", testItems())

	updated, _ := m.Update(runes("ml"))
	updated, _ = updated.(menuModel).Update(key(tea.KeyEnter))
	m = updated.(menuModel)
	if m.answer != "ml" {
		t.Fatalf("expected typed answer ml, got %q", m.answer)
	}
}

func TestMenuEscCancels(t *testing.T) {
	m := newMenuModel("Main menu", testItems())

	updated, cmd := m.Update(key(tea.KeyEsc))
	m = updated.(menuModel)
	if !m.cancelled {
		t.Error("expected cancelled after esc")
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
}

func TestMenuViewListsItems(t *testing.T) {
	view := newMenuModel("Main menu", testItems()).View()
	for _, want := range []string{"Main menu", "1. Use an environment", "3. Exit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestPromptValueTrimmed(t *testing.T) {
	m := newPromptModel("Environment name")

	updated, _ := m.Update(runes(" data "))
	updated, _ = updated.(promptModel).Update(key(tea.KeyEnter))
	m = updated.(promptModel)
	if !m.done || m.Value() != "data" {
		t.Fatalf("expected done with data, got done=%v value=%q", m.done, m.Value())
	}
}

func TestConfirmKeys(t *testing.T) {
	tests := []struct {
		name   string
		keys   []tea.KeyMsg
		yes    bool
		cancel bool
	}{
		{name: "y", keys: []tea.KeyMsg{runes("y")}, yes: true},
		{name: "n", keys: []tea.KeyMsg{runes("n")}},
		{name: "enter defaults to no", keys: []tea.KeyMsg{key(tea.KeyEnter)}},
		{name: "toggle then enter", keys: []tea.KeyMsg{key(tea.KeyLeft), key(tea.KeyEnter)}, yes: true},
		{name: "esc", keys: []tea.KeyMsg{key(tea.KeyEsc)}, cancel: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var model tea.Model = newConfirmModel("Remove everything?")
			for _, k := range tt.keys {
				model, _ = model.Update(k)
			}
			m := model.(confirmModel)
			if m.yes != tt.yes || m.cancelled != tt.cancel {
				t.Fatalf("got yes=%v cancelled=%v, want yes=%v cancelled=%v", m.yes, m.cancelled, tt.yes, tt.cancel)
			}
		})
	}
}

func TestSpinnerStopMsg(t *testing.T) {
	m := newSpinnerModel("Downloading installer")

	updated, cmd := m.Update(stopMsg{})
	m = updated.(spinnerModel)
	if !m.done {
		t.Error("expected done after stopMsg")
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
	if !strings.Contains(m.View(), "Downloading installer") {
		t.Errorf("final view should keep the message, got %q", m.View())
	}
}
