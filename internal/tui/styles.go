package tui

import (
	"github.com/charmbracelet/lipgloss"

	"condasetup/internal/lifecycle"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))

	levelStyles = map[lifecycle.Level]lipgloss.Style{
		lifecycle.LevelInfo:    lipgloss.NewStyle(),
		lifecycle.LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		lifecycle.LevelWarn:    lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		lifecycle.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}

	levelIcons = map[lifecycle.Level]string{
		lifecycle.LevelInfo:    "•",
		lifecycle.LevelSuccess: "✓",
		lifecycle.LevelWarn:    "!",
		lifecycle.LevelError:   "✗",
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case "ok", "installed-and-initialized":
		return levelStyles[lifecycle.LevelSuccess]
	case "warn", "installed-not-initialized":
		return levelStyles[lifecycle.LevelWarn]
	case "error", "not-installed":
		return levelStyles[lifecycle.LevelError]
	}
	return lipgloss.NewStyle()
}
