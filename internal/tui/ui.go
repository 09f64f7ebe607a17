package tui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"

	"condasetup/internal/lifecycle"
)

// ErrAborted is returned when the user cancels a prompt or input ends.
var ErrAborted = errors.New("input aborted")

// New returns the UI for the given mode. JSON mode has no interactive
// surface of its own and falls back to plain lines. Plain lines on a
// terminal still animate progress.
func New(mode OutputMode, in io.Reader, out io.Writer) lifecycle.UI {
	if mode == ModeTUI {
		return NewTeaUI(in, out)
	}
	return NewLineUI(in, out, mode == ModePlain && IsTerminal(out))
}

// TeaUI drives each interaction through a short-lived bubbletea program.
type TeaUI struct {
	in  io.Reader
	out io.Writer
}

func NewTeaUI(in io.Reader, out io.Writer) *TeaUI {
	return &TeaUI{in: in, out: out}
}

func (u *TeaUI) run(model tea.Model) (tea.Model, error) {
	p := tea.NewProgram(model, tea.WithInput(u.in), tea.WithOutput(u.out))
	return p.Run()
}

func (u *TeaUI) Menu(title string, items []lifecycle.MenuItem) (string, error) {
	final, err := u.run(newMenuModel(title, items))
	if err != nil {
		return "", err
	}
	m, ok := final.(menuModel)
	if !ok || m.cancelled {
		return "", ErrAborted
	}
	return m.answer, nil
}

func (u *TeaUI) Prompt(label string) (string, error) {
	final, err := u.run(newPromptModel(label))
	if err != nil {
		return "", err
	}
	m, ok := final.(promptModel)
	if !ok || m.cancelled {
		return "", ErrAborted
	}
	return m.Value(), nil
}

func (u *TeaUI) Confirm(question string) (bool, error) {
	final, err := u.run(newConfirmModel(question))
	if err != nil {
		return false, err
	}
	m, ok := final.(confirmModel)
	if !ok || m.cancelled {
		return false, ErrAborted
	}
	return m.yes, nil
}

func (u *TeaUI) Notify(level lifecycle.Level, msg string) {
	style, ok := levelStyles[level]
	if !ok {
		style = levelStyles[lifecycle.LevelInfo]
	}
	fmt.Fprintln(u.out, style.Render(levelIcons[level]+" "+msg))
}

func (u *TeaUI) Progress(msg string) func() {
	return runSpinner(u.out, msg)
}

var (
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	infoColor    = color.New(color.FgCyan)
	boldColor    = color.New(color.Bold)
)

// LineUI reads answers one line at a time. It works on pipes and dumb
// terminals where bubbletea cannot take over the screen.
type LineUI struct {
	in      *bufio.Reader
	out     io.Writer
	animate bool
}

// NewLineUI builds a line-oriented UI. With animate set, Progress draws an
// in-place status line instead of a single static message.
func NewLineUI(in io.Reader, out io.Writer, animate bool) *LineUI {
	return &LineUI{in: bufio.NewReader(in), out: out, animate: animate}
}

func (u *LineUI) readLine() (string, error) {
	line, err := u.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrAborted
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (u *LineUI) Menu(title string, items []lifecycle.MenuItem) (string, error) {
	fmt.Fprintln(u.out)
	boldColor.Fprintln(u.out, title)
	for _, item := range items {
		fmt.Fprintf(u.out, "  %s. %s\n", item.Key, item.Label)
	}
	fmt.Fprint(u.out, "> ")
	return u.readLine()
}

func (u *LineUI) Prompt(label string) (string, error) {
	fmt.Fprintf(u.out, "%s: ", label)
	return u.readLine()
}

func (u *LineUI) Confirm(question string) (bool, error) {
	fmt.Fprintf(u.out, "%s [y/N]: ", question)
	answer, err := u.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (u *LineUI) Notify(level lifecycle.Level, msg string) {
	switch level {
	case lifecycle.LevelSuccess:
		fmt.Fprintf(u.out, "%s %s\n", successColor.Sprint("✓"), msg)
	case lifecycle.LevelWarn:
		fmt.Fprintf(u.out, "%s %s\n", warnColor.Sprint("⚠"), msg)
	case lifecycle.LevelError:
		fmt.Fprintf(u.out, "%s %s\n", errorColor.Sprint("✗"), msg)
	default:
		fmt.Fprintf(u.out, "%s %s\n", infoColor.Sprint("•"), msg)
	}
}

func (u *LineUI) Progress(msg string) func() {
	if u.animate {
		return StartStatusLine(u.out, msg).Stop
	}
	fmt.Fprintf(u.out, "%s...\n", msg)
	return func() {}
}
