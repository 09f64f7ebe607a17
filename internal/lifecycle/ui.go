package lifecycle

// Level grades a user-facing notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarn
	LevelError
)

// MenuItem is one numbered choice.
type MenuItem struct {
	Key   string
	Label string
}

// UI is the interactive surface the controller drives. Menu returns the raw
// answer (usually an item key, but free text is allowed so environments can
// be picked by name).
type UI interface {
	Menu(title string, items []MenuItem) (string, error)
	Prompt(label string) (string, error)
	Confirm(question string) (bool, error)
	Notify(level Level, msg string)
	// Progress shows an indicator until the returned func is called.
	Progress(msg string) func()
}
