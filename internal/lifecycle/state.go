package lifecycle

// State is a controller state.
type State int

const (
	Start State = iota
	CheckInitialized
	CheckInstalled
	MenuReady
	Using
	Creating
	Reinstalling
	Uninstalling
	Switching
	Destroying
	Exiting
)

var stateNames = map[State]string{
	Start:            "start",
	CheckInitialized: "check-initialized",
	CheckInstalled:   "check-installed",
	MenuReady:        "menu",
	Using:            "using",
	Creating:         "creating",
	Reinstalling:     "reinstalling",
	Uninstalling:     "uninstalling",
	Switching:        "switching",
	Destroying:       "destroying",
	Exiting:          "exiting",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Menu keys for the top-level menu.
const (
	keyUse       = "1"
	keyCreate    = "2"
	keyReinstall = "3"
	keyUninstall = "4"
	keySwitch    = "5"
	keyExit      = "6"
	keyDestroy   = "7"
)

var menuTransitions = map[string]State{
	keyUse:       Using,
	keyCreate:    Creating,
	keyReinstall: Reinstalling,
	keyUninstall: Uninstalling,
	keySwitch:    Switching,
	keyExit:      Exiting,
	keyDestroy:   Destroying,
}

func mainMenu(dev bool) []MenuItem {
	items := []MenuItem{
		{Key: keyUse, Label: "Use an existing environment"},
		{Key: keyCreate, Label: "Create a new environment"},
		{Key: keyReinstall, Label: "Reinstall Miniconda"},
		{Key: keyUninstall, Label: "Uninstall Miniconda"},
		{Key: keySwitch, Label: "Switch environment"},
		{Key: keyExit, Label: "Exit"},
	}
	if dev {
		items = append(items, MenuItem{Key: keyDestroy, Label: "Destroy all environments"})
	}
	return items
}
