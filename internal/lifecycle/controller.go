package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"condasetup/internal/backend"
	"condasetup/internal/envs"
	"condasetup/internal/probe"
	"condasetup/internal/session"
)

// Backend is everything the controller needs from the package manager,
// the filesystem and the process environment.
type Backend interface {
	LookupExecutable() (string, bool)
	IsExecutableAvailable() bool
	InitMarkerPresent() bool
	RunManagerCommand(ctx context.Context, args ...string) (backend.Result, error)
	RunPrivileged(ctx context.Context, args ...string) (backend.Result, error)
	DownloadInstaller(ctx context.Context, url, dest, checksum string) error
	RunInstallerScript(ctx context.Context, script, targetDir string) error
	RemoveDirectory(path string) error
	RemoveFile(path string) error
	EditShellRcFile(path string, block backend.MarkerBlock) (bool, error)
	PrependPath(dir string) error
	RemovePath(dir string) error
	ActivateEnvironment(ctx context.Context, name string) error
	DeactivateEnvironment(ctx context.Context) error
	ReloadShell(ctx context.Context, rcFile string) error
}

// Settings are the resolved locations and names a session works with.
type Settings struct {
	Manager         string
	Shell           string
	InitMarker      string
	DefaultEnv      string
	InstallerURL    string
	InstallerSHA256 string
	InstallerFile   string
	InstallDir      string
	ConfigDir       string
	RCFiles         []string
	Block           backend.MarkerBlock
	Dev             bool
}

func (s Settings) binDir() string {
	return filepath.Join(s.InstallDir, "bin")
}

// Controller sequences every menu operation for one session.
type Controller struct {
	backend  Backend
	ui       UI
	settings Settings
	log      *zap.Logger

	prober   *probe.Prober
	registry *envs.Registry
	tracker  *session.Tracker
	state    State
}

func New(b Backend, ui UI, settings Settings, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.Manager == "" {
		settings.Manager = "conda"
	}
	if settings.Shell == "" {
		settings.Shell = "bash"
	}
	if settings.DefaultEnv == "" {
		settings.DefaultEnv = "base"
	}
	return &Controller{
		backend:  b,
		ui:       ui,
		settings: settings,
		log:      logger,
		prober:   probe.New(b),
		registry: envs.NewRegistry(b, logger),
		tracker:  session.NewTracker(b, logger),
	}
}

func (c *Controller) Tracker() *session.Tracker { return c.tracker }

// State returns the last state the controller entered.
func (c *Controller) State() State { return c.state }

// Run drives the state machine until the session ends. A nil return means
// exit status 0; every other outcome is an *ExitError.
func (c *Controller) Run(ctx context.Context) error {
	c.state = Start
	for {
		if c.state == Exiting {
			c.log.Info("session finished")
			return nil
		}
		next, err := c.step(ctx, c.state)
		if err != nil {
			var exitErr *ExitError
			if !errors.As(err, &exitErr) {
				err = exitWith(1, err)
			}
			c.log.Info("session ended", zap.Stringer("state", c.state), zap.Error(err))
			return err
		}
		if next != c.state {
			c.log.Debug("transition", zap.Stringer("from", c.state), zap.Stringer("to", next))
		}
		c.state = next
	}
}

func (c *Controller) step(ctx context.Context, state State) (State, error) {
	switch state {
	case Start:
		return CheckInitialized, nil
	case CheckInitialized:
		return c.checkInitialized()
	case CheckInstalled:
		return c.checkInstalled(ctx)
	case MenuReady:
		return c.menu()
	case Using:
		return c.use(ctx)
	case Creating:
		return c.create(ctx)
	case Reinstalling:
		return c.reinstall(ctx)
	case Uninstalling:
		return c.uninstall(ctx, false)
	case Switching:
		return c.switchEnv(ctx)
	case Destroying:
		return c.destroy(ctx)
	}
	return Exiting, fmt.Errorf("unexpected state %s", state)
}

func (c *Controller) checkInitialized() (State, error) {
	if c.prober.Initialized() {
		return CheckInstalled, nil
	}
	c.ui.Notify(LevelError, fmt.Sprintf(
		"%s is not initialized in this shell (%s is not set).\n"+
			"If it is installed, run `%s init %s` and open a new shell.\n"+
			"Otherwise install it first with `condasetup install`.",
		c.settings.Manager, c.markerName(), c.settings.Manager, c.settings.Shell))
	return Exiting, exitWith(1, ErrPrerequisiteNotMet)
}

func (c *Controller) checkInstalled(ctx context.Context) (State, error) {
	state := c.prober.Probe()
	c.log.Info("probed installation", zap.Stringer("state", state))
	if state != probe.NotInstalled {
		return MenuReady, nil
	}

	ok, err := c.ui.Confirm(fmt.Sprintf("%s was not found. Install Miniconda into %s?", c.settings.Manager, c.settings.InstallDir))
	if err != nil {
		return Exiting, err
	}
	if !ok {
		c.ui.Notify(LevelWarn, "Installation declined.")
		return Exiting, exitWith(1, ErrDeclined)
	}
	if _, err := c.Install(ctx); err != nil {
		c.reportBackend(err)
		return Exiting, exitWith(1, err)
	}
	return MenuReady, nil
}

func (c *Controller) menu() (State, error) {
	choice, err := c.ui.Menu("What would you like to do?", mainMenu(c.settings.Dev))
	if err != nil {
		return Exiting, err
	}
	choice = strings.TrimSpace(choice)
	next, ok := menuTransitions[choice]
	if !ok || (next == Destroying && !c.settings.Dev) {
		c.ui.Notify(LevelWarn, fmt.Sprintf("Invalid choice %q.", choice))
		return MenuReady, nil
	}
	return next, nil
}

func (c *Controller) use(ctx context.Context) (State, error) {
	if name, ok := c.tracker.Active(); ok {
		yes, err := c.ui.Confirm(fmt.Sprintf("Environment %s is active. Deactivate it first?", name))
		if err != nil {
			return Exiting, err
		}
		if yes {
			c.deactivate(ctx)
		}
	}

	done := c.ui.Progress("Listing environments")
	list, err := c.registry.List(ctx)
	done()
	if err != nil {
		c.reportBackend(err)
		return MenuReady, nil
	}

	selectable := envs.Selectable(list)
	if len(selectable) == 0 {
		return c.createOrExit()
	}

	items := make([]MenuItem, 0, len(selectable)+1)
	for i, rec := range selectable {
		items = append(items, MenuItem{Key: strconv.Itoa(i + 1), Label: rec.Name})
	}
	items = append(items, MenuItem{Key: "0", Label: "Create a new environment"})

	input, err := c.ui.Menu("Select an environment (number or name)", items)
	if err != nil {
		return Exiting, err
	}
	sel, err := envs.Resolve(input, selectable)
	if err != nil {
		c.ui.Notify(LevelWarn, err.Error())
		return MenuReady, nil
	}
	if sel.Create {
		return Creating, nil
	}
	c.activate(ctx, sel.Record.Name)
	return MenuReady, nil
}

func (c *Controller) createOrExit() (State, error) {
	choice, err := c.ui.Menu("No environments found.", []MenuItem{
		{Key: "1", Label: "Create a new environment"},
		{Key: "2", Label: "Exit"},
	})
	if err != nil {
		return Exiting, err
	}
	switch strings.TrimSpace(choice) {
	case "1":
		return Creating, nil
	case "2":
		return Exiting, nil
	}
	c.ui.Notify(LevelWarn, fmt.Sprintf("Invalid choice %q.", choice))
	return MenuReady, nil
}

func (c *Controller) create(ctx context.Context) (State, error) {
	name, err := c.ui.Prompt("Name for the new environment")
	if err != nil {
		return Exiting, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		c.ui.Notify(LevelWarn, "An environment name is required.")
		return MenuReady, nil
	}

	done := c.ui.Progress("Creating environment " + name)
	_, err = c.backend.RunManagerCommand(ctx, "create", "--name", name, "--yes")
	done()
	if err != nil {
		c.reportBackend(err)
		return MenuReady, nil
	}
	c.ui.Notify(LevelSuccess, fmt.Sprintf("Created environment %s.", name))
	c.activate(ctx, name)
	return MenuReady, nil
}

func (c *Controller) reinstall(ctx context.Context) (State, error) {
	if err := c.removeInstallation(); err != nil {
		c.reportBackend(err)
		return Exiting, exitWith(1, err)
	}
	if _, err := c.Install(ctx); err != nil {
		c.reportBackend(err)
		return Exiting, exitWith(1, err)
	}
	c.activate(ctx, c.settings.DefaultEnv)
	c.ui.Notify(LevelSuccess, "Reinstall complete. Open a new shell to use the fresh installation.")
	return Exiting, nil
}

// Uninstall removes the installation without going through the menu. When
// confirmed is false the user is asked first.
func (c *Controller) Uninstall(ctx context.Context, confirmed bool) error {
	_, err := c.uninstall(ctx, confirmed)
	return err
}

func (c *Controller) uninstall(ctx context.Context, confirmed bool) (State, error) {
	if !confirmed {
		ok, err := c.ui.Confirm(fmt.Sprintf(
			"This deletes %s and %s and removes shell integration. Continue?",
			c.settings.InstallDir, c.settings.ConfigDir))
		if err != nil {
			return Exiting, err
		}
		if !ok {
			c.ui.Notify(LevelWarn, "Uninstall cancelled. Nothing was changed.")
			return Exiting, exitWith(1, ErrDeclined)
		}
	}

	if err := c.removeInstallation(); err != nil {
		c.reportBackend(err)
		return Exiting, exitWith(1, err)
	}
	for _, rc := range c.settings.RCFiles {
		changed, err := c.backend.EditShellRcFile(rc, c.settings.Block)
		if err != nil {
			c.reportBackend(err)
			return Exiting, exitWith(1, err)
		}
		if changed {
			c.ui.Notify(LevelInfo, "Removed shell integration from "+rc)
		}
	}
	if len(c.settings.RCFiles) > 0 {
		if err := c.backend.ReloadShell(ctx, c.settings.RCFiles[0]); err != nil {
			c.log.Warn("shell reload failed", zap.Error(err))
		}
	}
	c.ui.Notify(LevelSuccess, "Miniconda has been uninstalled. Open a new shell to finish.")
	return Exiting, nil
}

func (c *Controller) switchEnv(ctx context.Context) (State, error) {
	name, err := c.ui.Prompt("Environment to switch to")
	if err != nil {
		return Exiting, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		c.ui.Notify(LevelWarn, "An environment name is required.")
		return MenuReady, nil
	}
	c.activate(ctx, name)
	return MenuReady, nil
}

func (c *Controller) destroy(ctx context.Context) (State, error) {
	ok, err := c.ui.Confirm("Remove ALL environments with elevated privileges?")
	if err != nil {
		return Exiting, err
	}
	if !ok {
		c.ui.Notify(LevelInfo, "Nothing was removed.")
		return MenuReady, nil
	}

	done := c.ui.Progress("Removing environments")
	_, err = c.backend.RunPrivileged(ctx, "env", "remove", "--all")
	done()
	if err != nil {
		c.reportBackend(err)
		return MenuReady, nil
	}
	if _, ok := c.tracker.Active(); ok {
		c.deactivate(ctx)
	}
	c.ui.Notify(LevelSuccess, "All environments removed.")
	return MenuReady, nil
}

// removeInstallation deletes the install and config directories and drops
// the old bin directory from PATH. Missing directories are fine.
func (c *Controller) removeInstallation() error {
	for _, dir := range []string{c.settings.InstallDir, c.settings.ConfigDir} {
		if err := c.backend.RemoveDirectory(dir); err != nil {
			return err
		}
	}
	return c.backend.RemovePath(c.settings.binDir())
}

func (c *Controller) activate(ctx context.Context, name string) {
	if err := c.tracker.Activate(ctx, name); err != nil {
		c.ui.Notify(LevelWarn, fmt.Sprintf("%s is now the active environment, but shell activation failed: %v", name, err))
		return
	}
	c.ui.Notify(LevelSuccess, fmt.Sprintf("Activated %s.", name))
}

func (c *Controller) deactivate(ctx context.Context) {
	name, _ := c.tracker.Active()
	did, err := c.tracker.Deactivate(ctx)
	switch {
	case !did:
		c.ui.Notify(LevelInfo, "Nothing to deactivate.")
	case err != nil:
		c.ui.Notify(LevelWarn, fmt.Sprintf("Stopped tracking %s, but shell deactivation failed: %v", name, err))
	default:
		c.ui.Notify(LevelSuccess, fmt.Sprintf("Deactivated %s.", name))
	}
}

func (c *Controller) reportBackend(err error) {
	c.log.Error("operation failed", zap.Error(err))
	c.ui.Notify(LevelError, err.Error())
}

func (c *Controller) markerName() string {
	if c.settings.InitMarker == "" {
		return "CONDA_EXE"
	}
	return c.settings.InitMarker
}
