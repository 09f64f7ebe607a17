package backend

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ActiveEnvVar records the activated environment in the process env.
const ActiveEnvVar = "CONDA_DEFAULT_ENV"

// Options configures an Adapter. Zero values fall back to conda defaults
// and the real process.
type Options struct {
	Manager          string
	InitMarker       string
	Shell            string
	PrivilegeCommand string
	// InstallDir is used to locate the shell hook when the executable is
	// not resolvable.
	InstallDir string
	Timeout    time.Duration

	Runner     Runner
	Env        Environ
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Result is the captured outcome of a manager command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Adapter wraps the package-manager CLI, the filesystem and the process
// environment behind one narrow surface.
type Adapter struct {
	manager    string
	marker     string
	shell      string
	privilege  string
	installDir string
	timeout    time.Duration

	runner Runner
	env    Environ
	client *http.Client
	log    *zap.Logger
}

func New(opts Options) *Adapter {
	a := &Adapter{
		manager:    opts.Manager,
		marker:     opts.InitMarker,
		shell:      opts.Shell,
		privilege:  opts.PrivilegeCommand,
		installDir: opts.InstallDir,
		timeout:    opts.Timeout,
		runner:     opts.Runner,
		env:        opts.Env,
		client:     opts.HTTPClient,
		log:        opts.Logger,
	}
	if a.manager == "" {
		a.manager = "conda"
	}
	if a.marker == "" {
		a.marker = "CONDA_EXE"
	}
	if a.shell == "" {
		a.shell = "bash"
	}
	if a.runner == nil {
		a.runner = CmdRunner{}
	}
	if a.env == nil {
		a.env = OSEnv{}
	}
	if a.client == nil {
		a.client = http.DefaultClient
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	return a
}

// LookupExecutable resolves the manager against the adapter's PATH.
func (a *Adapter) LookupExecutable() (string, bool) {
	if strings.ContainsRune(a.manager, filepath.Separator) {
		return a.manager, isExecutable(a.manager)
	}
	for _, dir := range filepath.SplitList(a.env.Getenv("PATH")) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, a.manager)
		if isExecutable(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func (a *Adapter) IsExecutableAvailable() bool {
	_, ok := a.LookupExecutable()
	return ok
}

// InitMarkerPresent reports whether the shell-initialization marker is set.
func (a *Adapter) InitMarkerPresent() bool {
	return strings.TrimSpace(a.env.Getenv(a.marker)) != ""
}

// RunManagerCommand runs the manager with args and captures its output.
func (a *Adapter) RunManagerCommand(ctx context.Context, args ...string) (Result, error) {
	exe, ok := a.LookupExecutable()
	if !ok {
		return Result{ExitCode: -1}, &Error{Op: "run " + a.manager, Err: ErrNotFound}
	}
	return a.run(ctx, "run "+a.manager, exe, args)
}

// RunPrivileged runs the manager through the configured privilege command.
func (a *Adapter) RunPrivileged(ctx context.Context, args ...string) (Result, error) {
	exe, ok := a.LookupExecutable()
	if !ok {
		return Result{ExitCode: -1}, &Error{Op: "run privileged " + a.manager, Err: ErrNotFound}
	}
	if a.privilege == "" {
		return a.run(ctx, "run privileged "+a.manager, exe, args)
	}
	return a.run(ctx, "run privileged "+a.manager, a.privilege, append([]string{exe}, args...))
}

// RunInstallerScript runs the installer in batch mode against targetDir.
// An existing targetDir is updated in place.
func (a *Adapter) RunInstallerScript(ctx context.Context, script, targetDir string) error {
	args := []string{script, "-b", "-p", targetDir}
	if info, err := os.Stat(targetDir); err == nil && info.IsDir() {
		args = append(args, "-u")
	}
	_, err := a.run(ctx, "run installer", "bash", args)
	return err
}

// RemoveDirectory deletes path recursively. A missing path is not an error.
func (a *Adapter) RemoveDirectory(path string) error {
	if err := checkRemovable(path); err != nil {
		return &Error{Op: "remove directory", Detail: path, Err: err}
	}
	if err := os.RemoveAll(path); err != nil {
		return &Error{Op: "remove directory", Detail: path, Err: err}
	}
	a.log.Info("removed directory", zap.String("path", path))
	return nil
}

// RemoveFile deletes a single file. A missing file is not an error.
func (a *Adapter) RemoveFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &Error{Op: "remove file", Detail: path, Err: err}
	}
	return nil
}

// PrependPath puts dir at the front of PATH, dropping any later duplicate.
func (a *Adapter) PrependPath(dir string) error {
	entries := withoutEntry(filepath.SplitList(a.env.Getenv("PATH")), dir)
	value := strings.Join(append([]string{dir}, entries...), string(os.PathListSeparator))
	if err := a.env.Setenv("PATH", value); err != nil {
		return &Error{Op: "update PATH", Detail: dir, Err: err}
	}
	a.log.Debug("prepended PATH entry", zap.String("dir", dir))
	return nil
}

// RemovePath drops every occurrence of dir from PATH.
func (a *Adapter) RemovePath(dir string) error {
	current := filepath.SplitList(a.env.Getenv("PATH"))
	entries := withoutEntry(current, dir)
	if len(entries) == len(current) {
		return nil
	}
	if err := a.env.Setenv("PATH", strings.Join(entries, string(os.PathListSeparator))); err != nil {
		return &Error{Op: "update PATH", Detail: dir, Err: err}
	}
	a.log.Debug("removed PATH entry", zap.String("dir", dir))
	return nil
}

// ActivateEnvironment runs the activation through the manager's shell hook
// and records the environment in the process env.
func (a *Adapter) ActivateEnvironment(ctx context.Context, name string) error {
	script := `source "$1/etc/profile.d/conda.sh" && conda activate "$2"`
	if _, err := a.run(ctx, "activate "+name, a.shell, []string{"-c", script, "condasetup", a.baseDir(), name}); err != nil {
		return err
	}
	if err := a.env.Setenv(ActiveEnvVar, name); err != nil {
		return &Error{Op: "activate " + name, Err: err}
	}
	return nil
}

// DeactivateEnvironment runs deactivation through the shell hook and clears
// the recorded environment.
func (a *Adapter) DeactivateEnvironment(ctx context.Context) error {
	script := `source "$1/etc/profile.d/conda.sh" && conda deactivate`
	if _, err := a.run(ctx, "deactivate", a.shell, []string{"-c", script, "condasetup", a.baseDir()}); err != nil {
		return err
	}
	if err := a.env.Unsetenv(ActiveEnvVar); err != nil {
		return &Error{Op: "deactivate", Err: err}
	}
	return nil
}

// ReloadShell sources rcFile in a fresh shell so syntax errors surface.
func (a *Adapter) ReloadShell(ctx context.Context, rcFile string) error {
	_, err := a.run(ctx, "reload shell", a.shell, []string{"-c", `source "$1"`, "condasetup", rcFile})
	return err
}

func (a *Adapter) run(ctx context.Context, op, command string, args []string) (Result, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	a.log.Debug("exec", zap.String("command", command), zap.Strings("args", args))
	res, err := a.runner.Run(ctx, command, args, RunOptions{Env: a.env.Environ()})
	result := Result{Stdout: string(res.Stdout), Stderr: string(res.Stderr), ExitCode: res.ExitCode}
	if err != nil {
		if result.ExitCode == 0 {
			result.ExitCode = -1
		}
		a.log.Warn("command failed",
			zap.String("command", command),
			zap.Int("exit_code", result.ExitCode),
			zap.String("stderr", strings.TrimSpace(result.Stderr)),
			zap.Error(err))
		return result, &Error{Op: op, Detail: stderrExcerpt(result.Stderr), Err: err}
	}
	return result, nil
}

func (a *Adapter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout > 0 {
		return context.WithTimeout(ctx, a.timeout)
	}
	return context.WithCancel(ctx)
}

func (a *Adapter) baseDir() string {
	if exe, ok := a.LookupExecutable(); ok {
		return filepath.Dir(filepath.Dir(exe))
	}
	return a.installDir
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}

func withoutEntry(entries []string, dir string) []string {
	clean := filepath.Clean(dir)
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e == "" || filepath.Clean(e) == clean {
			continue
		}
		out = append(out, e)
	}
	return out
}

func checkRemovable(path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrUnsafePath
	}
	clean := filepath.Clean(path)
	if clean == string(filepath.Separator) || clean == "." {
		return ErrUnsafePath
	}
	if home, err := os.UserHomeDir(); err == nil && clean == filepath.Clean(home) {
		return ErrUnsafePath
	}
	return nil
}

func stderrExcerpt(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	if len(lines) > 3 {
		lines = lines[len(lines)-3:]
	}
	return strings.TrimSpace(strings.Join(lines, " "))
}
