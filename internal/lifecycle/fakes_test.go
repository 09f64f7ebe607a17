package lifecycle

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"condasetup/internal/backend"
)

// fakeBackend simulates a conda installation in memory. Install state flips
// when the installer runs and its bin directory lands on PATH.
type fakeBackend struct {
	installed bool
	onDisk    bool
	exe       string
	marker    bool
	envOutput string
	rcChanged map[string]bool

	errs  map[string]error
	calls []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		installed: true,
		onDisk:    true,
		exe:       "/home/u/miniconda/bin/conda",
		marker:    true,
		envOutput: "base * /home/u/miniconda\nml /home/u/miniconda/envs/ml\nweb /home/u/miniconda/envs/web\n",
		errs:      map[string]error{},
	}
}

func (f *fakeBackend) record(op string) error {
	f.calls = append(f.calls, op)
	name := op
	if i := strings.IndexByte(op, ' '); i > 0 {
		name = op[:i]
	}
	if err, ok := f.errs[op]; ok {
		return err
	}
	return f.errs[name]
}

func (f *fakeBackend) count(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (f *fakeBackend) LookupExecutable() (string, bool) {
	if !f.installed {
		return "", false
	}
	return f.exe, true
}

func (f *fakeBackend) IsExecutableAvailable() bool { return f.installed }
func (f *fakeBackend) InitMarkerPresent() bool { return f.marker }

func (f *fakeBackend) RunManagerCommand(_ context.Context, args ...string) (backend.Result, error) {
	op := "conda " + strings.Join(args, " ")
	if err := f.record(op); err != nil {
		return backend.Result{ExitCode: 1}, err
	}
	if len(args) > 0 && args[0] == "info" {
		return backend.Result{Stdout: f.envOutput}, nil
	}
	return backend.Result{}, nil
}

func (f *fakeBackend) RunPrivileged(_ context.Context, args ...string) (backend.Result, error) {
	if err := f.record("sudo conda " + strings.Join(args, " ")); err != nil {
		return backend.Result{ExitCode: 1}, err
	}
	return backend.Result{}, nil
}

func (f *fakeBackend) DownloadInstaller(_ context.Context, url, dest, _ string) error {
	return f.record("download " + url + " " + dest)
}

func (f *fakeBackend) RunInstallerScript(_ context.Context, script, target string) error {
	if err := f.record("installer " + script + " " + target); err != nil {
		return err
	}
	f.onDisk = true
	f.exe = filepath.Join(target, "bin", "conda")
	return nil
}

func (f *fakeBackend) RemoveDirectory(path string) error {
	if err := f.record("rmdir " + path); err != nil {
		return err
	}
	if strings.HasSuffix(path, "miniconda") {
		f.onDisk = false
		f.installed = false
	}
	return nil
}

func (f *fakeBackend) RemoveFile(path string) error {
	return f.record("rm " + path)
}

func (f *fakeBackend) EditShellRcFile(path string, _ backend.MarkerBlock) (bool, error) {
	if err := f.record("edit " + path); err != nil {
		return false, err
	}
	return f.rcChanged[path], nil
}

func (f *fakeBackend) PrependPath(dir string) error {
	if err := f.record("path+ " + dir); err != nil {
		return err
	}
	if f.onDisk {
		f.installed = true
	}
	return nil
}

func (f *fakeBackend) RemovePath(dir string) error {
	if err := f.record("path- " + dir); err != nil {
		return err
	}
	f.installed = false
	return nil
}

func (f *fakeBackend) ActivateEnvironment(_ context.Context, name string) error {
	return f.record("activate " + name)
}

func (f *fakeBackend) DeactivateEnvironment(context.Context) error {
	return f.record("deactivate")
}

func (f *fakeBackend) ReloadShell(_ context.Context, rc string) error {
	return f.record("reload " + rc)
}

var _ Backend = (*fakeBackend)(nil)

type notice struct {
	Level Level
	Msg   string
}

// scriptedUI answers prompts from a fixed queue and fails the test when the
// queue runs dry.
type scriptedUI struct {
	t       *testing.T
	answers []string
	menus   [][]MenuItem
	notices []notice
}

func newScriptedUI(t *testing.T, answers ...string) *scriptedUI {
	return &scriptedUI{t: t, answers: answers}
}

func (u *scriptedUI) next(kind, label string) (string, error) {
	if len(u.answers) == 0 {
		u.t.Fatalf("unexpected %s %q with no scripted answer left", kind, label)
		return "", fmt.Errorf("no answer")
	}
	a := u.answers[0]
	u.answers = u.answers[1:]
	return a, nil
}

func (u *scriptedUI) Menu(title string, items []MenuItem) (string, error) {
	u.menus = append(u.menus, items)
	return u.next("menu", title)
}

func (u *scriptedUI) Prompt(label string) (string, error) {
	return u.next("prompt", label)
}

func (u *scriptedUI) Confirm(question string) (bool, error) {
	a, err := u.next("confirm", question)
	return a == "y", err
}

func (u *scriptedUI) Notify(level Level, msg string) {
	u.notices = append(u.notices, notice{Level: level, Msg: msg})
}

func (u *scriptedUI) Progress(string) func() { return func() {} }

func (u *scriptedUI) hasNotice(level Level, substr string) bool {
	for _, n := range u.notices {
		if n.Level == level && strings.Contains(n.Msg, substr) {
			return true
		}
	}
	return false
}

func testSettings() Settings {
	return Settings{
		Manager:       "conda",
		Shell:         "bash",
		InitMarker:    "CONDA_EXE",
		DefaultEnv:    "base",
		InstallerURL:  "https://repo.anaconda.com/miniconda/Miniconda3-latest-Linux-x86_64.sh",
		InstallerFile: "/home/u/.condasetup/downloads/Miniconda3-latest-Linux-x86_64.sh",
		InstallDir:    "/home/u/miniconda",
		ConfigDir:     "/home/u/.conda",
		RCFiles:       []string{"/home/u/.bashrc", "/home/u/.bash_profile"},
		Block: backend.MarkerBlock{
			Begin: "# >>> conda initialize >>>",
			End:   "# <<< conda initialize <<<",
		},
	}
}
