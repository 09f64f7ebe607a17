package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"condasetup/internal/config"
)

// HomeEnv relocates the per-user condasetup directory when set.
const HomeEnv = "CONDASETUP_HOME"

// Layout captures the canonical filesystem locations used by a session.
type Layout struct {
	AppDir        string
	ConfigFile    string
	LogsDir       string
	DownloadsDir  string
	InstallerFile string
	InstallDir    string
	BinDir        string
	ConfigDir     string
	RCFiles       []string
}

// AppDir returns the per-user condasetup directory (~/.condasetup unless
// CONDASETUP_HOME overrides it). The directory is not created.
func AppDir() (string, error) {
	if override, ok := os.LookupEnv(HomeEnv); ok && override != "" {
		abs, err := filepath.Abs(override)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", HomeEnv, err)
		}
		return abs, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("detect user home: %w", err)
	}
	return filepath.Join(home, ".condasetup"), nil
}

// DefaultConfigFile returns the config path used when --config is empty.
func DefaultConfigFile() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Resolve expands every configured location into an absolute Layout.
func Resolve(cfg config.Config) (Layout, error) {
	appDir, err := AppDir()
	if err != nil {
		return Layout{}, err
	}
	installDir, err := Expand(cfg.InstallDir)
	if err != nil {
		return Layout{}, fmt.Errorf("install_dir: %w", err)
	}
	configDir, err := Expand(cfg.ConfigDir)
	if err != nil {
		return Layout{}, fmt.Errorf("config_dir: %w", err)
	}

	rcFiles := make([]string, 0, len(cfg.RCFiles))
	for _, rc := range cfg.RCFiles {
		expanded, err := Expand(rc)
		if err != nil {
			return Layout{}, fmt.Errorf("rc_files: %w", err)
		}
		rcFiles = append(rcFiles, expanded)
	}

	downloads := filepath.Join(appDir, "downloads")
	return Layout{
		AppDir:        appDir,
		ConfigFile:    filepath.Join(appDir, "config.yaml"),
		LogsDir:       filepath.Join(appDir, "logs"),
		DownloadsDir:  downloads,
		InstallerFile: filepath.Join(downloads, cfg.Installer.FileName),
		InstallDir:    installDir,
		BinDir:        filepath.Join(installDir, "bin"),
		ConfigDir:     configDir,
		RCFiles:       rcFiles,
	}, nil
}

// Expand resolves a leading "~" against the user's home directory and makes
// the result absolute.
func Expand(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("empty path")
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("detect user home: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return abs, nil
}

// EnsureAppDirs creates the app, logs and downloads directories.
func (l Layout) EnsureAppDirs() error {
	for _, dir := range []string{l.AppDir, l.LogsDir, l.DownloadsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
