package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBlockBegin = "# >>> conda initialize >>>"
	DefaultBlockEnd   = "# <<< conda initialize <<<"

	installerBaseURL = "https://repo.anaconda.com/miniconda/"
)

// Config captures the settings that drive a condasetup session.
type Config struct {
	Version          int             `yaml:"version" toml:"version"`
	Manager          string          `yaml:"manager" toml:"manager"`
	Shell            string          `yaml:"shell" toml:"shell"`
	InitMarker       string          `yaml:"init_marker" toml:"init_marker"`
	DefaultEnv       string          `yaml:"default_env" toml:"default_env"`
	Installer        InstallerConfig `yaml:"installer" toml:"installer"`
	InstallDir       string          `yaml:"install_dir" toml:"install_dir"`
	ConfigDir        string          `yaml:"config_dir" toml:"config_dir"`
	RCFiles          []string        `yaml:"rc_files" toml:"rc_files"`
	RCBlock          RCBlockConfig   `yaml:"rc_block" toml:"rc_block"`
	PrivilegeCommand string          `yaml:"privilege_command" toml:"privilege_command"`
	CommandTimeout   string          `yaml:"command_timeout,omitempty" toml:"command_timeout,omitempty"`
	Logging          LoggingConfig   `yaml:"logging" toml:"logging"`
}

// InstallerConfig describes where the manager installer comes from.
type InstallerConfig struct {
	URL      string `yaml:"url" toml:"url"`
	SHA256   string `yaml:"sha256,omitempty" toml:"sha256,omitempty"`
	FileName string `yaml:"file_name" toml:"file_name"`
}

// RCBlockConfig holds the sentinel lines the manager writes into shell rc files.
type RCBlockConfig struct {
	Begin string `yaml:"begin" toml:"begin"`
	End   string `yaml:"end" toml:"end"`
}

type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"`
}

// Default returns the baseline configuration for the current platform.
func Default() Config {
	url := DefaultInstallerURL(runtime.GOOS, runtime.GOARCH)
	return Config{
		Version:    1,
		Manager:    "conda",
		Shell:      "bash",
		InitMarker: "CONDA_EXE",
		DefaultEnv: "base",
		Installer: InstallerConfig{
			URL:      url,
			FileName: url[strings.LastIndex(url, "/")+1:],
		},
		InstallDir: "~/miniconda",
		ConfigDir:  "~/.conda",
		RCFiles:    []string{"~/.bashrc", "~/.bash_profile"},
		RCBlock: RCBlockConfig{
			Begin: DefaultBlockBegin,
			End:   DefaultBlockEnd,
		},
		PrivilegeCommand: "sudo",
		Logging:          LoggingConfig{Level: "info"},
	}
}

// DefaultInstallerURL returns the "latest" Miniconda installer for a platform.
func DefaultInstallerURL(goos, goarch string) string {
	osName := "Linux"
	if goos == "darwin" {
		osName = "MacOSX"
	}
	arch := "x86_64"
	switch goarch {
	case "arm64":
		if goos == "darwin" {
			arch = "arm64"
		} else {
			arch = "aarch64"
		}
	case "ppc64le":
		arch = "ppc64le"
	case "s390x":
		arch = "s390x"
	}
	return fmt.Sprintf("%sMiniconda3-latest-%s-%s.sh", installerBaseURL, osName, arch)
}

// Load reads the configuration from disk if it exists, otherwise returns the
// default configuration. Files ending in .toml are decoded as TOML, anything
// else as YAML.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if isTOML(path) {
		err = toml.Unmarshal(contents, &cfg)
	} else {
		err = yaml.Unmarshal(contents, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func Save(path string, cfg Config) error {
	var (
		buf []byte
		err error
	)
	if isTOML(path) {
		buf, err = cfg.MarshalTOML()
	} else {
		buf, err = cfg.Marshal()
	}
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ApplyDefaults ensures fields fall back to sensible defaults when the file
// omits them.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if strings.TrimSpace(c.Manager) == "" {
		c.Manager = defaults.Manager
	}
	if strings.TrimSpace(c.Shell) == "" {
		c.Shell = defaults.Shell
	}
	if strings.TrimSpace(c.InitMarker) == "" {
		c.InitMarker = defaults.InitMarker
	}
	if strings.TrimSpace(c.DefaultEnv) == "" {
		c.DefaultEnv = defaults.DefaultEnv
	}
	if strings.TrimSpace(c.Installer.URL) == "" {
		c.Installer.URL = defaults.Installer.URL
	}
	if strings.TrimSpace(c.Installer.FileName) == "" {
		name := c.Installer.URL[strings.LastIndex(c.Installer.URL, "/")+1:]
		if name == "" {
			name = defaults.Installer.FileName
		}
		c.Installer.FileName = name
	}
	if strings.TrimSpace(c.InstallDir) == "" {
		c.InstallDir = defaults.InstallDir
	}
	if strings.TrimSpace(c.ConfigDir) == "" {
		c.ConfigDir = defaults.ConfigDir
	}
	if c.RCFiles == nil {
		c.RCFiles = defaults.RCFiles
	}
	if c.RCBlock.Begin == "" {
		c.RCBlock.Begin = defaults.RCBlock.Begin
	}
	if c.RCBlock.End == "" {
		c.RCBlock.End = defaults.RCBlock.End
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
}

// Timeout returns the per-command timeout. Zero means unbounded.
func (c Config) Timeout() (time.Duration, error) {
	raw := strings.TrimSpace(c.CommandTimeout)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("command_timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("command_timeout: must not be negative")
	}
	return d, nil
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}

// MarshalTOML returns the TOML encoding of the configuration.
func (c Config) MarshalTOML() ([]byte, error) {
	buf, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
