package cli

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"condasetup/internal/backend"
	"condasetup/internal/config"
	"condasetup/internal/lifecycle"
	"condasetup/internal/logx"
	"condasetup/internal/paths"
)

// Hooks replaced by tests so commands never touch the real process
// environment or spawn real subprocesses.
var (
	newEnviron = func() backend.Environ { return backend.OSEnv{} }
	newRunner  = func() backend.Runner { return backend.CmdRunner{} }
)

// app bundles everything a command needs after config has been resolved.
type app struct {
	cfg     config.Config
	layout  paths.Layout
	log     *zap.Logger
	logs    io.Closer
	env     backend.Environ
	adapter *backend.Adapter
}

func resolveConfigPath() (string, error) {
	if strings.TrimSpace(configPath) != "" {
		return paths.Expand(configPath)
	}
	return paths.DefaultConfigFile()
}

func loadConfig() (config.Config, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(path)
}

// openApp loads config, prepares the app directories and the session log,
// and builds the backend adapter.
func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := checkConfig(cfg); err != nil {
		return nil, err
	}

	layout, err := paths.Resolve(cfg)
	if err != nil {
		return nil, err
	}
	if err := layout.EnsureAppDirs(); err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	logger, logs, err := logx.New(layout.LogsDir, level)
	if err != nil {
		return nil, err
	}

	timeout, err := cfg.Timeout()
	if err != nil {
		logs.Close()
		return nil, err
	}

	for _, r := range cfg.Validate() {
		if r.Level == "warning" {
			logger.Warn("config warning", zap.String("message", r.Message))
		}
	}

	env := newEnviron()
	adapter := backend.New(backend.Options{
		Manager:          cfg.Manager,
		InitMarker:       cfg.InitMarker,
		Shell:            cfg.Shell,
		PrivilegeCommand: cfg.PrivilegeCommand,
		InstallDir:       layout.InstallDir,
		Timeout:          timeout,
		Runner:           newRunner(),
		Env:              env,
		Logger:           logger,
	})
	logger.Debug("session opened",
		zap.String("config", configPath),
		zap.String("install_dir", layout.InstallDir),
		zap.Bool("dev", devMode))

	return &app{cfg: cfg, layout: layout, log: logger, logs: logs, env: env, adapter: adapter}, nil
}

func (a *app) Close() {
	if a.logs != nil {
		a.logs.Close()
	}
}

func (a *app) settings() lifecycle.Settings {
	return lifecycle.Settings{
		Manager:         a.cfg.Manager,
		Shell:           a.cfg.Shell,
		InitMarker:      a.cfg.InitMarker,
		DefaultEnv:      a.cfg.DefaultEnv,
		InstallerURL:    a.cfg.Installer.URL,
		InstallerSHA256: a.cfg.Installer.SHA256,
		InstallerFile:   a.layout.InstallerFile,
		InstallDir:      a.layout.InstallDir,
		ConfigDir:       a.layout.ConfigDir,
		RCFiles:         a.layout.RCFiles,
		Block:           backend.MarkerBlock{Begin: a.cfg.RCBlock.Begin, End: a.cfg.RCBlock.End},
		Dev:             devMode,
	}
}

func (a *app) controller(ui lifecycle.UI) *lifecycle.Controller {
	return lifecycle.New(a.adapter, ui, a.settings(), a.log)
}

// checkConfig rejects configs with error-level validation findings.
func checkConfig(cfg config.Config) error {
	results := cfg.Validate()
	if !config.HasErrors(results) {
		return nil
	}
	var msgs []string
	for _, r := range results {
		if r.Level == "error" {
			msgs = append(msgs, r.Message)
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
