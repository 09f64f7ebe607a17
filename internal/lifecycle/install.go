package lifecycle

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"condasetup/internal/backend"
)

// Install makes the manager available and returns its executable path. An
// already resolvable executable short-circuits without downloading.
func (c *Controller) Install(ctx context.Context) (string, error) {
	if exe, ok := c.backend.LookupExecutable(); ok {
		c.log.Info("install skipped", zap.String("executable", exe))
		c.ui.Notify(LevelInfo, fmt.Sprintf("%s is already installed at %s.", c.settings.Manager, exe))
		return exe, nil
	}

	s := c.settings
	done := c.ui.Progress("Downloading installer")
	err := c.backend.DownloadInstaller(ctx, s.InstallerURL, s.InstallerFile, s.InstallerSHA256)
	done()
	if err != nil {
		return "", err
	}

	done = c.ui.Progress("Installing Miniconda into " + s.InstallDir)
	err = c.backend.RunInstallerScript(ctx, s.InstallerFile, s.InstallDir)
	done()
	if err != nil {
		if rmErr := c.backend.RemoveFile(s.InstallerFile); rmErr != nil {
			c.log.Warn("installer cleanup failed", zap.Error(rmErr))
		}
		return "", err
	}
	if err := c.backend.RemoveFile(s.InstallerFile); err != nil {
		return "", err
	}

	if err := c.backend.PrependPath(s.binDir()); err != nil {
		return "", err
	}
	exe, ok := c.backend.LookupExecutable()
	if !ok {
		return "", &backend.Error{Op: "install", Detail: "no " + s.Manager + " executable in " + s.binDir(), Err: backend.ErrNotFound}
	}

	done = c.ui.Progress(fmt.Sprintf("Running %s init %s", s.Manager, s.Shell))
	_, err = c.backend.RunManagerCommand(ctx, "init", s.Shell)
	done()
	if err != nil {
		return "", err
	}

	c.log.Info("installed", zap.String("executable", exe), zap.String("dir", s.InstallDir))
	c.ui.Notify(LevelSuccess, fmt.Sprintf("Installed %s at %s.", s.Manager, exe))
	return exe, nil
}
