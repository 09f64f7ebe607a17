package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var uninstallYes bool

func newInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Download and install Miniconda if it is not already available",
		Args:  cobra.NoArgs,
		RunE:  runInstall,
	}
}

func newUninstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the installation, its config directory and shell integration",
		Args:  cobra.NoArgs,
		RunE:  runUninstall,
	}
	cmd.Flags().BoolVarP(&uninstallYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func runInstall(cmd *cobra.Command, _ []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	_, err = app.controller(sessionUI(cmd)).Install(commandContext(cmd))
	return err
}

func runUninstall(cmd *cobra.Command, _ []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	return app.controller(sessionUI(cmd)).Uninstall(commandContext(cmd), uninstallYes)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
