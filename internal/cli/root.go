package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"condasetup/internal/lifecycle"
	"condasetup/internal/tui"
)

var (
	configPath  string
	outputJSON  bool
	verbose     bool
	plainOutput bool
	devMode     bool
)

type exitCoder interface {
	ExitCode() int
}

// Execute runs the root cobra command and returns the process exit code.
func Execute() int {
	return exitCode(os.Stderr, newRootCmd().Execute())
}

// exitCode maps a command error onto a process exit code. Errors carrying
// their own code were already reported to the user by the session.
func exitCode(stderr io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var coder exitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	return 1
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "condasetup",
		Short:         "Install, use and remove a Miniconda installation",
		Long:          "Without a subcommand condasetup opens the interactive menu for managing\nthe conda installation and its environments.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runSession,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (.yaml or .toml)")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Write debug entries to the session log")
	cmd.PersistentFlags().BoolVar(&plainOutput, "plain", false, "Use plain line prompts instead of the full-screen UI")
	cmd.PersistentFlags().BoolVar(&devMode, "dev", false, "Enable developer menu entries")

	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newEnvsCmd())
	cmd.AddCommand(newInstallCmd())
	cmd.AddCommand(newUninstallCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

func runSession(cmd *cobra.Command, _ []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	return app.controller(sessionUI(cmd)).Run(commandContext(cmd))
}

func sessionUI(cmd *cobra.Command) lifecycle.UI {
	out := cmd.OutOrStdout()
	return tui.New(tui.DetectMode(out, plainOutput, outputJSON), cmd.InOrStdin(), out)
}
