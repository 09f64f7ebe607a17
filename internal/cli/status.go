package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"condasetup/internal/backend"
	"condasetup/internal/probe"
	"condasetup/internal/tui"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the installation state and resolved locations",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
}

type statusReport struct {
	State       probe.State `json:"state"`
	Executable  string      `json:"executable,omitempty"`
	Initialized bool        `json:"initialized"`
	ActiveEnv   string      `json:"active_env,omitempty"`
	InstallDir  string      `json:"install_dir"`
	ConfigDir   string      `json:"config_dir"`
	Installer   string      `json:"installer_url"`
	RCFiles     []string    `json:"rc_files"`
	LogsDir     string      `json:"logs_dir"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	report := buildStatus(app)
	if outputJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encode status json: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	writeStatusTable(cmd, report)
	return nil
}

func buildStatus(a *app) statusReport {
	exe, _ := a.adapter.LookupExecutable()
	return statusReport{
		State:       probe.New(a.adapter).Probe(),
		Executable:  exe,
		Initialized: a.adapter.InitMarkerPresent(),
		ActiveEnv:   a.env.Getenv(backend.ActiveEnvVar),
		InstallDir:  a.layout.InstallDir,
		ConfigDir:   a.layout.ConfigDir,
		Installer:   a.cfg.Installer.URL,
		RCFiles:     a.layout.RCFiles,
		LogsDir:     a.layout.LogsDir,
	}
}

func writeStatusTable(cmd *cobra.Command, r statusReport) {
	out := cmd.OutOrStdout()
	bold := lipgloss.NewStyle().Bold(true).Inline(true)
	fmt.Fprintln(out, bold.Render("STATE:")+" "+tui.StatusStyle(r.State.String()).Inline(true).Render(r.State.String()))

	w := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintf(w, "executable\t%s\n", nonEmptyOrDash(r.Executable))
	fmt.Fprintf(w, "initialized\t%t\n", r.Initialized)
	fmt.Fprintf(w, "active env\t%s\n", nonEmptyOrDash(r.ActiveEnv))
	fmt.Fprintf(w, "install dir\t%s\n", r.InstallDir)
	fmt.Fprintf(w, "config dir\t%s\n", r.ConfigDir)
	fmt.Fprintf(w, "installer\t%s\n", r.Installer)
	for i, rc := range r.RCFiles {
		label := ""
		if i == 0 {
			label = "rc files"
		}
		fmt.Fprintf(w, "%s\t%s\n", label, rc)
	}
	fmt.Fprintf(w, "logs\t%s\n", r.LogsDir)
	w.Flush()
}
