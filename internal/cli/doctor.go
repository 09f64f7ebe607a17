package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"condasetup/internal/backend"
	"condasetup/internal/config"
	"condasetup/internal/paths"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check installation health",
		Args:  cobra.NoArgs,
		RunE:  runDoctor,
	}
}

type healthCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Summary string `json:"summary"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	cfg, cfgErr := loadConfig()
	checks := []healthCheck{checkConfigHealth(cfg, cfgErr)}
	if cfgErr != nil || checks[0].Status == "error" {
		// Nothing else can be resolved without a usable config.
		return writeDoctorResult(cmd, checks)
	}

	app, err := openApp()
	if err != nil {
		checks = append(checks, healthCheck{Name: "Session", Status: "error", Summary: err.Error()})
		return writeDoctorResult(cmd, checks)
	}
	defer app.Close()

	checks = append(checks,
		checkExecutable(app),
		checkShellIntegration(app),
		checkRCFiles(app.layout.RCFiles, backend.MarkerBlock{Begin: cfg.RCBlock.Begin, End: cfg.RCBlock.End}),
		checkInstallerCache(app.layout.InstallerFile),
	)
	return writeDoctorResult(cmd, checks)
}

func checkConfigHealth(cfg config.Config, cfgErr error) healthCheck {
	if cfgErr != nil {
		return healthCheck{Name: "Config", Status: "error", Summary: cfgErr.Error()}
	}

	var warnings, errs []string
	for _, v := range cfg.Validate() {
		switch v.Level {
		case "warning":
			warnings = append(warnings, v.Message)
		case "error":
			errs = append(errs, v.Message)
		}
	}

	summary := fmt.Sprintf("%s via %s", cfg.Manager, cfg.Shell)
	if len(errs) > 0 {
		return healthCheck{Name: "Config", Status: "error", Summary: fmt.Sprintf("%s; %s", summary, strings.Join(errs, "; "))}
	}
	if len(warnings) > 0 {
		return healthCheck{Name: "Config", Status: "warning", Summary: fmt.Sprintf("%s; %d warnings", summary, len(warnings))}
	}
	return healthCheck{Name: "Config", Status: "ok", Summary: summary}
}

func checkExecutable(a *app) healthCheck {
	exe, ok := a.adapter.LookupExecutable()
	if !ok {
		return healthCheck{Name: "Executable", Status: "error", Summary: a.cfg.Manager + " not found on PATH"}
	}
	if !strings.HasPrefix(exe, a.layout.InstallDir+string(filepath.Separator)) {
		return healthCheck{Name: "Executable", Status: "warning", Summary: fmt.Sprintf("%s is outside %s", exe, a.layout.InstallDir)}
	}
	return healthCheck{Name: "Executable", Status: "ok", Summary: exe}
}

func checkShellIntegration(a *app) healthCheck {
	if a.adapter.InitMarkerPresent() {
		return healthCheck{Name: "Shell", Status: "ok", Summary: a.cfg.InitMarker + " is set"}
	}
	return healthCheck{
		Name:    "Shell",
		Status:  "warning",
		Summary: fmt.Sprintf("%s is unset; run %s init %s and open a new shell", a.cfg.InitMarker, a.cfg.Manager, a.cfg.Shell),
	}
}

func checkRCFiles(rcFiles []string, block backend.MarkerBlock) healthCheck {
	var withBlock []string
	for _, rc := range rcFiles {
		data, err := os.ReadFile(rc)
		if err != nil {
			continue
		}
		if _, found := backend.StripBlock(data, block); found {
			withBlock = append(withBlock, filepath.Base(rc))
		}
	}
	if len(withBlock) == 0 {
		return healthCheck{Name: "RC files", Status: "warning", Summary: "no initialization block found"}
	}
	return healthCheck{Name: "RC files", Status: "ok", Summary: "block in " + strings.Join(withBlock, ", ")}
}

func checkInstallerCache(installer string) healthCheck {
	exists, err := paths.FileExists(installer)
	if err != nil {
		return healthCheck{Name: "Downloads", Status: "warning", Summary: err.Error()}
	}
	if exists {
		return healthCheck{Name: "Downloads", Status: "warning", Summary: "leftover installer at " + installer}
	}
	return healthCheck{Name: "Downloads", Status: "ok", Summary: "clean"}
}

func writeDoctorResult(cmd *cobra.Command, checks []healthCheck) error {
	if outputJSON {
		data, err := json.MarshalIndent(checks, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	bold := lipgloss.NewStyle().Bold(true).Inline(true)
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Inline(true)
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Inline(true)
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Inline(true)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, bold.Render("INSTALLATION HEALTH:"))

	for _, c := range checks {
		var statusStr string
		switch c.Status {
		case "ok":
			statusStr = green.Render("OK")
		case "warning":
			statusStr = yellow.Render("WARN")
		case "error":
			statusStr = red.Render("ERROR")
		}
		fmt.Fprintf(out, "  %-12s %s    %s\n", c.Name+":", statusStr, c.Summary)
	}
	return nil
}

func nonEmptyOrDash(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return value
}
