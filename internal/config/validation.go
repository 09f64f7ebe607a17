package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ValidationResult captures a single validation finding.
type ValidationResult struct {
	Level   string `json:"level"` // "error" or "warning"
	Message string `json:"message"`
}

var (
	envVarName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	sha256Hex  = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)
)

var knownLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate runs every check against the config and returns structured results.
func (c Config) Validate() []ValidationResult {
	var results []ValidationResult
	results = append(results, c.validateInstaller()...)
	results = append(results, c.validateLocations()...)
	results = append(results, c.validateShell()...)
	results = append(results, c.validateMisc()...)
	return results
}

// HasErrors reports whether any result is at error level.
func HasErrors(results []ValidationResult) bool {
	for _, r := range results {
		if r.Level == "error" {
			return true
		}
	}
	return false
}

func (c Config) validateInstaller() []ValidationResult {
	var results []ValidationResult
	u, err := url.Parse(strings.TrimSpace(c.Installer.URL))
	switch {
	case err != nil || u.Host == "":
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("installer.url %q is not a valid URL", c.Installer.URL),
		})
	case u.Scheme != "https":
		results = append(results, ValidationResult{
			Level:   "warning",
			Message: fmt.Sprintf("installer.url uses %s; https is recommended", u.Scheme),
		})
	}
	if c.Installer.SHA256 != "" && !sha256Hex.MatchString(c.Installer.SHA256) {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: "installer.sha256 must be 64 hex characters",
		})
	}
	if c.Installer.SHA256 == "" {
		results = append(results, ValidationResult{
			Level:   "warning",
			Message: "installer.sha256 is empty; the download will not be verified",
		})
	}
	if strings.ContainsAny(c.Installer.FileName, `/\`) {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("installer.file_name %q must not contain path separators", c.Installer.FileName),
		})
	}
	return results
}

func (c Config) validateLocations() []ValidationResult {
	var results []ValidationResult
	if strings.TrimSpace(c.InstallDir) == "" {
		results = append(results, ValidationResult{Level: "error", Message: "install_dir is required"})
	}
	if strings.TrimSpace(c.ConfigDir) == "" {
		results = append(results, ValidationResult{Level: "error", Message: "config_dir is required"})
	}
	if c.InstallDir != "" && c.InstallDir == c.ConfigDir {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: "install_dir and config_dir must differ",
		})
	}
	for i, rc := range c.RCFiles {
		if strings.TrimSpace(rc) == "" {
			results = append(results, ValidationResult{
				Level:   "error",
				Message: fmt.Sprintf("rc_files[%d]: path is empty", i),
			})
		}
	}
	return results
}

func (c Config) validateShell() []ValidationResult {
	var results []ValidationResult
	if !envVarName.MatchString(c.InitMarker) {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("init_marker %q is not a valid environment variable name", c.InitMarker),
		})
	}
	if strings.TrimSpace(c.RCBlock.Begin) == "" || strings.TrimSpace(c.RCBlock.End) == "" {
		results = append(results, ValidationResult{Level: "error", Message: "rc_block begin and end are required"})
	} else if c.RCBlock.Begin == c.RCBlock.End {
		results = append(results, ValidationResult{Level: "error", Message: "rc_block begin and end must differ"})
	}
	if c.Shell != "bash" && c.Shell != "zsh" {
		results = append(results, ValidationResult{
			Level:   "warning",
			Message: fmt.Sprintf("shell %q is untested; bash and zsh are supported", c.Shell),
		})
	}
	return results
}

func (c Config) validateMisc() []ValidationResult {
	var results []ValidationResult
	if _, err := c.Timeout(); err != nil {
		results = append(results, ValidationResult{Level: "error", Message: err.Error()})
	}
	if !knownLevels[strings.ToLower(c.Logging.Level)] {
		results = append(results, ValidationResult{
			Level:   "warning",
			Message: fmt.Sprintf("logging.level %q is unknown; using info", c.Logging.Level),
		})
	}
	if strings.TrimSpace(c.PrivilegeCommand) == "" {
		results = append(results, ValidationResult{
			Level:   "warning",
			Message: "privilege_command is empty; destroy will run without elevation",
		})
	}
	return results
}
