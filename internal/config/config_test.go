package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadMissingReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAMLKeepsDefaultsForOmittedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "install_dir: /opt/miniconda\nrc_files:\n  - ~/.zshrc\ncommand_timeout: 90s\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.InstallDir != "/opt/miniconda" {
		t.Fatalf("unexpected install dir %q", cfg.InstallDir)
	}
	if diff := cmp.Diff([]string{"~/.zshrc"}, cfg.RCFiles); diff != "" {
		t.Fatalf("rc files mismatch (-want +got):\n%s", diff)
	}
	if cfg.Manager != "conda" || cfg.InitMarker != "CONDA_EXE" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	timeout, err := cfg.Timeout()
	if err != nil || timeout != 90*time.Second {
		t.Fatalf("unexpected timeout %v (err=%v)", timeout, err)
	}
}

func TestLoadTOMLByExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "shell = \"zsh\"\ninstall_dir = \"/srv/conda\"\n\n[installer]\nurl = \"https://mirror.example.com/Miniconda3-py311.sh\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Shell != "zsh" || cfg.InstallDir != "/srv/conda" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Installer.FileName != "Miniconda3-py311.sh" {
		t.Fatalf("expected file name derived from url, got %q", cfg.Installer.FileName)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("rc_files: [unterminated"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "unmarshal config") {
		t.Fatalf("expected unmarshal error, got %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			cfg := Default()
			cfg.DefaultEnv = "ml"
			cfg.CommandTimeout = "5m"

			if err := Save(path, cfg); err != nil {
				t.Fatalf("Save: %v", err)
			}
			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if diff := cmp.Diff(cfg, loaded); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDefaultInstallerURL(t *testing.T) {
	tests := []struct {
		goos, goarch, want string
	}{
		{"linux", "amd64", "https://repo.anaconda.com/miniconda/Miniconda3-latest-Linux-x86_64.sh"},
		{"linux", "arm64", "https://repo.anaconda.com/miniconda/Miniconda3-latest-Linux-aarch64.sh"},
		{"darwin", "arm64", "https://repo.anaconda.com/miniconda/Miniconda3-latest-MacOSX-arm64.sh"},
		{"darwin", "amd64", "https://repo.anaconda.com/miniconda/Miniconda3-latest-MacOSX-x86_64.sh"},
	}
	for _, tt := range tests {
		if got := DefaultInstallerURL(tt.goos, tt.goarch); got != tt.want {
			t.Errorf("DefaultInstallerURL(%s, %s) = %s, want %s", tt.goos, tt.goarch, got, tt.want)
		}
	}
}

func TestTimeoutNegative(t *testing.T) {
	cfg := Config{CommandTimeout: "-1s"}
	if _, err := cfg.Timeout(); err == nil {
		t.Fatal("expected error for negative timeout")
	}
}
