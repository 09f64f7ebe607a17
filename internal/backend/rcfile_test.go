package backend

import (
	"os"
	"path/filepath"
	"testing"
)

var condaBlock = MarkerBlock{Begin: "# >>> conda initialize >>>", End: "# <<< conda initialize <<<"}

func TestStripBlock(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		changed bool
	}{
		{
			name:    "block in middle",
			in:      "export A=1\n# >>> conda initialize >>>\n__conda_setup=x\neval \"$__conda_setup\"\n# <<< conda initialize <<<\nalias ll='ls -l'\n",
			want:    "export A=1\nalias ll='ls -l'\n",
			changed: true,
		},
		{
			name:    "block at end without trailing newline",
			in:      "export A=1\n# >>> conda initialize >>>\nx\n# <<< conda initialize <<<",
			want:    "export A=1\n",
			changed: true,
		},
		{
			name:    "two blocks",
			in:      "# >>> conda initialize >>>\na\n# <<< conda initialize <<<\nkeep\n  # >>> conda initialize >>>\nb\n# <<< conda initialize <<<\n",
			want:    "keep\n",
			changed: true,
		},
		{
			name:    "no block",
			in:      "export PATH=$HOME/bin:$PATH\n",
			want:    "export PATH=$HOME/bin:$PATH\n",
			changed: false,
		},
		{
			name:    "begin without end",
			in:      "a\n# >>> conda initialize >>>\nb\n",
			want:    "a\n# >>> conda initialize >>>\nb\n",
			changed: false,
		},
		{
			name:    "empty",
			in:      "",
			want:    "",
			changed: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := StripBlock([]byte(tt.in), condaBlock)
			if string(got) != tt.want || changed != tt.changed {
				t.Fatalf("StripBlock() = %q, %v; want %q, %v", got, changed, tt.want, tt.changed)
			}
		})
	}
}

func TestEditShellRcFileRemovesBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".bashrc")
	content := "export A=1\n# >>> conda initialize >>>\nconda stuff\n# <<< conda initialize <<<\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	a, _ := newTestAdapter(t, &fakeRunner{}, nil)
	changed, err := a.EditShellRcFile(path, condaBlock)
	if err != nil {
		t.Fatalf("EditShellRcFile: %v", err)
	}
	if !changed {
		t.Fatal("expected file to change")
	}

	data, _ := os.ReadFile(path)
	if string(data) != "export A=1\n" {
		t.Fatalf("unexpected content %q", data)
	}
	info, _ := os.Stat(path)
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected permissions preserved, got %v", info.Mode().Perm())
	}
}

func TestEditShellRcFileWithoutBlockIsUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".bash_profile")
	content := []byte("source ~/.bashrc\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	before, _ := os.Stat(path)

	a, _ := newTestAdapter(t, &fakeRunner{}, nil)
	changed, err := a.EditShellRcFile(path, condaBlock)
	if err != nil || changed {
		t.Fatalf("expected untouched file, changed=%v err=%v", changed, err)
	}

	after, _ := os.Stat(path)
	data, _ := os.ReadFile(path)
	if string(data) != string(content) || !after.ModTime().Equal(before.ModTime()) {
		t.Fatal("file without a block must not be rewritten")
	}
}

func TestEditShellRcFileMissing(t *testing.T) {
	a, _ := newTestAdapter(t, &fakeRunner{}, nil)
	changed, err := a.EditShellRcFile(filepath.Join(t.TempDir(), ".bashrc"), condaBlock)
	if err != nil || changed {
		t.Fatalf("missing file should be a no-op, changed=%v err=%v", changed, err)
	}
}
