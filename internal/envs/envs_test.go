package envs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"condasetup/internal/backend"
)

const sampleOutput = `# conda environments:
#
base                  *  /home/u/miniconda
ml                       /home/u/miniconda/envs/ml
web                      /home/u/miniconda/envs/web
`

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Record
	}{
		{
			name: "typical",
			in:   sampleOutput,
			want: []Record{
				{Name: "base", Path: "/home/u/miniconda", Active: true},
				{Name: "ml", Path: "/home/u/miniconda/envs/ml"},
				{Name: "web", Path: "/home/u/miniconda/envs/web"},
			},
		},
		{
			name: "active non-base",
			in:   "base  /opt/conda\nml  *  /opt/conda/envs/ml\n",
			want: []Record{
				{Name: "base", Path: "/opt/conda"},
				{Name: "ml", Path: "/opt/conda/envs/ml", Active: true},
			},
		},
		{
			name: "unnamed prefix uses base name",
			in:   "base /opt/conda\n/srv/projects/.venv-data\n",
			want: []Record{
				{Name: "base", Path: "/opt/conda"},
				{Name: ".venv-data", Path: "/srv/projects/.venv-data"},
			},
		},
		{
			name: "duplicate keeps first",
			in:   "ml /a/ml\nml /b/ml\n",
			want: []Record{{Name: "ml", Path: "/a/ml"}},
		},
		{
			name: "empty",
			in:   "",
			want: nil,
		},
		{
			name: "comments and stray star only",
			in:   "# header\n   \n*\n",
			want: nil,
		},
		{
			name: "windows line endings",
			in:   "base * C:\\conda\r\n",
			want: []Record{{Name: "base", Path: "C:\\conda", Active: true}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Parse(tt.in)); diff != "" {
				t.Fatalf("Parse mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSelectable(t *testing.T) {
	list := Parse(sampleOutput)
	got := Selectable(list)
	if len(got) != 2 || got[0].Name != "ml" || got[1].Name != "web" {
		t.Fatalf("unexpected selectable list %v", got)
	}
	if Selectable(list[:1]) != nil {
		t.Fatal("a base-only listing has nothing selectable")
	}
	if Selectable(nil) != nil {
		t.Fatal("empty listing has nothing selectable")
	}
}

func TestResolve(t *testing.T) {
	list := Selectable(Parse(sampleOutput))

	tests := []struct {
		input      string
		list       []Record
		wantCreate bool
		wantName   string
		wantReason Reason
	}{
		{input: "0", list: list, wantCreate: true},
		{input: "0", list: nil, wantCreate: true},
		{input: " 1 ", list: list, wantName: "ml"},
		{input: "2", list: list, wantName: "web"},
		{input: "3", list: list, wantReason: OutOfRange},
		{input: "-1", list: list, wantReason: OutOfRange},
		{input: "1", list: nil, wantReason: OutOfRange},
		{input: "web", list: list, wantName: "web"},
		{input: "data", list: list, wantReason: NotFound},
		{input: "", list: list, wantReason: NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			sel, err := Resolve(tt.input, tt.list)
			if tt.wantReason != 0 {
				var selErr *SelectionError
				if !errors.As(err, &selErr) || selErr.Reason != tt.wantReason {
					t.Fatalf("expected %v, got %v", tt.wantReason, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if sel.Create != tt.wantCreate || sel.Record.Name != tt.wantName {
				t.Fatalf("unexpected selection %+v", sel)
			}
		})
	}
}

func TestSelectionErrorMessage(t *testing.T) {
	err := &SelectionError{Reason: OutOfRange, Input: "9", Count: 2}
	if err.Error() != "selection 9 is out of range (choose 0-2)" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	err = &SelectionError{Reason: NotFound, Input: "data"}
	if err.Error() != `environment "data" not found` {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

type fakeCommander struct {
	args []string
	out  string
	err  error
}

func (f *fakeCommander) RunManagerCommand(_ context.Context, args ...string) (backend.Result, error) {
	f.args = args
	return backend.Result{Stdout: f.out}, f.err
}

func TestRegistryList(t *testing.T) {
	cmd := &fakeCommander{out: sampleOutput}
	records, err := NewRegistry(cmd, nil).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if diff := cmp.Diff([]string{"info", "--envs"}, cmd.args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
	if len(records) != 3 || records[0].Name != "base" {
		t.Fatalf("unexpected records %v", records)
	}
}

func TestRegistryListPropagatesBackendError(t *testing.T) {
	want := &backend.Error{Op: "run conda", Err: backend.ErrNotFound}
	_, err := NewRegistry(&fakeCommander{err: want}, nil).List(context.Background())
	if !errors.Is(err, backend.ErrNotFound) {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestLastUsed(t *testing.T) {
	envPath := t.TempDir()
	if _, ok := LastUsed(Record{Name: "ml", Path: envPath}); ok {
		t.Fatal("expected no timestamp without conda-meta")
	}

	meta := filepath.Join(envPath, "conda-meta")
	if err := os.Mkdir(meta, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(meta, stamp, stamp); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	got, ok := LastUsed(Record{Name: "ml", Path: envPath})
	if !ok || !got.Equal(stamp) {
		t.Fatalf("LastUsed = %v, %v; want %v", got, ok, stamp)
	}
}
