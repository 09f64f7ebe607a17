package envs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"condasetup/internal/backend"
)

// Record is one environment as reported by a single listing.
type Record struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Active bool   `json:"active"`
}

// Parse reads `info --envs` output. Comment and blank lines are skipped, the
// first column's base name becomes the environment name, the last column its
// path, and a "*" column marks the active environment. Duplicate names keep
// their first occurrence.
func Parse(output string) []Record {
	var records []Record
	seen := make(map[string]bool)

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		active := false
		var columns []string
		for _, f := range fields {
			if f == "*" {
				active = true
				continue
			}
			columns = append(columns, f)
		}
		if len(columns) == 0 {
			continue
		}

		name := filepath.Base(columns[0])
		if name == "." || name == string(filepath.Separator) || seen[name] {
			continue
		}
		seen[name] = true
		records = append(records, Record{Name: name, Path: columns[len(columns)-1], Active: active})
	}
	return records
}

// Selectable returns the records offered for selection: everything after the
// base entry, numbered from 1.
func Selectable(list []Record) []Record {
	if len(list) <= 1 {
		return nil
	}
	return list[1:]
}

// LastUsed reports the modification time of the environment's conda-meta
// directory, which the manager touches on every package change.
func LastUsed(r Record) (time.Time, bool) {
	info, err := os.Stat(filepath.Join(r.Path, "conda-meta"))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// Commander runs manager subcommands.
type Commander interface {
	RunManagerCommand(ctx context.Context, args ...string) (backend.Result, error)
}

// Registry lists environments from the manager. Nothing is cached.
type Registry struct {
	cmd Commander
	log *zap.Logger
}

func NewRegistry(cmd Commander, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{cmd: cmd, log: logger}
}

// List returns environments in the manager's reported order. The first
// entry is conventionally the base environment.
func (r *Registry) List(ctx context.Context) ([]Record, error) {
	res, err := r.cmd.RunManagerCommand(ctx, "info", "--envs")
	if err != nil {
		return nil, err
	}
	records := Parse(res.Stdout)
	r.log.Debug("listed environments", zap.Int("count", len(records)))
	return records, nil
}

// Selection is the outcome of resolving user input against a listing.
type Selection struct {
	Create bool
	Record Record
}

// Reason classifies a failed selection.
type Reason int

const (
	OutOfRange Reason = iota + 1
	NotFound
)

func (r Reason) String() string {
	switch r {
	case OutOfRange:
		return "out of range"
	case NotFound:
		return "not found"
	default:
		return "unknown"
	}
}

// SelectionError is returned when input matches no listed environment.
type SelectionError struct {
	Reason Reason
	Input  string
	Count  int
}

func (e *SelectionError) Error() string {
	if e.Reason == OutOfRange {
		if e.Count == 0 {
			return fmt.Sprintf("selection %s is out of range: no environments to choose from", e.Input)
		}
		return fmt.Sprintf("selection %s is out of range (choose 0-%d)", e.Input, e.Count)
	}
	return fmt.Sprintf("environment %q not found", e.Input)
}

// Resolve maps input onto list. "0" always means create; other integers are
// 1-based indexes; anything else is looked up by name.
func Resolve(input string, list []Record) (Selection, error) {
	input = strings.TrimSpace(input)
	if n, err := strconv.Atoi(input); err == nil {
		if n == 0 {
			return Selection{Create: true}, nil
		}
		if n < 1 || n > len(list) {
			return Selection{}, &SelectionError{Reason: OutOfRange, Input: input, Count: len(list)}
		}
		return Selection{Record: list[n-1]}, nil
	}
	for _, rec := range list {
		if rec.Name == input {
			return Selection{Record: rec}, nil
		}
	}
	return Selection{}, &SelectionError{Reason: NotFound, Input: input}
}
