package backend

import (
	"bytes"
	"errors"
	"os"

	"go.uber.org/zap"
)

// MarkerBlock delimits the shell-integration block a manager writes into rc
// files. Both sentinels are matched against whole trimmed lines.
type MarkerBlock struct {
	Begin string
	End   string
}

// StripBlock removes every line from a Begin sentinel through the next End
// sentinel inclusive. A Begin without a matching End is left in place.
func StripBlock(content []byte, block MarkerBlock) ([]byte, bool) {
	lines := bytes.SplitAfter(content, []byte("\n"))
	out := make([][]byte, 0, len(lines))
	changed := false

	for i := 0; i < len(lines); i++ {
		if !lineIs(lines[i], block.Begin) {
			out = append(out, lines[i])
			continue
		}
		end := -1
		for j := i + 1; j < len(lines); j++ {
			if lineIs(lines[j], block.End) {
				end = j
				break
			}
		}
		if end < 0 {
			out = append(out, lines[i:]...)
			break
		}
		changed = true
		i = end
	}

	if !changed {
		return content, false
	}
	return bytes.Join(out, nil), true
}

func lineIs(line []byte, sentinel string) bool {
	return sentinel != "" && string(bytes.TrimSpace(line)) == sentinel
}

// EditShellRcFile strips the marker block from path. A missing file, or a
// file without a complete block, is left untouched and reports false.
func (a *Adapter) EditShellRcFile(path string, block MarkerBlock) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, &Error{Op: "edit rc file", Detail: path, Err: err}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return false, &Error{Op: "edit rc file", Detail: path, Err: err}
	}
	stripped, changed := StripBlock(content, block)
	if !changed {
		return false, nil
	}
	if err := os.WriteFile(path, stripped, info.Mode().Perm()); err != nil {
		return false, &Error{Op: "edit rc file", Detail: path, Err: err}
	}
	a.log.Info("removed shell integration block", zap.String("path", path))
	return true, nil
}
