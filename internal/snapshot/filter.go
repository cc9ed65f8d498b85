package snapshot

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"checkpoint/internal/launcher"
)

// Git plumbing used to emulate a commit. --directory collapses wholly
// ignored or untracked directories into one entry; -z keeps paths unquoted.
const (
	gitIgnoredCmd  = "git ls-files -z --others --ignored --exclude-standard --directory"
	gitUncommitCmd = "git ls-files -z --others --modified --exclude-standard --directory"
)

// RawFilter keeps the working tree verbatim except version-control metadata
// and the listed absolute paths (the transcript, typically).
func RawFilter(root string, skipAbs ...string) Filter {
	skip := make(map[string]bool, len(skipAbs))
	for _, p := range skipAbs {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			skip[abs] = true
		}
	}
	return FilterFunc(func(rel string, _ fs.DirEntry) bool {
		if isGitDir(rel) {
			return true
		}
		if len(skip) == 0 {
			return false
		}
		abs, err := filepath.Abs(filepath.Join(root, filepath.FromSlash(rel)))
		return err == nil && skip[abs]
	})
}

// GitFilter is the commit-emulation filter: paths git reports as ignored,
// untracked or modified are left out along with .git itself.
type GitFilter struct {
	excluded map[string]bool
}

// NewGitFilter asks git, run inside root, which paths a clean commit would
// not contain.
func NewGitFilter(ctx context.Context, runner launcher.Runner, root string) (*GitFilter, error) {
	f := &GitFilter{excluded: make(map[string]bool)}
	for _, cmd := range []string{gitIgnoredCmd, gitUncommitCmd} {
		res, err := runner.Run(ctx, root, cmd)
		if err != nil {
			return nil, fmt.Errorf("snapshot: list uncommitted paths: %w", err)
		}
		for _, p := range splitPaths(res.Stdout) {
			f.excluded[p] = true
		}
	}
	return f, nil
}

// Len reports how many distinct paths git excluded.
func (f *GitFilter) Len() int { return len(f.excluded) }

func (f *GitFilter) Exclude(rel string, _ fs.DirEntry) bool {
	if rel == GitDir || isGitDir(rel) {
		return true
	}
	return f.excluded[rel]
}

// splitPaths parses NUL or newline separated git output into clean,
// slash-separated relative paths without trailing slashes.
func splitPaths(out string) []string {
	sep := "\x00"
	if !strings.Contains(out, sep) {
		sep = "\n"
	}
	var paths []string
	for _, raw := range strings.Split(out, sep) {
		raw = strings.TrimRight(raw, "\r\n")
		if raw == "" {
			continue
		}
		paths = append(paths, path.Clean(strings.TrimSuffix(raw, "/")))
	}
	return paths
}
