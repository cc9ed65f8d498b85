// Package snapshot archives a working tree into a save directory.
// Archives merge into the destination: files are overwritten, nothing that
// already exists there is removed.
package snapshot

import (
	"io/fs"
	"path"
)

// GitDir is the version-control metadata directory, never archived.
const GitDir = ".git"

// Filter decides whether a path of the source tree is left out of an archive.
// rel is slash-separated and relative to the source root. Excluding a
// directory prunes everything below it.
type Filter interface {
	Exclude(rel string, d fs.DirEntry) bool
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(rel string, d fs.DirEntry) bool

func (f FilterFunc) Exclude(rel string, d fs.DirEntry) bool { return f(rel, d) }

// Stats summarises one archive pass.
type Stats struct {
	Files    int
	Dirs     int
	Symlinks int
	Excluded int
	Bytes    int64
}

func isGitDir(rel string) bool {
	return path.Base(rel) == GitDir
}
