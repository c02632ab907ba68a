// Package fs provides file system adapters for globbing, walking and hashing files.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
)

// skippedDirs are never descended into.
var skippedDirs = map[string]bool{
	".git": true,
	".jj":  true,
}

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields every regular file below dir as a path relative to root,
// using forward slashes. A missing dir yields nothing.
func (w *Walker) WalkFiles(root, dir string) iter.Seq[string] {
	return func(yield func(string) bool) {
		start := filepath.Join(root, filepath.FromSlash(dir))
		_ = filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == start {
					return filepath.SkipAll
				}
				return nil //nolint:nilerr // unreadable entries are skipped
			}

			if d.IsDir() {
				if path != start && skippedDirs[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}

			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return nil //nolint:nilerr // path is always below root
			}
			if !yield(filepath.ToSlash(rel)) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}
