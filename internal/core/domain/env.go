package domain

import (
	"io"
	"maps"
	"path/filepath"
)

// Env is the immutable execution environment handed to every task: the
// project root and the named locations (for example src and dist) that
// templates were resolved against.
type Env struct {
	root      string
	locations map[string]string
}

// NewEnv creates an Env. The locations map is copied.
func NewEnv(root string, locations map[string]string) Env {
	return Env{
		root:      filepath.Clean(root),
		locations: maps.Clone(locations),
	}
}

// Root returns the project root.
func (e Env) Root() string {
	return e.root
}

// Location returns a named location relative to the root.
func (e Env) Location(name string) (string, bool) {
	v, ok := e.locations[name]
	return v, ok
}

// Locations returns a copy of all named locations.
func (e Env) Locations() map[string]string {
	return maps.Clone(e.locations)
}

// Abs resolves a project-relative path against the root.
func (e Env) Abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(e.root, filepath.FromSlash(path))
}

// Invocation is everything a tool receives to run one task.
type Invocation struct {
	Task   *Task
	Env    Env
	Stdout io.Writer
	Stderr io.Writer
}
