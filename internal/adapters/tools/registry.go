// Package tools implements the task kinds a pipeline can run. Each tool
// wraps a library or an external command and receives a read-only
// invocation: the task's resolved options and file mappings plus the
// shared execution environment.
package tools

import (
	"maps"
	"slices"

	"go.trai.ch/letterpress/internal/core/ports"
)

// Registry maps task kinds to tools.
type Registry struct {
	tools map[string]ports.Tool
}

var _ ports.ToolRegistry = (*Registry)(nil)

// NewRegistry creates a registry holding the given tools. A later tool
// replaces an earlier one of the same kind.
func NewRegistry(tools ...ports.Tool) *Registry {
	r := &Registry{tools: make(map[string]ports.Tool, len(tools))}
	for _, t := range tools {
		r.tools[t.Kind()] = t
	}
	return r
}

// Lookup returns the tool registered for kind.
func (r *Registry) Lookup(kind string) (ports.Tool, bool) {
	t, ok := r.tools[kind]
	return t, ok
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	return slices.Sorted(maps.Keys(r.tools))
}

// NewDefaultRegistry registers every built-in tool.
func NewDefaultRegistry(resolver ports.FileResolver, executor ports.Executor, mailers ports.MailerFactory) *Registry {
	files := newFileSet(resolver)
	return NewRegistry(
		&Vendor{executor: executor},
		&Concat{files: files},
		&Stylesheet{files: files, executor: executor},
		&Prefix{files: files},
		&Legacy{files: files},
		&CSSMin{files: files},
		&JSMin{files: files},
		&Banner{files: files},
		&Inline{files: files},
		&HTMLMin{files: files},
		&Copy{files: files},
		&Lint{files: files, executor: executor},
		&Exec{executor: executor},
		&Mail{files: files, mailers: mailers},
	)
}
