// Package domain contains the core domain types of the pipeline orchestrator.
package domain

import (
	"fmt"
	"regexp"
	"strings"

	"go.trai.ch/zerr"
)

// TaskSeparator joins a task kind and its target into a task name.
const TaskSeparator = ":"

var validNamePart = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// FileMapping is one normalised source-to-destination entry of a task target.
// Src patterns are glob patterns relative to Cwd (or the project root when Cwd
// is empty). An empty Dest means the task rewrites its sources in place.
type FileMapping struct {
	Src     []string
	Dest    string
	Cwd     string
	Expand  bool
	Flatten bool
}

// Task is a single delegated unit of work. It is immutable once the pipeline
// has been loaded.
type Task struct {
	// Name is the unique identifier "kind:target".
	Name string
	// Kind selects the tool that runs the task.
	Kind string
	// Target is the configuration entry within the kind.
	Target string
	// Options holds the kind-level options overlaid with the target options.
	Options Options
	// Files holds the normalised file mappings of the target.
	Files []FileMapping
}

// NewTask creates a task for the given kind and target.
func NewTask(kind, target string, options Options, files []FileMapping) (*Task, error) {
	if err := ValidateNamePart(kind); err != nil {
		return nil, err
	}
	if err := ValidateNamePart(target); err != nil {
		return nil, err
	}
	if options == nil {
		options = Options{}
	}
	return &Task{
		Name:    TaskName(kind, target),
		Kind:    kind,
		Target:  target,
		Options: options,
		Files:   files,
	}, nil
}

// TaskName builds the "kind:target" name.
func TaskName(kind, target string) string {
	return kind + TaskSeparator + target
}

// SplitTaskName splits a reference into kind and target.
// The target is empty for bare kind references.
func SplitTaskName(ref string) (kind, target string) {
	kind, target, _ = strings.Cut(ref, TaskSeparator)
	return kind, target
}

// ValidateNamePart checks a kind, target or alias name.
func ValidateNamePart(name string) error {
	if !validNamePart.MatchString(name) {
		return zerr.With(ErrInvalidTaskName, "name", name)
	}
	return nil
}

// String implements fmt.Stringer.
func (t *Task) String() string {
	return fmt.Sprintf("%s (%d file mapping(s))", t.Name, len(t.Files))
}

// Sources returns every source pattern of the task in declaration order.
func (t *Task) Sources() []string {
	var out []string
	for _, f := range t.Files {
		out = append(out, f.Src...)
	}
	return out
}
