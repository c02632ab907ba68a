package domain

import (
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Alias is a named, ordered list of task references treated as one goal.
// Entries may name aliases, tasks ("kind:target") or bare kinds.
type Alias struct {
	Name    string
	Entries []string
}

// WatchTarget re-runs Tasks whenever a file matching Files changes.
type WatchTarget struct {
	Name  string
	Files []string
	Tasks []string
}

// Pipeline is the loaded, fully resolved task graph: tasks in declaration
// order, aliases and watch targets.
type Pipeline struct {
	env Env

	tasks  []*Task
	byName map[string]*Task
	byKind map[string][]*Task

	aliases     []Alias
	aliasByName map[string]int

	watch       []WatchTarget
	watchByName map[string]int
}

// NewPipeline creates an empty pipeline bound to the given execution environment.
func NewPipeline(env Env) *Pipeline {
	return &Pipeline{
		env:         env,
		byName:      make(map[string]*Task),
		byKind:      make(map[string][]*Task),
		aliasByName: make(map[string]int),
		watchByName: make(map[string]int),
	}
}

// Env returns the immutable execution environment shared by every task.
func (p *Pipeline) Env() Env {
	return p.env
}

// AddTask appends a task. Declaration order is preserved.
func (p *Pipeline) AddTask(t *Task) error {
	if _, exists := p.byName[t.Name]; exists {
		return zerr.With(ErrTaskAlreadyExists, "task", t.Name)
	}
	p.tasks = append(p.tasks, t)
	p.byName[t.Name] = t
	p.byKind[t.Kind] = append(p.byKind[t.Kind], t)
	return nil
}

// AddAlias registers an alias.
func (p *Pipeline) AddAlias(name string, entries []string) error {
	if err := ValidateNamePart(name); err != nil {
		return err
	}
	if _, exists := p.aliasByName[name]; exists {
		return zerr.With(ErrAliasAlreadyExists, "alias", name)
	}
	if len(entries) == 0 {
		return zerr.With(ErrEmptyAlias, "alias", name)
	}
	p.aliasByName[name] = len(p.aliases)
	p.aliases = append(p.aliases, Alias{Name: name, Entries: slices.Clone(entries)})
	return nil
}

// AddWatchTarget registers a watch target.
func (p *Pipeline) AddWatchTarget(w WatchTarget) error {
	if err := ValidateNamePart(w.Name); err != nil {
		return err
	}
	if _, exists := p.watchByName[w.Name]; exists {
		return zerr.With(ErrTaskAlreadyExists, "watch", w.Name)
	}
	p.watchByName[w.Name] = len(p.watch)
	p.watch = append(p.watch, w)
	return nil
}

// Task returns the task with the given "kind:target" name.
func (p *Pipeline) Task(name string) (*Task, bool) {
	t, ok := p.byName[name]
	return t, ok
}

// Tasks returns all tasks in declaration order.
func (p *Pipeline) Tasks() []*Task {
	return slices.Clone(p.tasks)
}

// TaskCount returns the number of declared tasks.
func (p *Pipeline) TaskCount() int {
	return len(p.tasks)
}

// Alias returns the alias with the given name.
func (p *Pipeline) Alias(name string) (Alias, bool) {
	i, ok := p.aliasByName[name]
	if !ok {
		return Alias{}, false
	}
	return p.aliases[i], true
}

// Aliases returns all aliases in declaration order.
func (p *Pipeline) Aliases() []Alias {
	return slices.Clone(p.aliases)
}

// WatchTarget returns the watch target with the given name.
func (p *Pipeline) WatchTarget(name string) (WatchTarget, bool) {
	i, ok := p.watchByName[name]
	if !ok {
		return WatchTarget{}, false
	}
	return p.watch[i], true
}

// WatchTargets returns all watch targets in declaration order.
func (p *Pipeline) WatchTargets() []WatchTarget {
	return slices.Clone(p.watch)
}

// Expand flattens a reference into the ordered list of tasks it runs.
// Aliases take precedence over kinds, so an alias may shadow a kind name.
// A bare kind expands to every target of that kind in declaration order.
func (p *Pipeline) Expand(ref string) ([]*Task, error) {
	var out []*Task
	if err := p.expand(ref, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Pipeline) expand(ref string, stack []string, out *[]*Task) error {
	if i, ok := p.aliasByName[ref]; ok {
		if slices.Contains(stack, ref) {
			chain := append(slices.Clone(stack), ref)
			return zerr.With(ErrAliasCycle, "cycle", strings.Join(chain, " -> "))
		}
		path := append(slices.Clone(stack), ref)
		for _, entry := range p.aliases[i].Entries {
			if err := p.expand(entry, path, out); err != nil {
				return err
			}
		}
		return nil
	}

	if t, ok := p.byName[ref]; ok {
		*out = append(*out, t)
		return nil
	}

	if kind, target := SplitTaskName(ref); target == "" {
		if tasks, ok := p.byKind[kind]; ok {
			*out = append(*out, tasks...)
			return nil
		}
	}

	err := zerr.With(ErrTaskNotFound, "task", ref)
	if len(stack) > 0 {
		err = zerr.With(err, "alias", stack[len(stack)-1])
	}
	return err
}
