package tools

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/letterpress/internal/core/ports"
	"go.trai.ch/zerr"
)

// job is one unit of output: the sources feeding it and where the result
// goes. An empty dest means the sources are rewritten in place.
type job struct {
	sources []string
	dest    string
	dir     bool
}

// outputs pairs every source with the file it produces. A single source
// maps to dest, several sources (or a dest ending in a slash) map into dest
// as a directory.
func (j job) outputs() [][2]string {
	out := make([][2]string, 0, len(j.sources))
	for _, src := range j.sources {
		switch {
		case j.dest == "":
			out = append(out, [2]string{src, src})
		case len(j.sources) == 1 && !j.dir:
			out = append(out, [2]string{src, j.dest})
		default:
			out = append(out, [2]string{src, filepath.Join(j.dest, filepath.Base(src))})
		}
	}
	return out
}

type fileSet struct {
	resolver ports.FileResolver
}

func newFileSet(resolver ports.FileResolver) fileSet {
	return fileSet{resolver: resolver}
}

// jobs expands the task's file mappings into jobs with absolute paths.
// Expanded mappings produce one job per matched file.
func (f fileSet) jobs(inv domain.Invocation) ([]job, error) {
	var out []job
	for _, m := range inv.Task.Files {
		base := inv.Env.Abs(m.Cwd)
		matches, err := f.resolver.Resolve(m.Src, base)
		if err != nil {
			return nil, err
		}

		if !m.Expand {
			j := job{sources: make([]string, len(matches))}
			for i, rel := range matches {
				j.sources[i] = filepath.Join(base, filepath.FromSlash(rel))
			}
			if m.Dest != "" {
				j.dest = inv.Env.Abs(m.Dest)
				j.dir = strings.HasSuffix(filepath.ToSlash(m.Dest), "/")
			}
			out = append(out, j)
			continue
		}

		for _, rel := range matches {
			j := job{sources: []string{filepath.Join(base, filepath.FromSlash(rel))}}
			if m.Dest != "" {
				target := rel
				if m.Flatten {
					target = path.Base(rel)
				}
				j.dest = filepath.Join(inv.Env.Abs(m.Dest), filepath.FromSlash(target))
			}
			out = append(out, j)
		}
	}
	return out, nil
}

// sources returns every matched file of the task, in order.
func (f fileSet) sources(inv domain.Invocation) ([]string, error) {
	jobs, err := f.jobs(inv)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, j := range jobs {
		out = append(out, j.sources...)
	}
	return out, nil
}

// requireSources fails when a job that must produce dest matched nothing.
func requireSources(inv domain.Invocation, j job) error {
	if len(j.sources) > 0 {
		return nil
	}
	err := zerr.With(domain.ErrNoSources, "task", inv.Task.Name)
	if j.dest != "" {
		err = zerr.With(err, "dest", rel(inv.Env, j.dest))
	}
	return err
}

func readFile(env domain.Env, p string) ([]byte, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSourceReadFailed.Error()), "path", rel(env, p))
	}
	return data, nil
}

func writeFile(env domain.Env, p string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(p), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrDestinationWriteFailed.Error()), "path", rel(env, p))
	}
	if err := os.WriteFile(p, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrDestinationWriteFailed.Error()), "path", rel(env, p))
	}
	return nil
}

// rel shortens p for messages.
func rel(env domain.Env, p string) string {
	r, err := filepath.Rel(env.Root(), p)
	if err != nil || strings.HasPrefix(r, "..") {
		return p
	}
	return filepath.ToSlash(r)
}

func created(w io.Writer, env domain.Env, p string) {
	_, _ = fmt.Fprintf(w, "File %s created.\n", rel(env, p))
}

// toolError wraps the failure of an in-process tool with the file it concerns.
func toolError(env domain.Env, p string, msgs []string) error {
	err := zerr.Wrap(errors.New(strings.Join(msgs, "\n")), domain.ErrToolFailed.Error())
	return zerr.With(err, "path", rel(env, p))
}

func domainMissingDest(inv domain.Invocation) error {
	err := zerr.With(domain.ErrInvalidFileMapping, "task", inv.Task.Name)
	return zerr.With(err, "missing", "dest")
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func sortedOptionKeys(o domain.Options) []string {
	return slices.Sorted(maps.Keys(o))
}
