package tools

import (
	"bytes"
	"context"

	"go.trai.ch/letterpress/internal/core/domain"
)

// KindConcat joins source files into one destination.
const KindConcat = "concat"

// Concat implements the concat task kind.
//
// Options:
//
//	separator  string placed between files (default "\n")
//	banner     string written before the first file
//	footer     string written after the last file
type Concat struct {
	files fileSet
}

// Kind implements ports.Tool.
func (c *Concat) Kind() string { return KindConcat }

// Run implements ports.Tool.
func (c *Concat) Run(_ context.Context, inv domain.Invocation) error {
	opts := inv.Task.Options
	separator, err := opts.String("separator", "\n")
	if err != nil {
		return err
	}
	banner, err := opts.String("banner", "")
	if err != nil {
		return err
	}
	footer, err := opts.String("footer", "")
	if err != nil {
		return err
	}

	jobs, err := c.files.jobs(inv)
	if err != nil {
		return err
	}
	for _, j := range jobs {
		if err := requireSources(inv, j); err != nil {
			return err
		}
		if j.dest == "" {
			return domainMissingDest(inv)
		}

		var buf bytes.Buffer
		buf.WriteString(banner)
		for i, src := range j.sources {
			data, err := readFile(inv.Env, src)
			if err != nil {
				return err
			}
			if i > 0 {
				buf.WriteString(separator)
			}
			buf.Write(data)
		}
		buf.WriteString(footer)

		if err := writeFile(inv.Env, j.dest, buf.Bytes()); err != nil {
			return err
		}
		created(inv.Stdout, inv.Env, j.dest)
	}
	return nil
}
