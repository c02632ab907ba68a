package tools

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/zerr"
)

// KindCopy copies files.
const KindCopy = "copy"

// Copy implements the copy task kind. Mappings use expand, cwd and flatten
// to place each matched file under dest; without expand a single source is
// copied to dest, several sources into dest as a directory.
type Copy struct {
	files fileSet
}

// Kind implements ports.Tool.
func (c *Copy) Kind() string { return KindCopy }

// Run implements ports.Tool.
func (c *Copy) Run(_ context.Context, inv domain.Invocation) error {
	jobs, err := c.files.jobs(inv)
	if err != nil {
		return err
	}

	copied := 0
	for _, j := range jobs {
		if j.dest == "" {
			return domainMissingDest(inv)
		}
		for _, pair := range j.outputs() {
			if err := copyFile(inv.Env, pair[0], pair[1]); err != nil {
				return err
			}
			copied++
		}
	}

	_, _ = io.WriteString(inv.Stdout, pluralize(copied, "file")+" copied.\n")
	return nil
}

func copyFile(env domain.Env, src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrSourceReadFailed.Error()), "path", rel(env, src))
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dest), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrDestinationWriteFailed.Error()), "path", rel(env, dest))
	}
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, domain.FilePerm)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrDestinationWriteFailed.Error()), "path", rel(env, dest))
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return zerr.With(zerr.Wrap(err, domain.ErrDestinationWriteFailed.Error()), "path", rel(env, dest))
	}
	if err := out.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrDestinationWriteFailed.Error()), "path", rel(env, dest))
	}
	return nil
}
