package tools

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/zerr"
)

// KindJSMin minifies JavaScript.
const KindJSMin = "jsmin"

// JSMin implements the jsmin task kind.
//
// Options:
//
//	preserveComments  some (default, keeps /*! and @license comments) or false
//	sourceMap         write dest.map next to dest (default false)
//	mangle            shorten local identifiers (default true)
type JSMin struct {
	files fileSet
}

// Kind implements ports.Tool.
func (m *JSMin) Kind() string { return KindJSMin }

// Run implements ports.Tool.
func (m *JSMin) Run(_ context.Context, inv domain.Invocation) error {
	opts := inv.Task.Options
	legal, err := legalComments(opts)
	if err != nil {
		return err
	}
	sourceMap, err := opts.Bool("sourceMap", false)
	if err != nil {
		return err
	}
	mangle, err := opts.Bool("mangle", true)
	if err != nil {
		return err
	}

	jobs, err := m.files.jobs(inv)
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
		for i, src := range j.sources {
			data, err := readFile(inv.Env, src)
			if err != nil {
				return err
			}
			if i > 0 {
				buf.WriteString(";\n")
			}
			buf.Write(data)
		}

		transform := api.TransformOptions{
			Loader:            api.LoaderJS,
			MinifyWhitespace:  true,
			MinifySyntax:      true,
			MinifyIdentifiers: mangle,
			LegalComments:     legal,
			Sourcefile:        rel(inv.Env, j.sources[0]),
			LogLevel:          api.LogLevelSilent,
		}
		if sourceMap {
			transform.Sourcemap = api.SourceMapExternal
		}

		result := api.Transform(buf.String(), transform)
		if len(result.Errors) > 0 {
			return toolError(inv.Env, j.sources[0], formatMessages(result.Errors, api.ErrorMessage))
		}

		code := result.Code
		if sourceMap {
			mapPath := j.dest + ".map"
			if err := writeFile(inv.Env, mapPath, result.Map); err != nil {
				return err
			}
			code = append(bytes.TrimRight(code, "\n"), fmt.Sprintf("\n//# sourceMappingURL=%s\n", filepath.Base(mapPath))...)
			created(inv.Stdout, inv.Env, mapPath)
		}
		if err := writeFile(inv.Env, j.dest, code); err != nil {
			return err
		}
		created(inv.Stdout, inv.Env, j.dest)
	}
	return nil
}

func legalComments(opts domain.Options) (api.LegalComments, error) {
	v, ok := opts["preserveComments"]
	if !ok || v == nil {
		return api.LegalCommentsInline, nil
	}
	switch c := v.(type) {
	case bool:
		if c {
			return api.LegalCommentsInline, nil
		}
		return api.LegalCommentsNone, nil
	case string:
		switch c {
		case "some", "all":
			return api.LegalCommentsInline, nil
		case "none", "false":
			return api.LegalCommentsNone, nil
		}
	}
	return api.LegalCommentsDefault, zerr.With(zerr.With(domain.ErrInvalidOption, "option", "preserveComments"), "value", fmt.Sprint(v))
}
