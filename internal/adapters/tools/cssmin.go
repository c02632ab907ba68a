package tools

import (
	"bytes"
	"context"
	"fmt"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/letterpress/internal/core/domain"
)

// KindCSSMin minifies CSS.
const KindCSSMin = "cssmin"

// CSSMin implements the cssmin task kind. Sources of a mapping are joined
// before minification. Special comments (/*! ... */) are kept.
type CSSMin struct {
	files fileSet
}

// Kind implements ports.Tool.
func (c *CSSMin) Kind() string { return KindCSSMin }

// Run implements ports.Tool.
func (c *CSSMin) Run(_ context.Context, inv domain.Invocation) error {
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
		for _, src := range j.sources {
			data, err := readFile(inv.Env, src)
			if err != nil {
				return err
			}
			buf.Write(data)
			buf.WriteByte('\n')
		}

		result := api.Transform(buf.String(), api.TransformOptions{
			Loader:           api.LoaderCSS,
			MinifyWhitespace: true,
			MinifySyntax:     true,
			LegalComments:    api.LegalCommentsInline,
			Sourcefile:       rel(inv.Env, j.sources[0]),
			LogLevel:         api.LogLevelSilent,
		})
		if len(result.Errors) > 0 {
			return toolError(inv.Env, j.sources[0], formatMessages(result.Errors, api.ErrorMessage))
		}
		if err := writeFile(inv.Env, j.dest, result.Code); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(inv.Stdout, "File %s created: %d B → %d B\n", rel(inv.Env, j.dest), buf.Len(), len(result.Code))
	}
	return nil
}
