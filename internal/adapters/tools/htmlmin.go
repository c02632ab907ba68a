package tools

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/zerr"
)

// KindHTMLMin minifies HTML.
const KindHTMLMin = "htmlmin"

const (
	mimeHTML = "text/html"
	mimeCSS  = "text/css"
	mimeJS   = "application/javascript"
)

// HTMLMin implements the htmlmin task kind. Document and end tags are always
// kept since mail clients rely on them. Unknown options are rejected.
//
// Options:
//
//	removeComments             (default false)
//	collapseWhitespace         (default false)
//	removeRedundantAttributes  drop attributes set to their default (default false)
//	removeAttributeQuotes      (default false)
//	removeCommentsFromCDATA    minify style and script bodies (default false)
//	removeEmptyAttributes      always on; false is rejected
//	collapseBooleanAttributes  always on; false is rejected
//	minifyCSS                  minify style elements and attributes (default false)
//	minifyJS                   minify script elements (default false)
type HTMLMin struct {
	files fileSet
}

// Kind implements ports.Tool.
func (h *HTMLMin) Kind() string { return KindHTMLMin }

// Run implements ports.Tool.
func (h *HTMLMin) Run(_ context.Context, inv domain.Invocation) error {
	m, err := newHTMLMinifier(inv.Task.Options)
	if err != nil {
		return err
	}

	jobs, err := h.files.jobs(inv)
	if err != nil {
		return err
	}
	for _, j := range jobs {
		if err := requireSources(inv, j); err != nil {
			return err
		}
		for _, pair := range j.outputs() {
			data, err := readFile(inv.Env, pair[0])
			if err != nil {
				return err
			}
			out, err := m.Bytes(mimeHTML, data)
			if err != nil {
				return zerr.With(zerr.Wrap(err, domain.ErrToolFailed.Error()), "path", rel(inv.Env, pair[0]))
			}
			if err := writeFile(inv.Env, pair[1], out); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(inv.Stdout, "Minified %s %d B → %d B\n", rel(inv.Env, pair[1]), len(data), len(out))
		}
	}
	return nil
}

// alwaysApplied are option names the minifier cannot switch off: empty
// class, id and style attributes are always dropped and boolean attributes
// always collapsed.
var alwaysApplied = []string{"removeEmptyAttributes", "collapseBooleanAttributes"}

func newHTMLMinifier(opts domain.Options) (*minify.M, error) {
	flags := map[string]bool{
		"removeComments":            false,
		"collapseWhitespace":        false,
		"removeRedundantAttributes": false,
		"removeAttributeQuotes":     false,
		"removeCommentsFromCDATA":   false,
		"minifyCSS":                 false,
		"minifyJS":                  false,
	}
	for _, key := range slices.Sorted(maps.Keys(opts)) {
		if _, known := flags[key]; known {
			continue
		}
		if !slices.Contains(alwaysApplied, key) {
			return nil, zerr.With(domain.ErrInvalidOption, "option", key)
		}
		on, err := opts.Bool(key, true)
		if err != nil {
			return nil, err
		}
		if !on {
			err := zerr.With(domain.ErrInvalidOption, "option", key)
			return nil, zerr.With(err, "reason", "cannot be disabled")
		}
	}
	for key, def := range flags {
		v, err := opts.Bool(key, def)
		if err != nil {
			return nil, err
		}
		flags[key] = v
	}

	m := minify.New()
	m.Add(mimeHTML, &html.Minifier{
		KeepComments:        !flags["removeComments"],
		KeepWhitespace:      !flags["collapseWhitespace"],
		KeepDefaultAttrVals: !flags["removeRedundantAttributes"],
		KeepQuotes:          !flags["removeAttributeQuotes"],
		KeepDocumentTags:    true,
		KeepEndTags:         true,
	})
	// Comments inside style and script bodies only go away when those
	// bodies are minified.
	if flags["minifyCSS"] || flags["removeCommentsFromCDATA"] {
		m.AddFunc(mimeCSS, css.Minify)
	}
	if flags["minifyJS"] || flags["removeCommentsFromCDATA"] {
		m.AddFunc(mimeJS, js.Minify)
	}
	return m, nil
}
