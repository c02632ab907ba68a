package tools

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/vanng822/go-premailer/premailer"
	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/zerr"
)

// KindInline inlines CSS into HTML for email clients.
const KindInline = "inline"

// Inline implements the inline task kind. Local stylesheets linked from the
// document are embedded first, then every style rule is moved into style
// attributes.
//
// Options:
//
//	removeClasses      drop class attributes after inlining (default false)
//	cssToAttributes    also set width, bgcolor and friends (default true)
//	keepBangImportant  keep !important in inlined declarations (default false)
type Inline struct {
	files fileSet
}

// Kind implements ports.Tool.
func (t *Inline) Kind() string { return KindInline }

// Run implements ports.Tool.
func (t *Inline) Run(_ context.Context, inv domain.Invocation) error {
	opts := inv.Task.Options
	options := premailer.NewOptions()
	var err error
	if options.RemoveClasses, err = opts.Bool("removeClasses", false); err != nil {
		return err
	}
	if options.CssToAttributes, err = opts.Bool("cssToAttributes", true); err != nil {
		return err
	}
	if options.KeepBangImportant, err = opts.Bool("keepBangImportant", false); err != nil {
		return err
	}

	jobs, err := t.files.jobs(inv)
	if err != nil {
		return err
	}
	for _, j := range jobs {
		if err := requireSources(inv, j); err != nil {
			return err
		}
		for _, pair := range j.outputs() {
			html, err := inlineFile(inv.Env, pair[0], options)
			if err != nil {
				return err
			}
			if err := writeFile(inv.Env, pair[1], []byte(html)); err != nil {
				return err
			}
			created(inv.Stdout, inv.Env, pair[1])
		}
	}
	return nil
}

func inlineFile(env domain.Env, src string, options *premailer.Options) (string, error) {
	data, err := readFile(env, src)
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrToolFailed.Error()), "path", rel(env, src))
	}

	var linkErr error
	doc.Find(`link[rel="stylesheet"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok || isRemote(href) {
			return true
		}
		css, err := readFile(env, filepath.Join(filepath.Dir(src), filepath.FromSlash(href)))
		if err != nil {
			linkErr = err
			return false
		}
		s.ReplaceWithHtml("<style>" + string(css) + "</style>")
		return true
	})
	if linkErr != nil {
		return "", linkErr
	}

	html, err := premailer.NewPremailer(doc, options).Transform()
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrToolFailed.Error()), "path", rel(env, src))
	}
	return html, nil
}

func isRemote(href string) bool {
	return strings.HasPrefix(href, "//") || strings.Contains(href, "://")
}
