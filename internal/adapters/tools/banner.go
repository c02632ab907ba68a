package tools

import (
	"context"

	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/zerr"
)

// KindBanner adds a banner to the top or bottom of files in place.
const KindBanner = "banner"

const (
	positionTop    = "top"
	positionBottom = "bottom"
)

// Banner implements the banner task kind.
//
// Options:
//
//	banner     the text to insert
//	position   top (default) or bottom
//	linebreak  put a newline between banner and content (default true)
type Banner struct {
	files fileSet
}

// Kind implements ports.Tool.
func (b *Banner) Kind() string { return KindBanner }

// Run implements ports.Tool.
func (b *Banner) Run(_ context.Context, inv domain.Invocation) error {
	opts := inv.Task.Options
	text, err := opts.String("banner", "")
	if err != nil {
		return err
	}
	position, err := opts.String("position", positionTop)
	if err != nil {
		return err
	}
	if position != positionTop && position != positionBottom {
		return zerr.With(zerr.With(domain.ErrInvalidOption, "option", "position"), "value", position)
	}
	linebreak, err := opts.Bool("linebreak", true)
	if err != nil {
		return err
	}

	jobs, err := b.files.jobs(inv)
	if err != nil {
		return err
	}
	for _, j := range jobs {
		for _, pair := range j.outputs() {
			data, err := readFile(inv.Env, pair[0])
			if err != nil {
				return err
			}
			if err := writeFile(inv.Env, pair[1], addBanner(data, text, position, linebreak)); err != nil {
				return err
			}
			_, _ = inv.Stdout.Write([]byte("Banner added to " + rel(inv.Env, pair[1]) + "\n"))
		}
	}
	return nil
}

func addBanner(data []byte, banner, position string, linebreak bool) []byte {
	sep := ""
	if linebreak {
		sep = "\n"
	}
	out := make([]byte, 0, len(data)+len(banner)+len(sep))
	if position == positionBottom {
		out = append(out, data...)
		out = append(out, sep...)
		return append(out, banner...)
	}
	out = append(out, banner...)
	out = append(out, sep...)
	return append(out, data...)
}
