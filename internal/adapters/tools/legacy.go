package tools

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.trai.ch/letterpress/internal/core/domain"
)

// KindLegacy produces a stylesheet for browsers without media queries.
const KindLegacy = "legacy"

// emPx is the pixel size of one em used to compare px breakpoints.
const emPx = 16

// Legacy implements the legacy task kind. Media queries whose width
// conditions hold at legacyWidth are unwrapped so their rules apply
// unconditionally, queries that do not hold are dropped, and queries
// without width conditions are kept as they are.
//
// Options:
//
//	legacyWidth    the viewport width in em to flatten for (default 60)
//	overridesOnly  emit only the rules that came from flattened queries
type Legacy struct {
	files fileSet
}

// Kind implements ports.Tool.
func (l *Legacy) Kind() string { return KindLegacy }

// Run implements ports.Tool.
func (l *Legacy) Run(_ context.Context, inv domain.Invocation) error {
	opts := inv.Task.Options
	width, err := opts.Float("legacyWidth", 60)
	if err != nil {
		return err
	}
	overridesOnly, err := opts.Bool("overridesOnly", false)
	if err != nil {
		return err
	}

	jobs, err := l.files.jobs(inv)
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
			out, err := FlattenMediaQueries(data, width, overridesOnly)
			if err != nil {
				return toolError(inv.Env, pair[0], []string{err.Error()})
			}
			if err := writeFile(inv.Env, pair[1], out); err != nil {
				return err
			}
			created(inv.Stdout, inv.Env, pair[1])
		}
	}
	return nil
}

type mediaAction int

const (
	mediaKeep mediaAction = iota
	mediaFlatten
	mediaDrop
)

var widthFeature = regexp.MustCompile(`\(\s*(min|max)-width\s*:\s*([0-9]*\.?[0-9]+)\s*(em|rem|px)\s*\)`)

// evaluateMedia decides what happens to a media query at the given width in em.
func evaluateMedia(query string, width float64) mediaAction {
	query = strings.ToLower(query)
	features := widthFeature.FindAllStringSubmatch(query, -1)
	if len(features) == 0 {
		return mediaKeep
	}
	if strings.Contains(query, "print") && !strings.Contains(query, "screen") {
		return mediaDrop
	}

	for _, f := range features {
		value, err := strconv.ParseFloat(f[2], 64)
		if err != nil {
			return mediaKeep
		}
		if f[3] == "px" {
			value /= emPx
		}
		if f[1] == "min" && value > width {
			return mediaDrop
		}
		if f[1] == "max" && value < width {
			return mediaDrop
		}
	}
	return mediaFlatten
}

// FlattenMediaQueries rewrites a stylesheet for a fixed viewport width.
// Tokens outside affected media queries are copied verbatim.
func FlattenMediaQueries(src []byte, width float64, overridesOnly bool) ([]byte, error) {
	l := css.NewLexer(parse.NewInput(bytes.NewReader(src)))

	var out bytes.Buffer
	// One entry per open block: the action of the media query that opened it,
	// or mediaKeep for any other block.
	var stack []mediaAction

	emitting := func() bool {
		flattened := false
		for _, a := range stack {
			if a == mediaDrop {
				return false
			}
			if a == mediaFlatten {
				flattened = true
			}
		}
		return !overridesOnly || flattened
	}

	var prelude [][]byte
	inMedia := false

	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			if errors.Is(l.Err(), io.EOF) {
				return out.Bytes(), nil
			}
			return nil, l.Err()
		}

		if inMedia {
			if tt != css.LeftBraceToken {
				prelude = append(prelude, bytes.Clone(data))
				continue
			}
			inMedia = false
			action := evaluateMedia(string(bytes.Join(prelude, nil)), width)
			if action == mediaKeep && emitting() {
				out.WriteString("@media")
				for _, p := range prelude {
					out.Write(p)
				}
				out.Write(data)
			}
			stack = append(stack, action)
			prelude = prelude[:0]
			continue
		}

		switch tt {
		case css.AtKeywordToken:
			if strings.EqualFold(string(data), "@media") {
				inMedia = true
				continue
			}
		case css.LeftBraceToken:
			if emitting() {
				out.Write(data)
			}
			stack = append(stack, mediaKeep)
			continue
		case css.RightBraceToken:
			if len(stack) == 0 {
				break
			}
			action := stack[len(stack)-1]
			emit := emitting()
			stack = stack[:len(stack)-1]
			if action == mediaKeep && emit {
				out.Write(data)
			}
			continue
		}

		if emitting() {
			out.Write(data)
		}
	}
}
