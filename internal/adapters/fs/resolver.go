package fs

import (
	"errors"
	iofs "io/fs"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/letterpress/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FileResolver = (*Resolver)(nil)

const negationPrefix = "!"

// Resolver expands ordered include/exclude glob patterns.
type Resolver struct {
	walker *Walker
}

// NewResolver creates a new Resolver.
func NewResolver(walker *Walker) *Resolver {
	return &Resolver{walker: walker}
}

// pattern is a compiled entry of a pattern list.
type pattern struct {
	raw     string
	negate  bool
	literal bool
	globs   []glob.Glob
}

func (p pattern) matches(rel string) bool {
	if p.literal {
		return rel == p.raw
	}
	for _, g := range p.globs {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// base returns the static directory prefix of a glob pattern.
func (p pattern) base() string {
	segments := strings.Split(p.raw, "/")
	var static []string
	for _, seg := range segments[:len(segments)-1] {
		if hasMeta(seg) {
			break
		}
		static = append(static, seg)
	}
	return strings.Join(static, "/")
}

// Resolve applies the patterns in order. Inclusions append their sorted
// matches to the working set, exclusions drop matching paths collected so far.
func (r *Resolver) Resolve(patterns []string, root string) ([]string, error) {
	compiled, err := compilePatterns(patterns)
	if err != nil {
		return nil, err
	}

	var result []string
	seen := make(map[string]bool)

	for _, p := range compiled {
		if p.negate {
			result = slices.DeleteFunc(result, func(rel string) bool {
				if p.matches(rel) {
					delete(seen, rel)
					return true
				}
				return false
			})
			continue
		}

		matches, err := r.expand(p, root)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				result = append(result, m)
			}
		}
	}

	return result, nil
}

// Match reports whether rel is selected by the patterns, honoring order.
func (r *Resolver) Match(patterns []string, rel string) (bool, error) {
	compiled, err := compilePatterns(patterns)
	if err != nil {
		return false, err
	}

	rel = normalize(rel)
	selected := false
	for _, p := range compiled {
		if p.matches(rel) {
			selected = !p.negate
		}
	}
	return selected, nil
}

func (r *Resolver) expand(p pattern, root string) ([]string, error) {
	if p.literal {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(p.raw))); err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				return nil, zerr.With(domain.ErrSourceNotFound, "path", p.raw)
			}
			return nil, zerr.With(zerr.Wrap(err, domain.ErrSourceReadFailed.Error()), "path", p.raw)
		}
		return []string{p.raw}, nil
	}

	var matches []string
	for rel := range r.walker.WalkFiles(root, p.base()) {
		if p.matches(rel) {
			matches = append(matches, rel)
		}
	}
	slices.Sort(matches)
	return matches, nil
}

func compilePatterns(patterns []string) ([]pattern, error) {
	out := make([]pattern, 0, len(patterns))
	for _, raw := range patterns {
		p := pattern{}
		if strings.HasPrefix(raw, negationPrefix) {
			p.negate = true
			raw = strings.TrimPrefix(raw, negationPrefix)
		}
		p.raw = normalize(raw)
		if p.raw == "" {
			return nil, zerr.With(domain.ErrMalformedGlob, "pattern", raw)
		}

		if !hasMeta(p.raw) {
			p.literal = true
			out = append(out, p)
			continue
		}

		if !balanced(p.raw) {
			return nil, zerr.With(domain.ErrMalformedGlob, "pattern", raw)
		}

		for _, variant := range globVariants(p.raw) {
			g, err := glob.Compile(variant, '/')
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, domain.ErrMalformedGlob.Error()), "pattern", raw)
			}
			p.globs = append(p.globs, g)
		}
		out = append(out, p)
	}
	return out, nil
}

// balanced reports whether every "[" and "{" in p is closed. gobwas/glob
// accepts an unclosed "{" and then never matches.
func balanced(p string) bool {
	braces := 0
	inClass := false
	for i := 0; i < len(p); i++ {
		switch c := p[i]; {
		case c == '\\':
			i++
		case inClass:
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
		case c == '{':
			braces++
		case c == '}':
			if braces == 0 {
				return false
			}
			braces--
		}
	}
	return !inClass && braces == 0
}

// globVariants lets "**" stand for zero directories too: "a/**/b" also
// matches "a/b" and "**/b" also matches "b".
func globVariants(p string) []string {
	seen := map[string]bool{p: true}
	queue := []string{p}

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]

		var next []string
		for i := 0; ; {
			j := strings.Index(v[i:], "/**/")
			if j < 0 {
				break
			}
			j += i
			next = append(next, v[:j]+v[j+3:])
			i = j + 1
		}
		if trimmed, ok := strings.CutPrefix(v, "**/"); ok {
			next = append(next, trimmed)
		}

		for _, n := range next {
			if !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}

	variants := slices.Collect(maps.Keys(seen))
	slices.Sort(variants)
	return variants
}

func normalize(p string) string {
	p = filepath.ToSlash(p)
	if p == "" {
		return ""
	}
	cleaned := path.Clean(p)
	if cleaned == "." {
		return ""
	}
	return strings.TrimPrefix(cleaned, "./")
}

func hasMeta(s string) bool {
	return strings.ContainsAny(s, `*?[{`)
}
