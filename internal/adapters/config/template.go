package config

import (
	"fmt"
	"maps"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"text/template"

	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/zerr"
)

// maxTemplatePasses bounds the number of substitution rounds before the
// references are considered cyclic.
const maxTemplatePasses = 16

const templateOpen = "{{"

// wholeReference matches a string that is exactly one field reference.
var wholeReference = regexp.MustCompile(`^\s*\{\{-?\s*(\.[A-Za-z0-9_]+(?:\.[A-Za-z0-9_]+)*)\s*-?\}\}\s*$`)

// ResolveTemplates substitutes every template reference in blob, evaluating
// each against the whole blob, until no reference remains.
// A string consisting of exactly one field reference is replaced by the raw
// referenced value. The input is not modified.
func ResolveTemplates(blob map[string]any) (map[string]any, error) {
	current := blob
	for range maxTemplatePasses {
		if !containsTemplate(current) {
			return cloneValue(current).(map[string]any), nil
		}

		r := &templateResolver{data: current}
		next, err := r.value(current, "")
		if err != nil {
			return nil, err
		}

		nextMap := next.(map[string]any)
		if reflect.DeepEqual(nextMap, current) {
			return nil, zerr.With(domain.ErrTemplateCycle, "template", firstTemplate(current))
		}
		current = nextMap
	}

	if containsTemplate(current) {
		return nil, zerr.With(domain.ErrTemplateCycle, "template", firstTemplate(current))
	}
	return current, nil
}

type templateResolver struct {
	data map[string]any
}

func (r *templateResolver) value(v any, path string) (any, error) {
	switch val := v.(type) {
	case string:
		return r.str(val, path)
	case map[string]any:
		out := make(map[string]any, len(val))
		for _, k := range sortedKeys(val) {
			key, err := r.key(k, path)
			if err != nil {
				return nil, err
			}
			if _, dup := out[key]; dup {
				err := zerr.With(domain.ErrDuplicateKey, "key", joinPath(path, key))
				return nil, zerr.With(err, "template", k)
			}
			resolved, err := r.value(val[k], joinPath(path, key))
			if err != nil {
				return nil, err
			}
			out[key] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			resolved, err := r.value(item, path)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return v, nil
	}
}

func (r *templateResolver) str(s, path string) (any, error) {
	if !strings.Contains(s, templateOpen) {
		return s, nil
	}

	if m := wholeReference.FindStringSubmatch(s); m != nil {
		raw, ok := lookup(r.data, m[1])
		if !ok {
			return nil, unresolved(s, path, nil)
		}
		return cloneValue(raw), nil
	}

	tmpl, err := template.New(path).Option("missingkey=error").Parse(s)
	if err != nil {
		return nil, unresolved(s, path, err)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, r.data); err != nil {
		return nil, unresolved(s, path, err)
	}
	return sb.String(), nil
}

// key resolves a mapping key. Keys are always strings, so a whole reference
// to a non-string value is formatted.
func (r *templateResolver) key(k, path string) (string, error) {
	if !strings.Contains(k, templateOpen) {
		return k, nil
	}
	v, err := r.str(k, path)
	if err != nil {
		return "", err
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return fmt.Sprint(v), nil
}

// resolveKey resolves a declared key against an already resolved blob. The
// key is returned unchanged when it cannot be resolved.
func resolveKey(data map[string]any, k string) string {
	r := &templateResolver{data: data}
	key, err := r.key(k, "")
	if err != nil {
		return k
	}
	return key
}

func unresolved(s, path string, cause error) error {
	var err error = domain.ErrUnresolvedTemplate
	if cause != nil {
		err = zerr.Wrap(cause, domain.ErrUnresolvedTemplate.Error())
	}
	err = zerr.With(err, "template", s)
	if path != "" {
		err = zerr.With(err, "key", path)
	}
	return err
}

// lookup follows a ".a.b.c" field path through nested mappings.
func lookup(data map[string]any, ref string) (any, bool) {
	var cur any = data
	for part := range strings.SplitSeq(strings.TrimPrefix(ref, "."), ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func containsTemplate(v any) bool {
	return firstTemplate(v) != ""
}

func firstTemplate(v any) string {
	switch val := v.(type) {
	case string:
		if strings.Contains(val, templateOpen) {
			return val
		}
	case map[string]any:
		for _, k := range sortedKeys(val) {
			if strings.Contains(k, templateOpen) {
				return k
			}
			if s := firstTemplate(val[k]); s != "" {
				return s
			}
		}
	case []any:
		for _, item := range val {
			if s := firstTemplate(item); s != "" {
				return s
			}
		}
	}
	return ""
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
