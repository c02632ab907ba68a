package domain

import (
	"fmt"
	"maps"

	"go.trai.ch/zerr"
)

// Options is the resolved option blob of a task.
// Values are the shapes produced by YAML decoding: string, bool, int, float64,
// []any and map[string]any.
type Options map[string]any

// Merge returns a copy of base with overlay applied on top (shallow).
func Merge(base, overlay Options) Options {
	out := make(Options, len(base)+len(overlay))
	maps.Copy(out, base)
	maps.Copy(out, overlay)
	return out
}

// Has reports whether the key is set.
func (o Options) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// String returns a string option or def when unset.
func (o Options) String(key, def string) (string, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return def, nil
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case int, int64, float64, bool:
		return fmt.Sprint(s), nil
	default:
		return "", invalidOption(key, "string", v)
	}
}

// Bool returns a boolean option or def when unset.
func (o Options) Bool(key string, def bool) (bool, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, invalidOption(key, "bool", v)
	}
	return b, nil
}

// Float returns a numeric option or def when unset.
func (o Options) Float(key string, def float64) (float64, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, invalidOption(key, "number", v)
	}
}

// Strings returns a list-of-strings option. A single string is accepted as a
// one-element list.
func (o Options) Strings(key string) ([]string, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return nil, nil
	}
	return ToStrings(key, v)
}

// Map returns a nested option mapping.
func (o Options) Map(key string) (Options, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return Options{}, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		if opts, isOpts := v.(Options); isOpts {
			return opts, nil
		}
		return nil, invalidOption(key, "mapping", v)
	}
	return Options(m), nil
}

// ToStrings converts a decoded YAML value into a string list.
func ToStrings(key string, v any) ([]string, error) {
	switch s := v.(type) {
	case string:
		return []string{s}, nil
	case []string:
		return s, nil
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, invalidOption(key, "list of strings", v)
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, invalidOption(key, "list of strings", v)
	}
}

func invalidOption(key, want string, got any) error {
	err := zerr.With(ErrInvalidOption, "option", key)
	err = zerr.With(err, "expected", want)
	return zerr.With(err, "got", fmt.Sprintf("%T", got))
}
