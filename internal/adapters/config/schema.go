package config

import (
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// Top-level keys of letterpress.yaml. Any other top-level key is a free
// variable available to templates.
const (
	keyVersion = "version"
	keyRoot    = "root"
	keyLoc     = "loc"
	keyPkg     = "pkg"
	keyTasks   = "tasks"
	keyAliases = "aliases"
	keyWatch   = "watch"
	keyOptions = "options"
	keyFiles   = "files"
	keySrc     = "src"
	keyDest    = "dest"
	keyCwd     = "cwd"
	keyExpand  = "expand"
	keyFlatten = "flatten"
)

// targetKeys are the keys of a target that describe files rather than options.
var targetKeys = []string{keyOptions, keyFiles, keySrc, keyDest, keyCwd, keyExpand, keyFlatten}

// document keeps the parsed YAML node tree so mapping keys can be visited in
// declaration order after the blob went through map-based template resolution.
// Declared keys are reported after template resolution when resolved is set.
type document struct {
	root     *yaml.Node
	resolved map[string]any
}

func newDocument(n *yaml.Node) document {
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	return document{root: n}
}

// withResolved returns a copy of d whose keys resolve against blob.
func (d document) withResolved(blob map[string]any) document {
	d.resolved = blob
	return d
}

func (d document) key(raw string) string {
	if d.resolved == nil {
		return raw
	}
	return resolveKey(d.resolved, raw)
}

// order returns the keys of m in the order they were declared at path.
func (d document) order(m map[string]any, path ...string) []string {
	return orderKeys(m, d.keys(path...))
}

// orderKeys returns the keys of m in declared order, followed by any
// remaining keys sorted.
func orderKeys(m map[string]any, declared []string) []string {
	out := make([]string, 0, len(m))
	seen := make(map[string]bool, len(m))
	for _, k := range declared {
		if _, ok := m[k]; ok && !seen[k] {
			out = append(out, k)
			seen[k] = true
		}
	}
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if !seen[k] {
			out = append(out, k)
		}
	}
	return out
}

func (d document) keys(path ...string) []string {
	n := d.root
	for _, p := range path {
		n = d.child(n, p)
		if n == nil {
			return nil
		}
	}
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		keys = append(keys, d.key(n.Content[i].Value))
	}
	return keys
}

func (d document) child(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if d.key(n.Content[i].Value) == key {
			return n.Content[i+1]
		}
	}
	return nil
}
