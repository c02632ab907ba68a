// Package config provides the pipeline loader for letterpress.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/letterpress/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the pipeline file version understood by the loader.
const SupportedVersion = "1"

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the pipeline file at path. When path is a directory, or names a
// pipeline file that does not exist, the file is searched for upwards.
func (l *Loader) Load(path string) (*domain.Pipeline, error) {
	configPath, err := l.locate(path)
	if err != nil {
		return nil, err
	}

	doc, blob, err := readDocument(configPath)
	if err != nil {
		return nil, err
	}

	if v, ok := blob[keyVersion]; ok && fmt.Sprint(v) != SupportedVersion {
		l.Logger.Warn(fmt.Sprintf("unsupported version %q in %s, assuming %q", fmt.Sprint(v), domain.PipelineFileName, SupportedVersion))
	}

	root, err := resolveRoot(configPath, blob[keyRoot])
	if err != nil {
		return nil, err
	}

	if err := loadManifest(root, blob); err != nil {
		return nil, err
	}

	resolved, err := ResolveTemplates(blob)
	if err != nil {
		return nil, zerr.With(err, "config", configPath)
	}

	locations, err := parseLocations(resolved[keyLoc])
	if err != nil {
		return nil, err
	}

	b := &builder{
		doc:      doc.withResolved(resolved),
		pipeline: domain.NewPipeline(domain.NewEnv(root, locations)),
	}
	if err := b.tasks(resolved[keyTasks]); err != nil {
		return nil, err
	}
	if err := b.aliases(resolved[keyAliases]); err != nil {
		return nil, err
	}
	if err := b.watch(resolved[keyWatch]); err != nil {
		return nil, err
	}

	if b.pipeline.TaskCount() == 0 {
		l.Logger.Warn(fmt.Sprintf("no tasks declared in %s", configPath))
	}

	return b.pipeline, nil
}

// DiscoverRoot walks up from cwd to find the directory holding the pipeline file.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	configPath, err := findConfiguration(cwd)
	if err != nil {
		return "", err
	}
	return filepath.Dir(configPath), nil
}

func (l *Loader) locate(path string) (string, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return findConfiguration(path)
	case err == nil:
		return path, nil
	case os.IsNotExist(err) && filepath.Base(path) == domain.PipelineFileName:
		dir, absErr := filepath.Abs(filepath.Dir(path))
		if absErr != nil {
			return "", zerr.Wrap(absErr, domain.ErrConfigNotFound.Error())
		}
		return findConfiguration(dir)
	default:
		return "", zerr.With(domain.ErrConfigNotFound, "path", path)
	}
}

func findConfiguration(cwd string) (string, error) {
	currentDir, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrConfigNotFound.Error())
	}

	for {
		candidate := filepath.Join(currentDir, domain.PipelineFileName)
		if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(domain.ErrConfigNotFound, "cwd", cwd)
}

func readDocument(configPath string) (document, map[string]any, error) {
	data, err := os.ReadFile(configPath) //nolint:gosec // path is provided by user
	if err != nil {
		return document{}, nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", configPath)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return document{}, nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", configPath)
	}

	blob := map[string]any{}
	if len(node.Content) > 0 {
		if err := node.Decode(&blob); err != nil {
			return document{}, nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", configPath)
		}
	}

	return newDocument(&node), blob, nil
}

func resolveRoot(configPath string, raw any) (string, error) {
	configDir, err := filepath.Abs(filepath.Dir(configPath))
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}
	if raw == nil {
		return configDir, nil
	}
	root, ok := raw.(string)
	if !ok {
		return "", zerr.With(domain.ErrConfigParseFailed, keyRoot, fmt.Sprint(raw))
	}
	if filepath.IsAbs(root) {
		return filepath.Clean(root), nil
	}
	return filepath.Join(configDir, root), nil
}

// loadManifest replaces a "pkg" path with the decoded JSON (or YAML) manifest
// it points to, so templates can reference fields like .pkg.version.
func loadManifest(root string, blob map[string]any) error {
	rel, ok := blob[keyPkg].(string)
	if !ok {
		return nil
	}

	path := rel
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, rel)
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the pipeline file
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrManifestReadFailed.Error()), "path", rel)
	}

	manifest := map[string]any{}
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrManifestReadFailed.Error()), "path", rel)
	}

	blob[keyPkg] = manifest
	return nil
}

func parseLocations(raw any) (map[string]string, error) {
	if raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, zerr.With(domain.ErrConfigParseFailed, keyLoc, fmt.Sprintf("%T", raw))
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch v.(type) {
		case map[string]any, []any, nil:
			return nil, zerr.With(domain.ErrConfigParseFailed, keyLoc, k)
		}
		out[k] = fmt.Sprint(v)
	}
	return out, nil
}

// builder assembles the pipeline from the resolved blob.
type builder struct {
	doc      document
	pipeline *domain.Pipeline
}

func (b *builder) tasks(raw any) error {
	if raw == nil {
		return nil
	}
	kinds, ok := raw.(map[string]any)
	if !ok {
		return zerr.With(domain.ErrConfigParseFailed, keyTasks, fmt.Sprintf("%T", raw))
	}

	for _, kind := range b.doc.order(kinds, keyTasks) {
		block, ok := kinds[kind].(map[string]any)
		if !ok {
			return zerr.With(domain.ErrConfigParseFailed, "kind", kind)
		}

		kindOptions, err := toOptions(keyOptions, block[keyOptions])
		if err != nil {
			return zerr.With(err, "kind", kind)
		}

		for _, target := range b.doc.order(block, keyTasks, kind) {
			if target == keyOptions {
				continue
			}
			name := domain.TaskName(kind, target)

			options, files, err := parseTarget(block[target], b.doc.keys(keyTasks, kind, target, keyFiles))
			if err != nil {
				return zerr.With(err, "task", name)
			}

			task, err := domain.NewTask(kind, target, domain.Merge(kindOptions, options), files)
			if err != nil {
				return zerr.With(err, "task", name)
			}
			if err := b.pipeline.AddTask(task); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *builder) aliases(raw any) error {
	if raw == nil {
		return nil
	}
	aliases, ok := raw.(map[string]any)
	if !ok {
		return zerr.With(domain.ErrConfigParseFailed, keyAliases, fmt.Sprintf("%T", raw))
	}

	for _, name := range b.doc.order(aliases, keyAliases) {
		entries, err := domain.ToStrings(name, aliases[name])
		if err != nil {
			return zerr.With(err, "alias", name)
		}
		if err := b.pipeline.AddAlias(name, entries); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) watch(raw any) error {
	if raw == nil {
		return nil
	}
	targets, ok := raw.(map[string]any)
	if !ok {
		return zerr.With(domain.ErrConfigParseFailed, keyWatch, fmt.Sprintf("%T", raw))
	}

	for _, name := range b.doc.order(targets, keyWatch) {
		entry, ok := targets[name].(map[string]any)
		if !ok {
			return zerr.With(domain.ErrConfigParseFailed, "watch", name)
		}

		files, err := domain.ToStrings(keyFiles, entry[keyFiles])
		if err != nil || len(files) == 0 {
			return zerr.With(zerr.With(domain.ErrConfigParseFailed, "watch", name), "missing", keyFiles)
		}
		tasks, err := domain.ToStrings(keyTasks, entry[keyTasks])
		if err != nil || len(tasks) == 0 {
			return zerr.With(zerr.With(domain.ErrConfigParseFailed, "watch", name), "missing", keyTasks)
		}

		if err := b.pipeline.AddWatchTarget(domain.WatchTarget{Name: name, Files: files, Tasks: tasks}); err != nil {
			return err
		}
	}
	return nil
}

// parseTarget normalises one target into its options and file mappings.
// Keys other than the file keys are folded into the options, beneath an
// explicit options mapping.
func parseTarget(raw any, filesOrder []string) (domain.Options, []domain.FileMapping, error) {
	switch v := raw.(type) {
	case nil:
		return domain.Options{}, nil, nil
	case string, []any:
		src, err := domain.ToStrings(keySrc, v)
		if err != nil {
			return nil, nil, err
		}
		return domain.Options{}, []domain.FileMapping{{Src: src}}, nil
	case map[string]any:
		explicit, err := toOptions(keyOptions, v[keyOptions])
		if err != nil {
			return nil, nil, err
		}
		extra := domain.Options{}
		for k, val := range v {
			if !slices.Contains(targetKeys, k) {
				extra[k] = val
			}
		}

		files, err := parseFiles(v, filesOrder)
		if err != nil {
			return nil, nil, err
		}
		// Without a file mapping, cwd is an ordinary option.
		if cwd, ok := v[keyCwd]; ok && len(files) == 0 {
			extra[keyCwd] = cwd
		}
		return domain.Merge(extra, explicit), files, nil
	default:
		return nil, nil, zerr.With(domain.ErrInvalidFileMapping, "got", fmt.Sprintf("%T", raw))
	}
}

func parseFiles(target map[string]any, filesOrder []string) ([]domain.FileMapping, error) {
	if raw, ok := target[keyFiles]; ok {
		switch files := raw.(type) {
		case map[string]any:
			// files: {dest: src | [src]}
			out := make([]domain.FileMapping, 0, len(files))
			for _, dest := range orderKeys(files, filesOrder) {
				src, err := domain.ToStrings(keySrc, files[dest])
				if err != nil {
					return nil, zerr.With(domain.ErrInvalidFileMapping, keyDest, dest)
				}
				out = append(out, domain.FileMapping{Src: src, Dest: dest})
			}
			return out, nil
		case []any:
			// files: [{src, dest, cwd, expand, flatten}]
			out := make([]domain.FileMapping, 0, len(files))
			for i, item := range files {
				m, ok := item.(map[string]any)
				if !ok {
					return nil, zerr.With(domain.ErrInvalidFileMapping, "index", i)
				}
				fm, err := parseMapping(m)
				if err != nil {
					return nil, zerr.With(err, "index", i)
				}
				out = append(out, fm)
			}
			return out, nil
		default:
			return nil, zerr.With(domain.ErrInvalidFileMapping, keyFiles, fmt.Sprintf("%T", raw))
		}
	}

	if _, ok := target[keySrc]; ok {
		fm, err := parseMapping(target)
		if err != nil {
			return nil, err
		}
		return []domain.FileMapping{fm}, nil
	}

	if _, ok := target[keyDest]; ok {
		return nil, zerr.With(domain.ErrInvalidFileMapping, "missing", keySrc)
	}
	return nil, nil
}

func parseMapping(m map[string]any) (domain.FileMapping, error) {
	opts := domain.Options(m)

	src, err := opts.Strings(keySrc)
	if err != nil {
		return domain.FileMapping{}, err
	}
	if len(src) == 0 {
		return domain.FileMapping{}, zerr.With(domain.ErrInvalidFileMapping, "missing", keySrc)
	}
	dest, err := opts.String(keyDest, "")
	if err != nil {
		return domain.FileMapping{}, err
	}
	cwd, err := opts.String(keyCwd, "")
	if err != nil {
		return domain.FileMapping{}, err
	}
	expand, err := opts.Bool(keyExpand, false)
	if err != nil {
		return domain.FileMapping{}, err
	}
	flatten, err := opts.Bool(keyFlatten, false)
	if err != nil {
		return domain.FileMapping{}, err
	}

	return domain.FileMapping{Src: src, Dest: dest, Cwd: cwd, Expand: expand, Flatten: flatten}, nil
}

func toOptions(key string, raw any) (domain.Options, error) {
	return domain.Options{key: raw}.Map(key)
}
