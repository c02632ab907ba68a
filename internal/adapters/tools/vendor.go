package tools

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/letterpress/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// KindVendor copies installed front-end packages into the source tree.
const KindVendor = "vendor"

var manifestNames = []string{"bower.json", ".bower.json", "package.json"}

var assetTypes = map[string]string{
	".png": "img", ".jpg": "img", ".jpeg": "img", ".gif": "img", ".svg": "img", ".webp": "img", ".ico": "img",
	".eot": "fonts", ".ttf": "fonts", ".otf": "fonts", ".woff": "fonts", ".woff2": "fonts",
	".js": "js", ".css": "css", ".less": "less",
}

// Vendor implements the vendor task kind. For every component under
// componentsDir the files named by its manifest's main entry are copied to
// targetDir/<layout>/<file>, where the layout directory is looked up by the
// file's type (img, fonts, js, css, less) and defaults to the component name.
//
// Options:
//
//	componentsDir   installed packages (default bower_components)
//	targetDir       destination directory (required)
//	install         run installCommand first (default false)
//	installCommand  default "bower install"
//	cleanTargetDir  remove targetDir first (default false)
//	layout          mapping of file type to directory relative to targetDir
type Vendor struct {
	executor ports.Executor
}

// Kind implements ports.Tool.
func (v *Vendor) Kind() string { return KindVendor }

// Run implements ports.Tool.
func (v *Vendor) Run(ctx context.Context, inv domain.Invocation) error {
	opts := inv.Task.Options
	componentsDir, err := opts.String("componentsDir", "bower_components")
	if err != nil {
		return err
	}
	targetDir, err := opts.String("targetDir", "")
	if err != nil {
		return err
	}
	if targetDir == "" {
		return zerr.With(zerr.With(domain.ErrInvalidOption, "option", "targetDir"), "task", inv.Task.Name)
	}
	install, err := opts.Bool("install", false)
	if err != nil {
		return err
	}
	installCommand, err := opts.Strings("installCommand")
	if err != nil {
		return err
	}
	if len(installCommand) == 0 {
		installCommand = []string{"bower", "install"}
	}
	clean, err := opts.Bool("cleanTargetDir", false)
	if err != nil {
		return err
	}
	layoutOpts, err := opts.Map("layout")
	if err != nil {
		return err
	}
	layout := make(map[string]string, len(layoutOpts))
	for _, k := range sortedOptionKeys(layoutOpts) {
		if layout[k], err = layoutOpts.String(k, ""); err != nil {
			return err
		}
	}

	if install {
		cmd := domain.Command{Args: installCommand, Dir: inv.Env.Root()}
		if err := v.executor.Execute(ctx, cmd, inv.Stdout, inv.Stderr); err != nil {
			return err
		}
	}

	target := inv.Env.Abs(targetDir)
	if clean {
		if err := os.RemoveAll(target); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrDestinationWriteFailed.Error()), "path", targetDir)
		}
	}

	components := inv.Env.Abs(componentsDir)
	entries, err := os.ReadDir(components)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return zerr.With(domain.ErrSourceNotFound, "path", componentsDir)
		}
		return zerr.With(zerr.Wrap(err, domain.ErrSourceReadFailed.Error()), "path", componentsDir)
	}

	copied := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		dir := filepath.Join(components, name)

		mains, err := componentMain(inv.Env, dir)
		if err != nil {
			return err
		}
		if len(mains) == 0 {
			_, _ = fmt.Fprintf(inv.Stderr, "Component %s has no main files, skipped.\n", name)
			continue
		}

		for _, main := range mains {
			src := filepath.Join(dir, filepath.FromSlash(main))
			if _, err := os.Stat(src); err != nil {
				return zerr.With(zerr.With(domain.ErrSourceNotFound, "path", rel(inv.Env, src)), "component", name)
			}
			sub, ok := layout[assetTypes[strings.ToLower(path.Ext(main))]]
			if !ok {
				sub = name
			}
			dest := filepath.Join(target, filepath.FromSlash(sub), path.Base(main))
			if err := copyFile(inv.Env, src, dest); err != nil {
				return err
			}
			copied++
		}
		_, _ = fmt.Fprintf(inv.Stdout, "%s copied.\n", name)
	}

	_, _ = fmt.Fprintf(inv.Stdout, "%s copied to %s.\n", pluralize(copied, "file"), rel(inv.Env, target))
	return nil
}

// componentMain reads the main entry of the first manifest found in dir.
func componentMain(env domain.Env, dir string) ([]string, error) {
	for _, name := range manifestNames {
		p := filepath.Join(dir, name)
		data, err := os.ReadFile(p)
		if errors.Is(err, iofs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrManifestReadFailed.Error()), "path", rel(env, p))
		}

		var manifest struct {
			Main any `yaml:"main"`
		}
		if err := yaml.Unmarshal(data, &manifest); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrManifestReadFailed.Error()), "path", rel(env, p))
		}
		if manifest.Main == nil {
			return nil, nil
		}
		mains, err := domain.ToStrings("main", manifest.Main)
		if err != nil {
			return nil, zerr.With(err, "path", rel(env, p))
		}
		for i, m := range mains {
			mains[i] = path.Clean(strings.TrimPrefix(filepath.ToSlash(m), "./"))
		}
		return mains, nil
	}
	return nil, nil
}
