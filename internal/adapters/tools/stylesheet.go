package tools

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/letterpress/internal/core/ports"
	"go.trai.ch/zerr"
)

// KindStylesheet compiles stylesheets.
const KindStylesheet = "stylesheet"

const (
	compilerESBuild = "esbuild"
	compilerLessc   = "lessc"
)

// assetExtensions stay as url() references when bundling.
var assetExtensions = []string{
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.svg", "*.webp",
	"*.eot", "*.ttf", "*.otf", "*.woff", "*.woff2", "*.htc",
}

// Stylesheet implements the stylesheet task kind. Every source is compiled
// on its own and the results are joined into dest.
//
// Options:
//
//	compiler  esbuild (default) or lessc. esbuild bundles @imports and
//	          reads .less files as plain CSS, so Less variables are
//	          rejected and mixins or nesting need lessc.
//	command   the lessc binary (default "lessc")
//	paths     include directories, glob patterns relative to the root
type Stylesheet struct {
	files    fileSet
	executor ports.Executor
}

// Kind implements ports.Tool.
func (s *Stylesheet) Kind() string { return KindStylesheet }

// Run implements ports.Tool.
func (s *Stylesheet) Run(ctx context.Context, inv domain.Invocation) error {
	opts := inv.Task.Options
	compiler, err := opts.String("compiler", compilerESBuild)
	if err != nil {
		return err
	}
	command, err := opts.String("command", compilerLessc)
	if err != nil {
		return err
	}
	patterns, err := opts.Strings("paths")
	if err != nil {
		return err
	}
	paths, err := includePaths(inv.Env, patterns)
	if err != nil {
		return err
	}

	var compile func(src string) ([]byte, error)
	switch compiler {
	case compilerESBuild:
		compile = func(src string) ([]byte, error) {
			return bundleCSS(inv.Env, src, paths)
		}
	case compilerLessc:
		compile = func(src string) ([]byte, error) {
			return s.lessc(ctx, inv, command, src, paths)
		}
	default:
		return zerr.With(zerr.With(domain.ErrInvalidOption, "option", "compiler"), "value", compiler)
	}

	jobs, err := s.files.jobs(inv)
	if err != nil {
		return err
	}
	for _, j := range jobs {
		if err := requireSources(inv, j); err != nil {
			return err
		}
		if j.dest == "" {
			return domainMissingDest(inv)
		}

		var out [][]byte
		for _, src := range j.sources {
			css, err := compile(src)
			if err != nil {
				return err
			}
			out = append(out, css)
		}
		if err := writeFile(inv.Env, j.dest, bytes.Join(out, []byte("\n"))); err != nil {
			return err
		}
		created(inv.Stdout, inv.Env, j.dest)
	}
	return nil
}

func bundleCSS(env domain.Env, src string, paths []string) ([]byte, error) {
	result := api.Build(api.BuildOptions{
		EntryPoints: []string{src},
		Bundle:      true,
		Write:       false,
		Outfile:     filepath.Join(filepath.Dir(src), "out.css"),
		NodePaths:   paths,
		External:    assetExtensions,
		Plugins:     []api.Plugin{plainLess},
		LogLevel:    api.LogLevelSilent,
		Charset:     api.CharsetUTF8,
	})
	if len(result.Errors) > 0 {
		return nil, toolError(env, src, formatMessages(result.Errors, api.ErrorMessage))
	}
	for _, f := range result.OutputFiles {
		if strings.HasSuffix(f.Path, ".css") {
			return f.Contents, nil
		}
	}
	return nil, toolError(env, src, []string{"no CSS output produced"})
}

// plainLess loads .less files as CSS and refuses the ones declaring Less
// variables, which esbuild would pass through untouched.
var plainLess = api.Plugin{
	Name: "plain-less",
	Setup: func(build api.PluginBuild) {
		build.OnLoad(api.OnLoadOptions{Filter: `\.less$`}, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
			data, err := os.ReadFile(args.Path)
			if err != nil {
				return api.OnLoadResult{}, err
			}
			if name, ok := lessVariable(data); ok {
				return api.OnLoadResult{}, fmt.Errorf("Less variable %s needs compiler: %s", name, compilerLessc)
			}
			contents := string(data)
			return api.OnLoadResult{Contents: &contents, Loader: api.LoaderCSS}, nil
		})
	},
}

// lessVariable reports the first "@name:" declaration in data.
func lessVariable(data []byte) (string, bool) {
	l := css.NewLexer(parse.NewInputBytes(data))
	pending := ""
	for {
		tt, text := l.Next()
		switch tt {
		case css.ErrorToken:
			return "", false
		case css.WhitespaceToken, css.CommentToken:
			continue
		case css.AtKeywordToken:
			pending = string(text)
			continue
		case css.ColonToken:
			if pending != "" {
				return pending, true
			}
		}
		pending = ""
	}
}

func (s *Stylesheet) lessc(ctx context.Context, inv domain.Invocation, command, src string, paths []string) ([]byte, error) {
	data, err := readFile(inv.Env, src)
	if err != nil {
		return nil, err
	}

	args := []string{command}
	if len(paths) > 0 {
		args = append(args, "--include-path="+strings.Join(paths, string(filepath.ListSeparator)))
	}
	args = append(args, "-")

	var stdout bytes.Buffer
	cmd := domain.Command{
		Args:  args,
		Dir:   filepath.Dir(src),
		Stdin: bytes.NewReader(data),
	}
	if err := s.executor.Execute(ctx, cmd, &stdout, inv.Stderr); err != nil {
		return nil, zerr.With(err, "path", rel(inv.Env, src))
	}
	return stdout.Bytes(), nil
}

// includePaths expands directory glob patterns into absolute paths.
func includePaths(env domain.Env, patterns []string) ([]string, error) {
	var out []string
	for _, p := range patterns {
		matches, err := filepath.Glob(env.Abs(p))
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrMalformedGlob.Error()), "pattern", p)
		}
		slices.Sort(matches)
		out = append(out, matches...)
	}
	return slices.Compact(out), nil
}
