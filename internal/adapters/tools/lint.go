package tools

import (
	"context"
	"fmt"
	"regexp"
	"slices"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/letterpress/internal/core/ports"
	"go.trai.ch/zerr"
)

// KindLint checks JavaScript sources.
const KindLint = "lint"

var strictDirective = regexp.MustCompile(`(?m)^\s*["']use strict["']`)

// Lint implements the lint task kind. Every file is parsed with esbuild;
// syntax errors fail the task and warnings are reported.
//
// Options:
//
//	strict            require a "use strict" directive (default false)
//	warningsAsErrors  fail on warnings too (default false)
//	command           an external linter run with the files appended
type Lint struct {
	files    fileSet
	executor ports.Executor
}

// Kind implements ports.Tool.
func (l *Lint) Kind() string { return KindLint }

// Run implements ports.Tool.
func (l *Lint) Run(ctx context.Context, inv domain.Invocation) error {
	opts := inv.Task.Options
	strict, err := opts.Bool("strict", false)
	if err != nil {
		return err
	}
	warningsAsErrors, err := opts.Bool("warningsAsErrors", false)
	if err != nil {
		return err
	}
	command, err := opts.Strings("command")
	if err != nil {
		return err
	}

	files, err := l.files.sources(inv)
	if err != nil {
		return err
	}

	failed := 0
	for _, src := range files {
		data, err := readFile(inv.Env, src)
		if err != nil {
			return err
		}
		problems := lintSource(rel(inv.Env, src), string(data), strict, warningsAsErrors)
		for _, p := range problems {
			_, _ = fmt.Fprintln(inv.Stderr, p)
		}
		if len(problems) > 0 {
			failed++
		}
	}

	if len(command) > 0 && failed == 0 {
		args := slices.Concat(command, relAll(inv.Env, files))
		cmd := domain.Command{Args: args, Dir: inv.Env.Root()}
		if err := l.executor.Execute(ctx, cmd, inv.Stdout, inv.Stderr); err != nil {
			return zerr.Wrap(err, domain.ErrLintFailed.Error())
		}
	}

	if failed > 0 {
		return zerr.With(domain.ErrLintFailed, "files", pluralize(failed, "file"))
	}
	_, _ = fmt.Fprintf(inv.Stdout, "%s lint free.\n", pluralize(len(files), "file"))
	return nil
}

// lintSource returns the problems found in one file. Warnings only count
// when warningsAsErrors is set.
func lintSource(name, code string, strict, warningsAsErrors bool) []string {
	result := api.Transform(code, api.TransformOptions{
		Loader:     api.LoaderJS,
		Sourcefile: name,
		LogLevel:   api.LogLevelSilent,
	})

	problems := formatMessages(result.Errors, api.ErrorMessage)
	if warningsAsErrors {
		problems = append(problems, formatMessages(result.Warnings, api.WarningMessage)...)
	}
	if strict && len(result.Errors) == 0 && !strictDirective.MatchString(code) {
		problems = append(problems, name+": missing \"use strict\" statement")
	}
	return problems
}

func relAll(env domain.Env, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = rel(env, p)
	}
	return out
}
