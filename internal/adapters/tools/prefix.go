package tools

import (
	"context"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/letterpress/internal/core/domain"
)

// KindPrefix adds vendor prefixes to CSS.
const KindPrefix = "prefix"

// Prefix implements the prefix task kind. Files are rewritten in place
// unless the mapping names a dest.
//
// Options:
//
//	browsers  engines to support, such as chrome58 or ie8
type Prefix struct {
	files fileSet
}

// Kind implements ports.Tool.
func (p *Prefix) Kind() string { return KindPrefix }

// Run implements ports.Tool.
func (p *Prefix) Run(_ context.Context, inv domain.Invocation) error {
	browsers, err := inv.Task.Options.Strings("browsers")
	if err != nil {
		return err
	}
	if len(browsers) == 0 {
		browsers = DefaultBrowsers
	}
	engines, err := parseEngines(browsers)
	if err != nil {
		return err
	}

	jobs, err := p.files.jobs(inv)
	if err != nil {
		return err
	}
	for _, j := range jobs {
		for _, pair := range j.outputs() {
			data, err := readFile(inv.Env, pair[0])
			if err != nil {
				return err
			}
			result := api.Transform(string(data), api.TransformOptions{
				Loader:     api.LoaderCSS,
				Engines:    engines,
				Sourcefile: rel(inv.Env, pair[0]),
				LogLevel:   api.LogLevelSilent,
			})
			if len(result.Errors) > 0 {
				return toolError(inv.Env, pair[0], formatMessages(result.Errors, api.ErrorMessage))
			}
			if err := writeFile(inv.Env, pair[1], result.Code); err != nil {
				return err
			}
			_, _ = inv.Stdout.Write([]byte("Prefixed file " + rel(inv.Env, pair[1]) + " created.\n"))
		}
	}
	return nil
}
