package tools_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/letterpress/internal/adapters/tools"
	"go.trai.ch/letterpress/internal/core/domain"
	"go.uber.org/mock/gomock"
)

func TestStylesheet_ESBuildBundlesImports(t *testing.T) {
	e := newTestEnv(t)
	e.write(map[string]string{
		"src/css/main.less": "@import \"base.less\";\n.btn { color: blue; }\n",
		"src/css/base.less": "body { margin: 0; }\n",
	})

	err := e.run("stylesheet", "main", nil, mapping("dist/css/main.css", "src/css/main.less"))

	require.NoError(t, err)
	out := e.read("dist/css/main.css")
	assert.NotContains(t, out, "@import")
	assert.Contains(t, out, "margin: 0")
	assert.Contains(t, out, ".btn")
	assert.Less(t, strings.Index(out, "margin"), strings.Index(out, ".btn"))
}

func TestStylesheet_ESBuildReportsErrors(t *testing.T) {
	e := newTestEnv(t)
	e.write(map[string]string{"src/css/main.css": "@import \"missing.css\";\n"})

	err := e.run("stylesheet", "main", nil, mapping("dist/css/main.css", "src/css/main.css"))

	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrToolFailed.Error())
	assert.NoFileExists(t, e.path("dist/css/main.css"))
}

func TestStylesheet_ESBuildRejectsLessVariables(t *testing.T) {
	e := newTestEnv(t)
	e.write(map[string]string{
		"src/css/main.less":   "@import \"colors.less\";\n@media (min-width: 30em) { a { color: blue; } }\n",
		"src/css/colors.less": "/* palette */\n@brand : red;\na { color: @brand; }\n",
	})

	err := e.run("stylesheet", "main", nil, mapping("dist/css/main.css", "src/css/main.less"))

	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrToolFailed.Error())
	assert.ErrorContains(t, err, "Less variable @brand needs compiler: lessc")
	assert.NoFileExists(t, e.path("dist/css/main.css"))
}

func TestStylesheet_Lessc(t *testing.T) {
	e := newTestEnv(t)
	e.write(map[string]string{
		"src/css/main.less":     "@c: red; a { color: @c; }",
		"src/vendor/cf-core/.k": "",
	})

	e.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cmd domain.Command, stdout, _ io.Writer) error {
			assert.Equal(t, []string{"lessc", "--include-path=" + e.path("src/vendor/cf-core"), "-"}, cmd.Args)
			assert.Equal(t, e.path("src/css"), cmd.Dir)
			input, err := io.ReadAll(cmd.Stdin)
			require.NoError(t, err)
			assert.Equal(t, "@c: red; a { color: @c; }", string(input))
			_, err = io.WriteString(stdout, "a {\n  color: red;\n}\n")
			return err
		})

	err := e.run("stylesheet", "main", domain.Options{"compiler": "lessc", "paths": []any{"src/vendor/*"}},
		mapping("dist/css/main.css", "src/css/main.less"))

	require.NoError(t, err)
	assert.Equal(t, "a {\n  color: red;\n}\n", e.read("dist/css/main.css"))
}

func TestStylesheet_UnknownCompiler(t *testing.T) {
	e := newTestEnv(t)
	err := e.run("stylesheet", "main", domain.Options{"compiler": "sass"}, mapping("dist/a.css", "src/a.scss"))
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrInvalidOption.Error())
}

func TestPrefix_AddsVendorPrefixesInPlace(t *testing.T) {
	e := newTestEnv(t)
	e.write(map[string]string{"dist/css/main.css": ".btn { user-select: none; }\n"})

	err := e.run("prefix", "main", domain.Options{"browsers": []any{"safari11"}}, src("dist/css/main.css"))

	require.NoError(t, err)
	out := e.read("dist/css/main.css")
	assert.Contains(t, out, "-webkit-user-select: none")
	assert.Contains(t, out, "user-select: none")
}

func TestPrefix_RejectsUnknownBrowser(t *testing.T) {
	e := newTestEnv(t)
	e.write(map[string]string{"dist/css/main.css": "a{}"})

	err := e.run("prefix", "main", domain.Options{"browsers": []any{"netscape4"}}, src("dist/css/main.css"))

	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrInvalidOption.Error())
}

func TestCSSMin(t *testing.T) {
	e := newTestEnv(t)
	e.write(map[string]string{
		"dist/css/a.css": "/*! keep me */\na {\n  color: blue;\n}\n",
		"dist/css/b.css": "/* drop me */\nb {\n  margin: 0px;\n}\n",
	})

	err := e.run("cssmin", "main", nil, mapping("dist/css/main.min.css", "dist/css/a.css", "dist/css/b.css"))

	require.NoError(t, err)
	out := e.read("dist/css/main.min.css")
	assert.Contains(t, out, "/*! keep me */")
	assert.NotContains(t, out, "drop me")
	assert.Contains(t, out, "a{color:")
	assert.Contains(t, out, "b{margin:0}")
	assert.Contains(t, e.stdout.String(), "File dist/css/main.min.css created:")
}

func TestLegacy_Tool(t *testing.T) {
	e := newTestEnv(t)
	e.write(map[string]string{
		"dist/css/main.css": "a{color:red}@media (min-width: 40em){a{color:blue}}@media (min-width: 80em){a{color:green}}",
	})

	err := e.run("legacy", "ie", domain.Options{"legacyWidth": 60},
		mapping("dist/css/main.ie.css", "dist/css/main.css"))

	require.NoError(t, err)
	assert.Equal(t, "a{color:red}a{color:blue}", e.read("dist/css/main.ie.css"))
}

func TestFlattenMediaQueries(t *testing.T) {
	tests := []struct {
		name          string
		css           string
		overridesOnly bool
		want          string
	}{
		{
			name: "matching min-width is unwrapped",
			css:  "a{color:red}@media (min-width: 40em){a{color:blue}}",
			want: "a{color:red}a{color:blue}",
		},
		{
			name: "failing min-width is dropped",
			css:  "a{color:red}@media (min-width: 80em){a{color:green}}",
			want: "a{color:red}",
		},
		{
			name: "pixels are converted to em",
			css:  "@media (max-width: 600px){b{x:y}}@media (min-width: 640px){c{x:y}}",
			want: "c{x:y}",
		},
		{
			name: "queries without width are kept",
			css:  "@media print{a{color:black}}",
			want: "@media print{a{color:black}}",
		},
		{
			name: "print with width is dropped",
			css:  "@media print and (min-width: 10em){a{color:black}}",
			want: "",
		},
		{
			name: "screen with width is flattened",
			css:  "@media screen and (min-width: 30em) and (max-width: 70em){p{margin:0}}",
			want: "p{margin:0}",
		},
		{
			name:          "overrides only",
			css:           "a{color:red}@media (min-width: 40em){a{color:blue}}@media print{i{x:y}}",
			overridesOnly: true,
			want:          "a{color:blue}",
		},
		{
			name: "nested blocks inside flattened query",
			css:  "@media (min-width: 20em){@supports (display:grid){g{display:grid}}}",
			want: "@supports (display:grid){g{display:grid}}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tools.FlattenMediaQueries([]byte(tt.css), 60, tt.overridesOnly)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(bytes.TrimSpace(got)))
		})
	}
}
