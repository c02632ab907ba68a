package tools_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/letterpress/internal/core/domain"
	"go.uber.org/mock/gomock"
)

func TestJSMin(t *testing.T) {
	e := newTestEnv(t)
	e.write(map[string]string{
		"dist/js/main.js": "/*! keep */\nfunction greet(name) {\n  // note\n  var message = \"hi \" + name;\n  return message;\n}\n",
	})

	err := e.run("jsmin", "js", nil, mapping("dist/js/main.min.js", "dist/js/main.js"))

	require.NoError(t, err)
	out := e.read("dist/js/main.min.js")
	assert.Contains(t, out, "/*! keep */")
	assert.Contains(t, out, "function greet(")
	assert.NotContains(t, out, "note")
	assert.NotContains(t, out, "message")
	assert.NoFileExists(t, e.path("dist/js/main.min.js.map"))
}

func TestJSMin_SourceMap(t *testing.T) {
	e := newTestEnv(t)
	e.write(map[string]string{"dist/js/main.js": "function greet(name) { return name; }\n"})

	err := e.run("jsmin", "js", domain.Options{"sourceMap": true, "preserveComments": false},
		mapping("dist/js/main.min.js", "dist/js/main.js"))

	require.NoError(t, err)
	assert.Contains(t, e.read("dist/js/main.min.js"), "//# sourceMappingURL=main.min.js.map")
	assert.Contains(t, e.read("dist/js/main.min.js.map"), `"mappings"`)
	assert.Contains(t, e.stdout.String(), "File dist/js/main.min.js.map created.")
}

func TestJSMin_SyntaxError(t *testing.T) {
	e := newTestEnv(t)
	e.write(map[string]string{"dist/js/main.js": "function ( {"})

	err := e.run("jsmin", "js", nil, mapping("dist/js/main.min.js", "dist/js/main.js"))

	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrToolFailed.Error())
	assert.NoFileExists(t, e.path("dist/js/main.min.js"))
}

func TestJSMin_InvalidPreserveComments(t *testing.T) {
	e := newTestEnv(t)
	err := e.run("jsmin", "js", domain.Options{"preserveComments": "most"}, mapping("a.min.js", "a.js"))
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrInvalidOption.Error())
}

func TestLint(t *testing.T) {
	t.Run("clean files pass", func(t *testing.T) {
		e := newTestEnv(t)
		e.write(map[string]string{"src/js/app.js": "'use strict';\nvar a = 1;\n"})

		require.NoError(t, e.run("lint", "all", domain.Options{"strict": true}, src("src/js/*.js")))
		assert.Contains(t, e.stdout.String(), "1 file lint free.")
	})

	t.Run("syntax errors fail", func(t *testing.T) {
		e := newTestEnv(t)
		e.write(map[string]string{"src/js/app.js": "var = ;\n"})

		err := e.run("lint", "all", nil, src("src/js/*.js"))

		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrLintFailed.Error())
		assert.Contains(t, e.stderr.String(), "src/js/app.js")
	})

	t.Run("strict requires directive", func(t *testing.T) {
		e := newTestEnv(t)
		e.write(map[string]string{"src/js/app.js": "var a = 1;\n"})

		err := e.run("lint", "all", domain.Options{"strict": true}, src("src/js/*.js"))

		require.Error(t, err)
		assert.Contains(t, e.stderr.String(), `missing "use strict" statement`)
	})

	t.Run("external command gets relative files", func(t *testing.T) {
		e := newTestEnv(t)
		e.write(map[string]string{"src/js/a.js": "a();\n", "src/js/b.js": "b();\n"})

		e.executor.EXPECT().Execute(gomock.Any(), domain.Command{
			Args: []string{"eslint", "--quiet", "src/js/a.js", "src/js/b.js"},
			Dir:  e.root,
		}, gomock.Any(), gomock.Any()).Return(nil)

		require.NoError(t, e.run("lint", "all", domain.Options{"command": []any{"eslint", "--quiet"}}, src("src/js/*.js")))
		assert.Contains(t, e.stdout.String(), "2 files lint free.")
	})

	t.Run("external command failure", func(t *testing.T) {
		e := newTestEnv(t)
		e.write(map[string]string{"src/js/a.js": "a();\n"})

		e.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("exit status 1"))

		err := e.run("lint", "all", domain.Options{"command": "jshint"}, src("src/js/*.js"))

		require.Error(t, err)
		assert.ErrorContains(t, err, "exit status 1")
	})
}

func TestExec(t *testing.T) {
	e := newTestEnv(t)

	e.executor.EXPECT().Execute(gomock.Any(), domain.Command{
		Args: []string{"make", "sprites"},
		Dir:  e.path("src"),
		Env:  []string{"A=1", "B=two"},
	}, gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, _ domain.Command, stdout, _ io.Writer) error {
		_, err := io.WriteString(stdout, "done\n")
		return err
	})

	err := e.run("exec", "sprites", domain.Options{
		"command": []any{"make", "sprites"},
		"cwd":     "src",
		"env":     map[string]any{"B": "two", "A": 1},
	})

	require.NoError(t, err)
	assert.Equal(t, "done\n", e.stdout.String())
}

func TestExec_EmptyCommand(t *testing.T) {
	e := newTestEnv(t)
	err := e.run("exec", "nothing", nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrEmptyCommand.Error())
}
