package tools_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/letterpress/internal/adapters/fs"
	"go.trai.ch/letterpress/internal/adapters/tools"
	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/letterpress/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type testEnv struct {
	t        *testing.T
	root     string
	registry *tools.Registry
	executor *mocks.MockExecutor
	mailers  *mocks.MockMailerFactory
	stdout   bytes.Buffer
	stderr   bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctrl := gomock.NewController(t)
	e := &testEnv{
		t:        t,
		root:     t.TempDir(),
		executor: mocks.NewMockExecutor(ctrl),
		mailers:  mocks.NewMockMailerFactory(ctrl),
	}
	e.registry = tools.NewDefaultRegistry(fs.NewResolver(fs.NewWalker()), e.executor, e.mailers)
	return e
}

func (e *testEnv) write(files map[string]string) {
	e.t.Helper()
	for name, content := range files {
		p := filepath.Join(e.root, filepath.FromSlash(name))
		require.NoError(e.t, os.MkdirAll(filepath.Dir(p), domain.DirPerm))
		require.NoError(e.t, os.WriteFile(p, []byte(content), domain.FilePerm))
	}
}

func (e *testEnv) read(name string) string {
	e.t.Helper()
	data, err := os.ReadFile(filepath.Join(e.root, filepath.FromSlash(name)))
	require.NoError(e.t, err)
	return string(data)
}

func (e *testEnv) path(name string) string {
	return filepath.Join(e.root, filepath.FromSlash(name))
}

func (e *testEnv) run(kind, target string, opts domain.Options, files ...domain.FileMapping) error {
	e.t.Helper()
	task, err := domain.NewTask(kind, target, opts, files)
	require.NoError(e.t, err)

	tool, ok := e.registry.Lookup(kind)
	require.True(e.t, ok, "no tool for %s", kind)

	return tool.Run(context.Background(), domain.Invocation{
		Task:   task,
		Env:    domain.NewEnv(e.root, map[string]string{"src": "src", "dist": "dist"}),
		Stdout: &e.stdout,
		Stderr: &e.stderr,
	})
}

func src(patterns ...string) domain.FileMapping {
	return domain.FileMapping{Src: patterns}
}

func mapping(dest string, patterns ...string) domain.FileMapping {
	return domain.FileMapping{Src: patterns, Dest: dest}
}

func TestRegistry_Kinds(t *testing.T) {
	e := newTestEnv(t)

	assert.Equal(t, []string{
		"banner", "concat", "copy", "cssmin", "exec", "htmlmin", "inline",
		"jsmin", "legacy", "lint", "mail", "prefix", "stylesheet", "vendor",
	}, e.registry.Kinds())

	_, ok := e.registry.Lookup("uglify")
	assert.False(t, ok)
}

func TestRegistry_LaterToolReplacesEarlier(t *testing.T) {
	ctrl := gomock.NewController(t)
	first := mocks.NewMockTool(ctrl)
	first.EXPECT().Kind().Return("concat").AnyTimes()
	second := mocks.NewMockTool(ctrl)
	second.EXPECT().Kind().Return("concat").AnyTimes()

	r := tools.NewRegistry(first, second)

	got, ok := r.Lookup("concat")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, []string{"concat"}, r.Kinds())
}

func TestConcat(t *testing.T) {
	t.Run("joins sources in order", func(t *testing.T) {
		e := newTestEnv(t)
		e.write(map[string]string{
			"src/js/b.js":    "b();",
			"src/js/a.js":    "a();",
			"src/js/skip.js": "skip();",
			"src/app.js":     "app();",
		})

		err := e.run("concat", "js", domain.Options{"separator": ";\n", "banner": "// top\n", "footer": "\n// end"},
			mapping("dist/main.js", "src/js/*.js", "!src/js/skip.js", "src/app.js"))

		require.NoError(t, err)
		assert.Equal(t, "// top\na();;\nb();;\napp();\n// end", e.read("dist/main.js"))
		assert.Contains(t, e.stdout.String(), "File dist/main.js created.")
	})

	t.Run("fails when nothing matched", func(t *testing.T) {
		e := newTestEnv(t)

		err := e.run("concat", "js", nil, mapping("dist/main.js", "src/js/*.js"))

		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrNoSources.Error())
		assert.NoFileExists(t, e.path("dist/main.js"))
	})

	t.Run("fails on a missing literal source", func(t *testing.T) {
		e := newTestEnv(t)

		err := e.run("concat", "js", nil, mapping("dist/main.js", "src/missing.js"))

		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrSourceNotFound.Error())
	})

	t.Run("requires a destination", func(t *testing.T) {
		e := newTestEnv(t)
		e.write(map[string]string{"src/a.js": "a();"})

		err := e.run("concat", "js", nil, src("src/a.js"))

		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrInvalidFileMapping.Error())
	})
}

func TestBanner(t *testing.T) {
	tests := []struct {
		name string
		opts domain.Options
		want string
	}{
		{"top with linebreak", domain.Options{"banner": "/*! b */"}, "/*! b */\nbody{}"},
		{"top without linebreak", domain.Options{"banner": "/*! b */", "linebreak": false}, "/*! b */body{}"},
		{"bottom", domain.Options{"banner": "/* end */", "position": "bottom"}, "body{}\n/* end */"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			e.write(map[string]string{"dist/a.min.css": "body{}", "dist/a.css": "body{}"})

			require.NoError(t, e.run("banner", "css", tt.opts, src("dist/*.min.css")))

			assert.Equal(t, tt.want, e.read("dist/a.min.css"))
			assert.Equal(t, "body{}", e.read("dist/a.css"))
			assert.Contains(t, e.stdout.String(), "Banner added to dist/a.min.css")
		})
	}

	t.Run("rejects unknown position", func(t *testing.T) {
		e := newTestEnv(t)
		err := e.run("banner", "css", domain.Options{"position": "middle"}, src("dist/*.css"))
		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrInvalidOption.Error())
	})
}

func TestCopy(t *testing.T) {
	t.Run("expand keeps paths below cwd", func(t *testing.T) {
		e := newTestEnv(t)
		e.write(map[string]string{
			"src/static/img/logo.png":     "png",
			"src/static/img/icons/x.svg":  "svg",
			"src/static/fonts/sans.woff2": "woff",
		})

		err := e.run("copy", "main", nil,
			domain.FileMapping{Expand: true, Cwd: "src/static", Src: []string{"img/**/*"}, Dest: "dist/static"},
			domain.FileMapping{Expand: true, Cwd: "src/static", Src: []string{"fonts/*"}, Dest: "dist/static", Flatten: true},
		)

		require.NoError(t, err)
		assert.Equal(t, "png", e.read("dist/static/img/logo.png"))
		assert.Equal(t, "svg", e.read("dist/static/img/icons/x.svg"))
		assert.Equal(t, "woff", e.read("dist/static/sans.woff2"))
		assert.Contains(t, e.stdout.String(), "3 files copied.")
	})

	t.Run("single source to file", func(t *testing.T) {
		e := newTestEnv(t)
		e.write(map[string]string{"src/a.txt": "a"})

		require.NoError(t, e.run("copy", "one", nil, mapping("dist/b.txt", "src/a.txt")))

		assert.Equal(t, "a", e.read("dist/b.txt"))
		assert.Contains(t, e.stdout.String(), "1 file copied.")
	})

	t.Run("trailing slash copies into directory", func(t *testing.T) {
		e := newTestEnv(t)
		e.write(map[string]string{"src/a.txt": "a"})

		require.NoError(t, e.run("copy", "dir", nil, mapping("dist/out/", "src/a.txt")))

		assert.Equal(t, "a", e.read("dist/out/a.txt"))
	})
}
