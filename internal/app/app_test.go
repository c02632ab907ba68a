package app_test

import (
	"bytes"
	"context"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/letterpress/internal/adapters/linear"
	"go.trai.ch/letterpress/internal/app"
	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/letterpress/internal/core/ports"
	"go.trai.ch/letterpress/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type funcTool struct {
	kind string
	run  func(ctx context.Context, inv domain.Invocation) error
}

func (f *funcTool) Kind() string { return f.kind }

func (f *funcTool) Run(ctx context.Context, inv domain.Invocation) error {
	return f.run(ctx, inv)
}

type registry map[string]ports.Tool

func (r registry) Lookup(kind string) (ports.Tool, bool) {
	t, ok := r[kind]
	return t, ok
}

func (r registry) Kinds() []string {
	kinds := make([]string, 0, len(r))
	for k := range r {
		kinds = append(kinds, k)
	}
	return kinds
}

type noChanges struct{}

func (noChanges) Prime([]string)      {}
func (noChanges) Changed(string) bool { return true }

func newPipeline(t *testing.T, root string, tasks ...string) *domain.Pipeline {
	t.Helper()
	p := domain.NewPipeline(domain.NewEnv(root, map[string]string{"src": "src"}))
	for _, name := range tasks {
		kind, target := domain.SplitTaskName(name)
		task, err := domain.NewTask(kind, target, nil, []domain.FileMapping{{Src: []string{"src/*.less"}}})
		require.NoError(t, err)
		require.NoError(t, p.AddTask(task))
	}
	return p
}

type harness struct {
	loader   *mocks.MockConfigLoader
	logger   *mocks.MockLogger
	resolver *mocks.MockFileResolver
	watcher  *mocks.MockWatcher
	stderr   *bytes.Buffer
	stdout   *bytes.Buffer
}

func newApp(t *testing.T, tools registry) (*app.App, *harness) {
	t.Helper()
	ctrl := gomock.NewController(t)

	h := &harness{
		loader:   mocks.NewMockConfigLoader(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
		resolver: mocks.NewMockFileResolver(ctrl),
		watcher:  mocks.NewMockWatcher(ctrl),
		stderr:   new(bytes.Buffer),
		stdout:   new(bytes.Buffer),
	}
	a := app.New(h.loader, tools, h.logger, h.resolver, h.watcher, noChanges{}, linear.NewFactory(h.stdout, h.stderr)).
		WithOutput(h.stdout)
	return a, h
}

func TestApp_Run_DefaultAlias(t *testing.T) {
	var ran []string
	tool := &funcTool{kind: "concat", run: func(_ context.Context, inv domain.Invocation) error {
		ran = append(ran, inv.Task.Name)
		return nil
	}}
	a, h := newApp(t, registry{"concat": tool})

	p := newPipeline(t, t.TempDir(), "concat:css", "concat:js")
	require.NoError(t, p.AddAlias(domain.DefaultAlias, []string{"concat:js", "concat:css"}))
	h.loader.EXPECT().Load(domain.PipelineFileName).Return(p, nil)

	err := a.Run(context.Background(), nil, app.RunOptions{ConfigPath: domain.PipelineFileName, OutputMode: "plain"})

	require.NoError(t, err)
	assert.Equal(t, []string{"concat:js", "concat:css"}, ran)
	assert.Contains(t, h.stderr.String(), "[concat:js] Starting...")
	assert.Contains(t, h.stderr.String(), "Completed in")
}

func TestApp_Run_TaskFailure(t *testing.T) {
	boom := errors.New("boom")
	tool := &funcTool{kind: "cssmin", run: func(context.Context, domain.Invocation) error { return boom }}
	a, h := newApp(t, registry{"cssmin": tool})

	h.loader.EXPECT().Load(".").Return(newPipeline(t, t.TempDir(), "cssmin:main"), nil)

	err := a.Run(context.Background(), []string{"cssmin:main"}, app.RunOptions{ConfigPath: ".", OutputMode: "plain"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, h.stderr.String(), "Failed after")
}

func TestApp_Run_TaskPanic(t *testing.T) {
	var ran []string
	tool := &funcTool{kind: "concat", run: func(_ context.Context, inv domain.Invocation) error {
		ran = append(ran, inv.Task.Name)
		if inv.Task.Name == "concat:css" {
			panic("index out of range")
		}
		return nil
	}}
	a, h := newApp(t, registry{"concat": tool})

	h.loader.EXPECT().Load(".").Return(newPipeline(t, t.TempDir(), "concat:css", "concat:js"), nil)

	err := a.Run(context.Background(), []string{"concat:css", "concat:js"}, app.RunOptions{ConfigPath: ".", OutputMode: "plain"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	assert.ErrorIs(t, err, domain.ErrTaskPanicked)
	assert.Equal(t, []string{"concat:css"}, ran)
	assert.Contains(t, h.stderr.String(), "Failed after")
}

func TestApp_Run_LoadError(t *testing.T) {
	a, h := newApp(t, registry{})
	h.loader.EXPECT().Load(".").Return(nil, domain.ErrConfigNotFound)

	err := a.Run(context.Background(), []string{"css"}, app.RunOptions{ConfigPath: "."})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfigNotFound)
	assert.NotErrorIs(t, err, domain.ErrBuildExecutionFailed)
}

func TestApp_Run_InvalidOutputMode(t *testing.T) {
	a, h := newApp(t, registry{})
	h.loader.EXPECT().Load(".").Return(newPipeline(t, t.TempDir()), nil)

	err := a.Run(context.Background(), []string{"css"}, app.RunOptions{ConfigPath: ".", OutputMode: "rainbow"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidOutputMode)
}

func TestApp_Run_UnknownTarget(t *testing.T) {
	a, h := newApp(t, registry{})
	h.loader.EXPECT().Load(".").Return(newPipeline(t, t.TempDir()), nil)

	err := a.Run(context.Background(), []string{"missing"}, app.RunOptions{ConfigPath: ".", OutputMode: "plain"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	assert.ErrorContains(t, err, domain.ErrTaskNotFound.Error())
}

func TestApp_List(t *testing.T) {
	a, h := newApp(t, registry{})

	p := newPipeline(t, t.TempDir(), "stylesheet:main", "cssmin:main", "concat:js")
	require.NoError(t, p.AddAlias("css", []string{"stylesheet", "cssmin"}))
	require.NoError(t, p.AddAlias("default", []string{"css", "concat:js"}))
	require.NoError(t, p.AddWatchTarget(domain.WatchTarget{Name: "default", Files: []string{"src/*.less"}, Tasks: []string{"css"}}))
	h.loader.EXPECT().Load(".").Return(p, nil)

	require.NoError(t, a.List(app.ListOptions{ConfigPath: ".", OutputMode: "plain"}))

	out := h.stdout.String()
	assert.Contains(t, out, "Tasks")
	assert.Contains(t, out, "stylesheet:main")
	assert.Contains(t, out, "Aliases")
	assert.Contains(t, out, "→ stylesheet:main, cssmin:main, concat:js")
	assert.Contains(t, out, "Watch")
	assert.Less(t, strings.Index(out, "stylesheet:main"), strings.Index(out, "cssmin:main"))
}

func TestApp_Init(t *testing.T) {
	a, h := newApp(t, registry{})
	dir := t.TempDir()
	path := filepath.Join(dir, domain.PipelineFileName)

	require.NoError(t, a.Init(dir, false))
	assert.FileExists(t, path)
	assert.Contains(t, h.stdout.String(), "Created "+path)

	err := a.Init(dir, false)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrConfigExists.Error())

	require.NoError(t, os.WriteFile(path, []byte("stale"), domain.FilePerm))
	require.NoError(t, a.Init(dir, true))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, "stale", string(data))
}

func TestApp_Watch_UnknownTarget(t *testing.T) {
	a, h := newApp(t, registry{})
	h.loader.EXPECT().Load(".").Return(newPipeline(t, t.TempDir()), nil)

	err := a.Watch(context.Background(), "styles", app.WatchOptions{ConfigPath: ".", OutputMode: "plain"})

	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrWatchTargetNotFound.Error())
}

type chanWatcher struct {
	events chan ports.WatchEvent
	once   sync.Once
}

func (w *chanWatcher) Start(context.Context, string) error { return nil }

func (w *chanWatcher) Stop() error {
	w.once.Do(func() { close(w.events) })
	return nil
}

func (w *chanWatcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for e := range w.events {
			if !yield(e) {
				return
			}
		}
	}
}

func TestApp_Watch_RerunsTasksOnChange(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var ran []string
	tool := &funcTool{kind: "stylesheet", run: func(_ context.Context, inv domain.Invocation) error {
		ran = append(ran, inv.Task.Name)
		cancel()
		return nil
	}}

	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	logger := mocks.NewMockLogger(ctrl)
	resolver := mocks.NewMockFileResolver(ctrl)
	w := &chanWatcher{events: make(chan ports.WatchEvent, 4)}

	p := newPipeline(t, root, "stylesheet:main")
	require.NoError(t, p.AddWatchTarget(domain.WatchTarget{Name: "default", Files: []string{"src/*.less"}, Tasks: []string{"stylesheet"}}))

	loader.EXPECT().Load(".").Return(p, nil)
	resolver.EXPECT().Resolve([]string{"src/*.less"}, root).Return([]string{"src/a.less"}, nil)
	resolver.EXPECT().Match([]string{"src/*.less"}, "src/a.less").Return(true, nil)
	resolver.EXPECT().Match([]string{"src/*.less"}, "dist/a.css").Return(false, nil)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()

	a := app.New(loader, registry{"stylesheet": tool}, logger, resolver, w, noChanges{}, linear.NewFactory(new(bytes.Buffer), new(bytes.Buffer)))

	w.events <- ports.WatchEvent{Path: filepath.Join(root, "dist", "a.css"), Operation: ports.OpWrite}
	w.events <- ports.WatchEvent{Path: filepath.Join(root, "src", "a.less"), Operation: ports.OpWrite}

	done := make(chan error, 1)
	go func() {
		done <- a.Watch(ctx, "", app.WatchOptions{ConfigPath: ".", OutputMode: "plain", Debounce: time.Millisecond})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not return")
	}
	assert.Equal(t, []string{"stylesheet:main"}, ran)
}

func TestApp_ConfigureOutput(t *testing.T) {
	a, _ := newApp(t, registry{})

	require.NoError(t, a.ConfigureOutput(true, "plain"))

	err := a.ConfigureOutput(false, "neon")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidOutputMode)
}
