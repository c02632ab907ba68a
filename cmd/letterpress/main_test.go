package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/letterpress/internal/adapters/linear"
	"go.trai.ch/letterpress/internal/app"
	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/letterpress/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type harness struct {
	loader   *mocks.MockConfigLoader
	logger   *mocks.MockLogger
	registry *mocks.MockToolRegistry
	provider ComponentProvider
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	h := &harness{
		loader:   mocks.NewMockConfigLoader(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
		registry: mocks.NewMockToolRegistry(ctrl),
	}
	application := app.New(
		h.loader,
		h.registry,
		h.logger,
		mocks.NewMockFileResolver(ctrl),
		mocks.NewMockWatcher(ctrl),
		nil,
		linear.NewFactory(io.Discard, io.Discard),
	)
	h.provider = func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{App: application, Logger: h.logger}, func() {}, nil
	}
	return h
}

func pipelineWith(t *testing.T, kind, target string) *domain.Pipeline {
	t.Helper()
	p := domain.NewPipeline(domain.NewEnv(t.TempDir(), nil))
	task, err := domain.NewTask(kind, target, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.AddTask(task); err != nil {
		t.Fatal(err)
	}
	if err := p.AddAlias(domain.DefaultAlias, []string{task.Name}); err != nil {
		t.Fatal(err)
	}
	return p
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	h := newHarness(t)

	exitCode := run(context.Background(), []string{"version"}, new(bytes.Buffer), h.provider)
	assert.Equal(t, 0, exitCode)
}

// TestRun_DefaultAlias verifies that a successful pipeline run exits 0.
func TestRun_DefaultAlias(t *testing.T) {
	h := newHarness(t)
	ctrl := gomock.NewController(t)
	tool := mocks.NewMockTool(ctrl)

	h.loader.EXPECT().Load(domain.PipelineFileName).Return(pipelineWith(t, "banner", "css"), nil)
	h.registry.EXPECT().Lookup("banner").Return(tool, true).AnyTimes()
	tool.EXPECT().Run(gomock.Any(), gomock.Any()).Return(nil)

	exitCode := run(context.Background(), []string{"run", "-o", "plain"}, new(bytes.Buffer), h.provider)
	assert.Equal(t, 0, exitCode)
}

// TestRun_TaskFailure verifies that a failing task exits 1 and logs the failure.
func TestRun_TaskFailure(t *testing.T) {
	h := newHarness(t)
	ctrl := gomock.NewController(t)
	tool := mocks.NewMockTool(ctrl)

	h.loader.EXPECT().Load(domain.PipelineFileName).Return(pipelineWith(t, "jsmin", "js"), nil)
	h.registry.EXPECT().Lookup("jsmin").Return(tool, true).AnyTimes()
	tool.EXPECT().Run(gomock.Any(), gomock.Any()).Return(errors.New("unexpected token"))

	var logged error
	h.logger.EXPECT().Error(gomock.Any()).Do(func(err error) { logged = err })

	exitCode := run(context.Background(), []string{"run", "default", "-o", "plain"}, new(bytes.Buffer), h.provider)

	assert.Equal(t, 1, exitCode)
	assert.ErrorIs(t, logged, domain.ErrBuildExecutionFailed)
	assert.ErrorContains(t, logged, "unexpected token")
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run returns 1 when the pipeline cannot be loaded.
func TestRun_ExecutionError(t *testing.T) {
	h := newHarness(t)
	h.loader.EXPECT().Load(domain.PipelineFileName).Return(nil, errors.New("load failed"))
	h.logger.EXPECT().Error(gomock.Any())

	exitCode := run(context.Background(), []string{"run", "css"}, new(bytes.Buffer), h.provider)

	assert.Equal(t, 1, exitCode)
}
