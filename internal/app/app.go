// Package app implements the application layer for letterpress.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.trai.ch/letterpress/internal/adapters/detector"
	"go.trai.ch/letterpress/internal/adapters/telemetry"
	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/letterpress/internal/core/ports"
	"go.trai.ch/letterpress/internal/engine/scheduler"
	"go.trai.ch/letterpress/internal/ui/output"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// RendererFactory builds the renderer of a run once the output mode is known.
type RendererFactory interface {
	Renderer(mode output.Mode) ports.Renderer
}

// ChangeDetector filters watch events down to content changes.
type ChangeDetector interface {
	Prime(paths []string)
	Changed(path string) bool
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	registry     ports.ToolRegistry
	logger       ports.Logger
	resolver     ports.FileResolver
	watcher      ports.Watcher
	changes      ChangeDetector
	renderers    RendererFactory
	stdout       io.Writer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	registry ports.ToolRegistry,
	log ports.Logger,
	resolver ports.FileResolver,
	watcher ports.Watcher,
	changes ChangeDetector,
	renderers RendererFactory,
) *App {
	return &App{
		configLoader: loader,
		registry:     registry,
		logger:       log,
		resolver:     resolver,
		watcher:      watcher,
		changes:      changes,
		renderers:    renderers,
		stdout:       os.Stdout,
	}
}

// WithOutput redirects the output of list and init.
func (a *App) WithOutput(w io.Writer) *App {
	a.stdout = w
	return a
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	// ConfigPath is the pipeline file or a directory to search upwards from.
	ConfigPath string
	// OutputMode is auto, color or plain.
	OutputMode string
}

// Run loads the pipeline and runs the requested names in order.
// Without names the default alias runs.
func (a *App) Run(ctx context.Context, targetNames []string, opts RunOptions) error {
	pipeline, err := a.configLoader.Load(opts.ConfigPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	if len(targetNames) == 0 {
		targetNames = []string{domain.DefaultAlias}
	}

	mode, err := detector.ResolveMode(detector.DetectEnvironment(), opts.OutputMode)
	if err != nil {
		return err
	}

	return a.execute(ctx, pipeline, targetNames, mode)
}

// execute runs targets with a fresh renderer and tracer.
func (a *App) execute(ctx context.Context, pipeline *domain.Pipeline, targetNames []string, mode output.Mode) error {
	renderer := a.renderers.Renderer(mode)

	// Spans are reported to the renderer through the bridge.
	shutdown := telemetry.Setup(telemetry.NewBridge(renderer))
	defer func() {
		_ = shutdown(context.WithoutCancel(ctx))
	}()

	tracer := telemetry.NewOTelTracer(telemetry.InstrumentationName).WithRenderer(renderer)
	sched := scheduler.NewScheduler(a.registry, tracer)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := renderer.Start(ctx); err != nil {
			return err
		}
		return renderer.Wait()
	})

	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = errors.Join(domain.ErrBuildExecutionFailed,
					zerr.With(zerr.Wrap(domain.ErrTaskPanicked, ""), "panic", fmt.Sprint(r)))
			}
			_ = renderer.Stop()
		}()

		if err := sched.Run(ctx, pipeline, targetNames); err != nil {
			return errors.Join(domain.ErrBuildExecutionFailed, err)
		}
		return nil
	})

	return g.Wait()
}

// ConfigureOutput switches the logger between JSON and pretty output and
// applies the output mode to it.
func (a *App) ConfigureOutput(jsonLogs bool, outputMode string) error {
	mode, err := detector.ResolveMode(detector.DetectEnvironment(), outputMode)
	if err != nil {
		return err
	}
	if l, ok := a.logger.(interface {
		SetJSON(enable bool)
		SetMode(mode output.Mode)
	}); ok {
		l.SetJSON(jsonLogs)
		l.SetMode(mode)
	}
	return nil
}
