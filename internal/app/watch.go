package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"go.trai.ch/letterpress/internal/adapters/detector"
	"go.trai.ch/letterpress/internal/adapters/watcher"
	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/letterpress/internal/ui/output"
	"go.trai.ch/zerr"
)

// WatchOptions configuration for the Watch method.
type WatchOptions struct {
	ConfigPath string
	OutputMode string
	// Debounce is the quiet period before a batch of changes triggers a run.
	Debounce time.Duration
}

// Watch re-runs the tasks of the named watch target whenever one of its files
// changes. Failed runs are logged and watching continues. It returns when ctx
// is done.
func (a *App) Watch(ctx context.Context, name string, opts WatchOptions) error {
	if name == "" {
		name = domain.DefaultWatchTarget
	}
	if opts.Debounce <= 0 {
		opts.Debounce = watcher.DefaultDebounceWindow
	}

	pipeline, err := a.configLoader.Load(opts.ConfigPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}
	mode, err := detector.ResolveMode(detector.DetectEnvironment(), opts.OutputMode)
	if err != nil {
		return err
	}

	s := &watchSession{app: a, pipeline: pipeline, mode: mode, configPath: opts.ConfigPath}
	if err := s.target(name); err != nil {
		return err
	}

	root := pipeline.Env().Root()
	if err := a.watcher.Start(ctx, root); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrWatchFailed.Error()), "path", root)
	}
	defer func() {
		_ = a.watcher.Stop()
	}()

	s.prime()

	trigger := make(chan struct{}, 1)
	debouncer := watcher.NewDebouncer(opts.Debounce, func(paths []string) {
		s.queue(paths)
		select {
		case trigger <- struct{}{}:
		default:
		}
	})

	events := make(chan struct{})
	go func() {
		defer close(events)
		for event := range a.watcher.Events() {
			if rel, ok := s.relevant(event.Path); ok {
				debouncer.Add(rel)
			}
		}
	}()

	a.logger.Info(fmt.Sprintf("Waiting for changes to %s", strings.Join(s.wt.Files, ", ")))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-events:
			return nil
		case <-trigger:
			s.rebuild(ctx)
		}
	}
}

type watchSession struct {
	app        *App
	configPath string
	mode       output.Mode

	mu       sync.Mutex
	pipeline *domain.Pipeline
	wt       domain.WatchTarget
	pending  []string
}

func (s *watchSession) target(name string) error {
	wt, ok := s.pipeline.WatchTarget(name)
	if !ok {
		return zerr.With(domain.ErrWatchTargetNotFound, "watch", name)
	}
	s.wt = wt
	return nil
}

// prime records the current content of every watched file so that saves
// without changes do not trigger a run.
func (s *watchSession) prime() {
	root := s.pipeline.Env().Root()
	files, err := s.app.resolver.Resolve(s.wt.Files, root)
	if err != nil {
		s.app.logger.Warn(fmt.Sprintf("could not resolve watched files: %v", err))
		return
	}
	abs := make([]string, 0, len(files)+1)
	for _, f := range files {
		abs = append(abs, filepath.Join(root, filepath.FromSlash(f)))
	}
	abs = append(abs, filepath.Join(root, domain.PipelineFileName))
	s.app.changes.Prime(abs)
}

// relevant maps an absolute event path to a root-relative path when it is
// watched and its content changed.
func (s *watchSession) relevant(path string) (string, bool) {
	s.mu.Lock()
	root := s.pipeline.Env().Root()
	files := s.wt.Files
	s.mu.Unlock()

	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	rel = filepath.ToSlash(rel)

	if rel != domain.PipelineFileName {
		ok, err := s.app.resolver.Match(files, rel)
		if err != nil || !ok {
			return "", false
		}
	}
	if !s.app.changes.Changed(path) {
		return "", false
	}
	return rel, true
}

func (s *watchSession) queue(paths []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, paths...)
}

func (s *watchSession) drain() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := s.pending
	s.pending = nil
	slices.Sort(paths)
	return slices.Compact(paths)
}

func (s *watchSession) rebuild(ctx context.Context) {
	paths := s.drain()
	if len(paths) == 0 {
		return
	}

	if slices.Contains(paths, domain.PipelineFileName) {
		s.reload()
	}

	s.app.logger.Info(fmt.Sprintf("%s changed", strings.Join(paths, ", ")))

	s.mu.Lock()
	pipeline, tasks := s.pipeline, s.wt.Tasks
	s.mu.Unlock()

	err := s.app.execute(ctx, pipeline, tasks, s.mode)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return
	case errors.Is(err, domain.ErrBuildExecutionFailed):
		s.app.logger.Warn("Build failed, waiting for changes")
	default:
		s.app.logger.Error(err)
	}
}

// reload picks up edits to the pipeline file. A broken file keeps the
// previous pipeline.
func (s *watchSession) reload() {
	pipeline, err := s.app.configLoader.Load(s.configPath)
	if err != nil {
		s.app.logger.Error(zerr.Wrap(err, "failed to reload configuration"))
		return
	}

	s.mu.Lock()
	wt, ok := pipeline.WatchTarget(s.wt.Name)
	if !ok {
		s.mu.Unlock()
		s.app.logger.Error(zerr.With(domain.ErrWatchTargetNotFound, "watch", s.wt.Name))
		return
	}
	s.pipeline = pipeline
	s.wt = wt
	s.mu.Unlock()

	s.prime()
	s.app.logger.Info(fmt.Sprintf("Reloaded %s", domain.PipelineFileName))
}
