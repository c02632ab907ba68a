// Package scheduler runs the tasks of a pipeline strictly in order.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/letterpress/internal/core/ports"
	"go.trai.ch/zerr"
)

// Scheduler expands requested names into tasks and runs them one at a time,
// stopping at the first failure.
type Scheduler struct {
	registry ports.ToolRegistry
	tracer   ports.Tracer

	mu           sync.RWMutex
	taskStatus   map[string]domain.TaskStatus
	targetStatus map[string]domain.TaskStatus
}

// NewScheduler creates a new Scheduler with the given dependencies.
func NewScheduler(registry ports.ToolRegistry, tracer ports.Tracer) *Scheduler {
	return &Scheduler{
		registry:     registry,
		tracer:       tracer,
		taskStatus:   make(map[string]domain.TaskStatus),
		targetStatus: make(map[string]domain.TaskStatus),
	}
}

// step is one requested name and the tasks it expands to.
type step struct {
	target string
	tasks  []*domain.Task
}

// Plan expands the requested names into the ordered task list of a run and
// checks that a tool exists for every task.
func (s *Scheduler) Plan(pipeline *domain.Pipeline, targets []string) ([]*domain.Task, error) {
	steps, err := s.plan(pipeline, targets)
	if err != nil {
		return nil, err
	}
	var out []*domain.Task
	for _, st := range steps {
		out = append(out, st.tasks...)
	}
	return out, nil
}

func (s *Scheduler) plan(pipeline *domain.Pipeline, targets []string) ([]step, error) {
	if len(targets) == 0 {
		return nil, domain.ErrNoTargetsSpecified
	}

	steps := make([]step, 0, len(targets))
	for _, target := range targets {
		tasks, err := pipeline.Expand(target)
		if err != nil {
			return nil, err
		}
		for _, t := range tasks {
			if _, ok := s.registry.Lookup(t.Kind); !ok {
				err := zerr.With(domain.ErrUnknownTaskKind, "kind", t.Kind)
				return nil, zerr.With(err, "task", t.Name)
			}
		}
		steps = append(steps, step{target: target, tasks: tasks})
	}
	return steps, nil
}

// Run executes the requested aliases, tasks or kinds in order. A task only
// starts once its predecessor has completed; after a failure no further
// task runs and the error names the failing task.
func (s *Scheduler) Run(ctx context.Context, pipeline *domain.Pipeline, targets []string) error {
	steps, err := s.plan(pipeline, targets)
	if err != nil {
		return err
	}

	var names []string
	for _, st := range steps {
		for _, t := range st.tasks {
			names = append(names, t.Name)
		}
	}
	s.tracer.EmitPlan(ctx, names, targets)
	s.initStatuses(steps)

	for _, st := range steps {
		s.setTargetStatus(st.target, domain.StatusRunning)
		for _, t := range st.tasks {
			if err := ctx.Err(); err != nil {
				s.setTargetStatus(st.target, domain.StatusFailed)
				return err
			}
			if err := s.runTask(ctx, pipeline.Env(), t); err != nil {
				s.setTargetStatus(st.target, domain.StatusFailed)
				return zerr.With(zerr.Wrap(err, domain.ErrTaskExecutionFailed.Error()), "task", t.Name)
			}
		}
		s.setTargetStatus(st.target, domain.StatusCompleted)
	}
	return nil
}

func (s *Scheduler) runTask(ctx context.Context, env domain.Env, t *domain.Task) (err error) {
	tool, _ := s.registry.Lookup(t.Kind)

	ctx, span := s.tracer.Start(ctx, t.Name, ports.WithKind(t.Kind))
	defer span.End()

	// A panicking tool fails its task like any other error.
	defer func() {
		if r := recover(); r != nil {
			err = zerr.With(zerr.Wrap(domain.ErrTaskPanicked, ""), "panic", fmt.Sprint(r))
			span.RecordError(err)
			s.setTaskStatus(t.Name, domain.StatusFailed)
		}
	}()

	s.setTaskStatus(t.Name, domain.StatusRunning)
	err = tool.Run(ctx, domain.Invocation{
		Task:   t,
		Env:    env,
		Stdout: span,
		Stderr: span,
	})
	if err != nil {
		span.RecordError(err)
		s.setTaskStatus(t.Name, domain.StatusFailed)
		return err
	}
	s.setTaskStatus(t.Name, domain.StatusCompleted)
	return nil
}

// Status returns the state of a task in the current or last run.
func (s *Scheduler) Status(task string) (domain.TaskStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.taskStatus[task]
	return st, ok
}

// TargetStatus returns the state of a requested name in the current or last run.
func (s *Scheduler) TargetStatus(target string) (domain.TaskStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.targetStatus[target]
	return st, ok
}

func (s *Scheduler) initStatuses(steps []step) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.taskStatus)
	clear(s.targetStatus)
	for _, st := range steps {
		s.targetStatus[st.target] = domain.StatusPending
		for _, t := range st.tasks {
			s.taskStatus[t.Name] = domain.StatusPending
		}
	}
}

func (s *Scheduler) setTaskStatus(name string, status domain.TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskStatus[name] = status
}

func (s *Scheduler) setTargetStatus(name string, status domain.TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targetStatus[name] = status
}
