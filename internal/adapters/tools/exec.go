package tools

import (
	"context"
	"fmt"

	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/letterpress/internal/core/ports"
	"go.trai.ch/zerr"
)

// KindExec runs an arbitrary command.
const KindExec = "exec"

// Exec implements the exec task kind.
//
// Options:
//
//	command  a command line, or an argument list
//	cwd      working directory relative to the root
//	env      extra environment variables
type Exec struct {
	executor ports.Executor
}

// Kind implements ports.Tool.
func (e *Exec) Kind() string { return KindExec }

// Run implements ports.Tool.
func (e *Exec) Run(ctx context.Context, inv domain.Invocation) error {
	opts := inv.Task.Options
	args, err := opts.Strings("command")
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return zerr.With(domain.ErrEmptyCommand, "task", inv.Task.Name)
	}
	cwd, err := opts.String("cwd", "")
	if err != nil {
		return err
	}
	vars, err := opts.Map("env")
	if err != nil {
		return err
	}

	cmd := domain.Command{Args: args, Dir: inv.Env.Abs(cwd)}
	for _, k := range sortedOptionKeys(vars) {
		v, err := vars.String(k, "")
		if err != nil {
			return err
		}
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	return e.executor.Execute(ctx, cmd, inv.Stdout, inv.Stderr)
}
