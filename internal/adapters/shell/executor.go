// Package shell provides the executor for external commands such as lessc,
// bower or sendmail.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/zerr"
)

// Shell is the interpreter used for single-string command lines.
const Shell = "/bin/sh"

// Executor implements ports.Executor using os/exec and pty.
type Executor struct {
	sysEnv []string
}

// NewExecutor creates a new Executor inheriting the allow-listed parts of
// the process environment.
func NewExecutor() *Executor {
	return &Executor{sysEnv: os.Environ()}
}

// Execute runs the command and waits for it to complete. Output is copied
// to stdout; on a pseudo-terminal stdout and stderr are merged.
func (e *Executor) Execute(ctx context.Context, command domain.Command, stdout, stderr io.Writer) error {
	args := shellArgs(command.Args)
	if len(args) == 0 {
		return domain.ErrEmptyCommand
	}

	cmdEnv := resolveEnvironment(e.sysEnv, command.Env)

	name := args[0]
	executable := name
	if !filepath.IsAbs(name) && !strings.Contains(name, string(filepath.Separator)) {
		if lp, err := lookPath(name, cmdEnv); err == nil {
			executable = lp
		}
	}

	build := func() *exec.Cmd {
		cmd := exec.CommandContext(ctx, executable, args[1:]...) //nolint:gosec // user provided command
		cmd.Args[0] = name
		cmd.Dir = command.Dir
		cmd.Env = cmdEnv
		return cmd
	}

	var err error
	if command.Stdin != nil {
		err = runPiped(build(), command.Stdin, stdout, stderr)
	} else {
		err = runPTY(build, stdout, stderr)
	}
	if err == nil {
		return nil
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	err = zerr.With(zerr.Wrap(err, domain.ErrCommandFailed.Error()), "command", command.String())
	return zerr.With(err, "exit_code", exitCode)
}

func runPTY(build func() *exec.Cmd, stdout, stderr io.Writer) error {
	cmd := build()
	ptmx, err := pty.Start(cmd)
	if err != nil {
		// No pseudo-terminal available, as in some CI sandboxes.
		return runPiped(build(), nil, stdout, stderr)
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		// A PTY merges stdout and stderr.
		_, _ = io.Copy(stdout, ptmx)
	}()

	err = cmd.Wait()
	<-ioDone
	_ = ptmx.Close()
	return err
}

func runPiped(cmd *exec.Cmd, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// shellArgs runs a single command line containing whitespace through the shell.
func shellArgs(args []string) []string {
	args = slices.DeleteFunc(slices.Clone(args), func(s string) bool { return s == "" })
	if len(args) == 1 && strings.ContainsAny(args[0], " \t\n|&;<>$`'\"") {
		return []string{Shell, "-c", args[0]}
	}
	return args
}

// allowListedEnvVars are the system environment variables inherited by
// commands. Everything else must be passed explicitly.
var allowListedEnvVars = map[string]struct{}{
	"HOME":      {},
	"TERM":      {},
	"USER":      {},
	"PATH":      {},
	"LANG":      {},
	"TMPDIR":    {},
	"NODE_PATH": {},
}

// resolveEnvironment merges the allow-listed system environment with the
// command's own variables, which take precedence.
func resolveEnvironment(sysEnv, extra []string) []string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, allowed := allowListedEnvVars[k]; allowed {
			envMap[k] = v
		}
	}
	for _, entry := range extra {
		if k, v, ok := strings.Cut(entry, "="); ok {
			envMap[k] = v
		}
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// lookPath searches for an executable in the PATH of the given environment.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if p, ok := strings.CutPrefix(e, "PATH="); ok {
			path = p
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
