package shell_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/letterpress/internal/adapters/shell"
	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestExecutor_Execute_MultiLineOutput(t *testing.T) {
	executor := shell.NewExecutor()

	cmd := domain.Command{
		Args: []string{"sh", "-c", "echo line1; echo line2"},
		Dir:  t.TempDir(),
	}

	var stdout bytes.Buffer
	err := executor.Execute(context.Background(), cmd, &stdout, io.Discard)
	require.NoError(t, err)

	output := stdout.String()
	require.Contains(t, output, "line1")
	require.Contains(t, output, "line2")
}

func TestExecutor_Execute_CommandLineRunsThroughShell(t *testing.T) {
	executor := shell.NewExecutor()
	dir := t.TempDir()

	cmd := domain.Command{
		Args: []string{"printf part1 > out.txt && echo part2 >> out.txt"},
		Dir:  dir,
	}

	err := executor.Execute(context.Background(), cmd, io.Discard, io.Discard)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "part1part2\n", string(data))
}

func TestExecutor_Execute_EnvironmentVariables(t *testing.T) {
	executor := shell.NewExecutor()

	cmd := domain.Command{
		Args: []string{"sh", "-c", "echo $MY_TEST_VAR"},
		Env:  []string{"MY_TEST_VAR=test-value-123"},
		Dir:  t.TempDir(),
	}

	var stdout bytes.Buffer
	err := executor.Execute(context.Background(), cmd, &stdout, io.Discard)
	require.NoError(t, err)
	require.Contains(t, stdout.String(), "test-value-123")
}

func TestExecutor_Execute_HermeticEnvironment(t *testing.T) {
	t.Setenv("LETTERPRESS_SECRET", "leaked")
	executor := shell.NewExecutor()

	cmd := domain.Command{Args: []string{"sh", "-c", "echo [$LETTERPRESS_SECRET]"}}

	var stdout bytes.Buffer
	require.NoError(t, executor.Execute(context.Background(), cmd, &stdout, io.Discard))
	assert.Contains(t, stdout.String(), "[]")
}

func TestExecutor_Execute_Stdin(t *testing.T) {
	executor := shell.NewExecutor()

	cmd := domain.Command{
		Args:  []string{"cat"},
		Stdin: strings.NewReader("Subject: hi\n\nbody\n"),
	}

	var stdout bytes.Buffer
	require.NoError(t, executor.Execute(context.Background(), cmd, &stdout, io.Discard))
	assert.Equal(t, "Subject: hi\n\nbody\n", stdout.String())
}

func TestExecutor_Execute_Failure(t *testing.T) {
	executor := shell.NewExecutor()

	cmd := domain.Command{Args: []string{"sh", "-c", "exit 3"}}

	err := executor.Execute(context.Background(), cmd, io.Discard, io.Discard)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrCommandFailed.Error())

	var zErr *zerr.Error
	require.True(t, errors.As(err, &zErr))
	assert.Equal(t, 3, zErr.Metadata()["exit_code"])
}

func TestExecutor_Execute_InvalidCommand(t *testing.T) {
	executor := shell.NewExecutor()

	cmd := domain.Command{Args: []string{"letterpress-command-that-does-not-exist"}}

	err := executor.Execute(context.Background(), cmd, io.Discard, io.Discard)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrCommandFailed.Error())
}

func TestExecutor_Execute_Empty(t *testing.T) {
	executor := shell.NewExecutor()

	err := executor.Execute(context.Background(), domain.Command{Args: []string{""}}, io.Discard, io.Discard)
	assert.ErrorIs(t, err, domain.ErrEmptyCommand)
}

func TestExecutor_Execute_Cancelled(t *testing.T) {
	executor := shell.NewExecutor()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := executor.Execute(ctx, domain.Command{Args: []string{"sleep", "5"}}, io.Discard, io.Discard)
	assert.Error(t, err)
}
