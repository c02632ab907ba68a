package domain

import (
	"io"
	"strings"
)

// Command is an external process invocation.
type Command struct {
	// Args holds the program and its arguments. A single element containing
	// whitespace is run through the shell.
	Args []string
	// Dir is the working directory. Empty means the project root.
	Dir string
	// Env holds extra "KEY=VALUE" pairs added to the process environment.
	Env []string
	// Stdin is fed to the process when set. Commands with input run on
	// plain pipes instead of a pseudo-terminal.
	Stdin io.Reader
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.Join(c.Args, " ")
}
