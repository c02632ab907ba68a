package domain

import "go.trai.ch/zerr"

var (
	// ErrTaskAlreadyExists is returned when two targets resolve to the same task name.
	ErrTaskAlreadyExists = zerr.New("task already exists")

	// ErrAliasAlreadyExists is returned when an alias is declared twice.
	ErrAliasAlreadyExists = zerr.New("alias already exists")

	// ErrTaskNotFound is returned when a requested task, kind or alias is not declared.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrAliasCycle is returned when an alias expands into itself.
	ErrAliasCycle = zerr.New("alias cycle detected")

	// ErrEmptyAlias is returned when an alias has no entries.
	ErrEmptyAlias = zerr.New("alias has no tasks")

	// ErrInvalidTaskName is returned when a task kind or target contains invalid characters.
	ErrInvalidTaskName = zerr.New("invalid task name")

	// ErrUnknownTaskKind is returned when no tool is registered for a task kind.
	ErrUnknownTaskKind = zerr.New("no tool registered for task kind")

	// ErrNoTargetsSpecified is returned when no targets are specified for the run command.
	ErrNoTargetsSpecified = zerr.New("no targets specified")

	// ErrWatchTargetNotFound is returned when a watch target is not declared.
	ErrWatchTargetNotFound = zerr.New("watch target not found")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when no pipeline file can be found.
	ErrConfigNotFound = zerr.New("could not find pipeline file")

	// ErrConfigExists is returned by init when a pipeline file is already present.
	ErrConfigExists = zerr.New("pipeline file already exists")

	// ErrManifestReadFailed is returned when the package manifest cannot be read.
	ErrManifestReadFailed = zerr.New("failed to read package manifest")

	// ErrInvalidFileMapping is returned when a target's files section has an unsupported shape.
	ErrInvalidFileMapping = zerr.New("invalid file mapping")

	// ErrInvalidOption is returned when a task option has the wrong type or value.
	ErrInvalidOption = zerr.New("invalid task option")

	// ErrUnresolvedTemplate is returned when a template references an undefined variable.
	ErrUnresolvedTemplate = zerr.New("unresolved template variable")

	// ErrTemplateCycle is returned when template references never settle.
	ErrTemplateCycle = zerr.New("template references do not resolve")

	// ErrDuplicateKey is returned when two mapping keys resolve to the same name.
	ErrDuplicateKey = zerr.New("duplicate key after template resolution")

	// ErrMalformedGlob is returned when a glob pattern cannot be compiled.
	ErrMalformedGlob = zerr.New("malformed glob pattern")

	// ErrSourceNotFound is returned when a literal source path does not exist.
	ErrSourceNotFound = zerr.New("source not found")

	// ErrNoSources is returned when a task that needs input matched no files.
	ErrNoSources = zerr.New("no source files matched")

	// ErrDestinationWriteFailed is returned when an output file cannot be written.
	ErrDestinationWriteFailed = zerr.New("failed to write destination")

	// ErrSourceReadFailed is returned when an input file cannot be read.
	ErrSourceReadFailed = zerr.New("failed to read source")

	// ErrBuildExecutionFailed is returned when a pipeline run fails.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrTaskExecutionFailed is returned when a task execution fails.
	ErrTaskExecutionFailed = zerr.New("task execution failed")

	// ErrTaskPanicked is returned when a tool panics while running a task.
	ErrTaskPanicked = zerr.New("task panicked")

	// ErrCommandFailed is returned when an external command exits unsuccessfully.
	ErrCommandFailed = zerr.New("command failed")

	// ErrEmptyCommand is returned when a command task has nothing to run.
	ErrEmptyCommand = zerr.New("empty command")

	// ErrToolFailed is returned when an in-process tool (compiler, minifier...) reports errors.
	ErrToolFailed = zerr.New("tool reported errors")

	// ErrLintFailed is returned when linting finds problems.
	ErrLintFailed = zerr.New("lint failed")

	// ErrUnknownTransport is returned when a mail transport type is not supported.
	ErrUnknownTransport = zerr.New("unknown mail transport")

	// ErrInvalidMailConfig is returned when a mail transport is missing required settings.
	ErrInvalidMailConfig = zerr.New("invalid mail configuration")

	// ErrNoRecipients is returned when a mail task has no recipients.
	ErrNoRecipients = zerr.New("no recipients")

	// ErrInvalidOutputMode is returned when the output mode flag is not recognised.
	ErrInvalidOutputMode = zerr.New("invalid output mode")

	// ErrWatchFailed is returned when the file watcher cannot be started.
	ErrWatchFailed = zerr.New("failed to watch files")

	// ErrMailSendFailed is returned when a mail transport fails to deliver a message.
	ErrMailSendFailed = zerr.New("failed to send mail")
)
