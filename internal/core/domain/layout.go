package domain

const (
	// PipelineFileName is the name of the pipeline configuration file.
	PipelineFileName = "letterpress.yaml"

	// DefaultAlias is the alias run when no names are given.
	DefaultAlias = "default"

	// DefaultWatchTarget is the watch target used when none is given.
	DefaultWatchTarget = "default"

	// DotEnvFile is the optional file holding mail transport secrets.
	DotEnvFile = ".env"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)
