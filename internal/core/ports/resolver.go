package ports

//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks

// FileResolver expands glob patterns into concrete paths.
type FileResolver interface {
	// Resolve applies the patterns in order relative to root. A leading "!"
	// removes matching paths collected so far. Returned paths are relative to
	// root and use forward slashes.
	Resolve(patterns []string, root string) ([]string, error)

	// Match reports whether a root-relative path is selected by the patterns.
	Match(patterns []string, path string) (bool, error)
}
