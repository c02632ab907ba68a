package ports

import (
	"context"

	"go.trai.ch/letterpress/internal/core/domain"
)

//go:generate mockgen -source=tool.go -destination=mocks/mock_tool.go -package=mocks

// Tool runs every task of one kind.
type Tool interface {
	// Kind returns the task kind handled by the tool.
	Kind() string
	// Run executes a single task. The invocation is read-only.
	Run(ctx context.Context, inv domain.Invocation) error
}

// ToolRegistry resolves task kinds to tools.
type ToolRegistry interface {
	// Lookup returns the tool registered for kind.
	Lookup(kind string) (Tool, bool)
	// Kinds returns the registered kinds in sorted order.
	Kinds() []string
}
