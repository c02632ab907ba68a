package tools

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/letterpress/internal/adapters/fs"
	"go.trai.ch/letterpress/internal/adapters/mail"
	"go.trai.ch/letterpress/internal/adapters/shell"
	"go.trai.ch/letterpress/internal/core/ports"
)

// NodeID is the unique identifier for the tool registry Graft node.
const NodeID graft.ID = "adapter.tools"

func init() {
	graft.Register(graft.Node[ports.ToolRegistry]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.ResolverNodeID, shell.NodeID, mail.NodeID},
		Run: func(ctx context.Context) (ports.ToolRegistry, error) {
			resolver, err := graft.Dep[ports.FileResolver](ctx)
			if err != nil {
				return nil, err
			}
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			mailers, err := graft.Dep[ports.MailerFactory](ctx)
			if err != nil {
				return nil, err
			}
			return NewDefaultRegistry(resolver, executor, mailers), nil
		},
	})
}
