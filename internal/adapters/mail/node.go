package mail

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/letterpress/internal/adapters/shell"
	"go.trai.ch/letterpress/internal/core/ports"
)

// NodeID is the unique identifier for the mailer factory Graft node.
const NodeID graft.ID = "adapter.mailer_factory"

func init() {
	graft.Register(graft.Node[ports.MailerFactory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID},
		Run: func(ctx context.Context) (ports.MailerFactory, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(executor, os.Stderr), nil
		},
	})
}
