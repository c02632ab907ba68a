package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/letterpress/internal/adapters/config"  //nolint:depguard // Wired in app layer
	"go.trai.ch/letterpress/internal/adapters/fs"      //nolint:depguard // Wired in app layer
	"go.trai.ch/letterpress/internal/adapters/linear"  //nolint:depguard // Wired in app layer
	"go.trai.ch/letterpress/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"go.trai.ch/letterpress/internal/adapters/tools"   //nolint:depguard // Wired in app layer
	"go.trai.ch/letterpress/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/letterpress/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			tools.NodeID,
			logger.NodeID,
			fs.ResolverNodeID,
			watcher.WatcherNodeID,
			watcher.ChangeCacheNodeID,
			linear.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewComponents(app, log), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	registry, err := graft.Dep[ports.ToolRegistry](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	resolver, err := graft.Dep[ports.FileResolver](ctx)
	if err != nil {
		return nil, err
	}

	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	changes, err := graft.Dep[*watcher.ChangeCache](ctx)
	if err != nil {
		return nil, err
	}

	renderers, err := graft.Dep[*linear.Factory](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, registry, log, resolver, w, changes, renderers), nil
}
