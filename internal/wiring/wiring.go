// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/letterpress/internal/adapters/config"
	_ "go.trai.ch/letterpress/internal/adapters/fs"
	_ "go.trai.ch/letterpress/internal/adapters/linear"
	_ "go.trai.ch/letterpress/internal/adapters/logger"
	_ "go.trai.ch/letterpress/internal/adapters/mail"
	_ "go.trai.ch/letterpress/internal/adapters/shell"
	_ "go.trai.ch/letterpress/internal/adapters/tools"
	_ "go.trai.ch/letterpress/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/letterpress/internal/app"
)
