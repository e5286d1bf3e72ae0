// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/warm/internal/adapters/config"
	_ "go.trai.ch/warm/internal/adapters/fs"
	_ "go.trai.ch/warm/internal/adapters/logger"
	_ "go.trai.ch/warm/internal/adapters/shell"
	_ "go.trai.ch/warm/internal/adapters/store"
	_ "go.trai.ch/warm/internal/adapters/telemetry/progrock"
	// Register app and engine nodes.
	_ "go.trai.ch/warm/internal/app"
	_ "go.trai.ch/warm/internal/engine/pipeline"
	_ "go.trai.ch/warm/internal/engine/planner"
)
