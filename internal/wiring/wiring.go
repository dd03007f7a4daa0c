// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "github.com/SkeneZr/cc-rules/internal/adapters/cas"
	_ "github.com/SkeneZr/cc-rules/internal/adapters/config"
	_ "github.com/SkeneZr/cc-rules/internal/adapters/fs"
	_ "github.com/SkeneZr/cc-rules/internal/adapters/logger"
	_ "github.com/SkeneZr/cc-rules/internal/adapters/shell"
	_ "github.com/SkeneZr/cc-rules/internal/adapters/telemetry"
	// Register platform and app nodes.
	_ "github.com/SkeneZr/cc-rules/internal/app"
	_ "github.com/SkeneZr/cc-rules/internal/platform"
)
