package tasks

import (
	"go.uber.org/zap"

	"autolytics/pkg/core"
	"autolytics/pkg/runlog"
)

// DefaultRegistry builds the task registry with every built-in analytic
// registered, then freezes it. The registry is an explicit instance the
// caller passes around; nothing here is process-global.
func DefaultRegistry(logger *zap.Logger, store *runlog.Store) *core.Registry {
	registry := core.NewRegistry()
	register := func(name string, factory core.Factory) {
		// Names are unique literals below, so Register cannot fail here.
		_ = registry.Register(name, factory)
	}
	register("classification", func() core.Task { return &Classification{Logger: logger, Store: store} })
	register("regression", func() core.Task { return &Regression{Logger: logger, Store: store} })
	register("correlation", func() core.Task { return &Correlation{Logger: logger, Store: store} })
	registry.Freeze()
	return registry
}
