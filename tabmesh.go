// Package tabmesh provides a high-level façade over the core Engine and its
// service abstractions (hosts, stages & logging) enabling one-call browser
// tab organization. Most applications interact with this package by:
//  1. Creating a TabMesh via New() (optionally overriding the default host,
//     logger or pipeline)
//  2. Calling Organize() whenever the browser should be tidied
//
// An organize run performs three stages in order: consolidate every tab into
// the focused window, close duplicate and blank tabs, and group the survivors
// by site with titled tab groups. The façade delegates orchestration to
// engine.Engine while keeping setup and usage ergonomics concise. All
// defaults are safe for local development and testing; production deployments
// supply a real browser host (such as the extension bridge) and a structured
// logger.
package tabmesh

import (
	"context"

	"github.com/hupe1980/tabmesh/core"
	"github.com/hupe1980/tabmesh/engine"
	"github.com/hupe1980/tabmesh/logging"
)

// Options configures the TabMesh instance.
type Options struct {
	// EngineConfig holds engine level settings such as dry-run mode.
	EngineConfig engine.Config

	// Host connects the pipeline to a browser. Defaults to an in-memory
	// simulation if not provided.
	Host core.Host

	// Stages overrides the default pipeline (consolidate, deduplicate,
	// group). Stages run strictly in the given order.
	Stages []core.Stage

	// Callbacks are lifecycle hooks registered with the engine.
	Callbacks []engine.Callback

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// TabMesh is the high-level façade aggregating the underlying engine and services.
type TabMesh struct {
	opts   Options
	engine *engine.Engine
}

// New creates a new TabMesh instance with optional overrides. Any unset
// service is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *TabMesh {
	opts := Options{
		EngineConfig: engine.DefaultConfig(),
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	e := engine.New(func(o *engine.Options) {
		o.Config = opts.EngineConfig
		o.Host = opts.Host
		o.Logger = opts.Logger
		o.Stages = opts.Stages
		o.Callbacks = opts.Callbacks
	})

	return &TabMesh{opts: opts, engine: e}
}

// Organize runs the pipeline once against the currently focused window and
// returns the run's report. The report is populated even when an error is
// returned, so callers can inspect which effects were applied before the
// failure.
func (m *TabMesh) Organize(ctx context.Context) (*core.RunReport, error) {
	return m.engine.Run(ctx)
}
