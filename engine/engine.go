package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/tabmesh/core"
	"github.com/hupe1980/tabmesh/host"
	"github.com/hupe1980/tabmesh/logging"
	"github.com/hupe1980/tabmesh/stage"
)

// Config holds engine level settings.
type Config struct {
	// DryRun previews mutations instead of issuing them. The host is wrapped
	// so that reads pass through and writes are logged with fabricated
	// results.
	DryRun bool
}

// DefaultConfig returns the engine's default configuration.
func DefaultConfig() Config {
	return Config{}
}

// Options configure an Engine.
type Options struct {
	// Config holds engine level settings.
	Config Config

	// Host is the browser host the stages operate through. Defaults to an
	// empty InMemoryHost.
	Host core.Host

	// Logger receives run and stage diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger

	// Stages is the ordered pipeline. Defaults to consolidate, deduplicate,
	// group.
	Stages []core.Stage

	// Callbacks are registered with the engine's callback manager.
	Callbacks []Callback
}

// Engine drives organizer runs. Stages execute strictly in sequence on a
// target window captured once at the start of the run; each stage's failure
// policy decides whether an error halts the pipeline or is absorbed.
type Engine struct {
	config    Config
	host      core.Host
	logger    logging.Logger
	stages    []core.Stage
	callbacks *CallbackManager
}

// New creates an engine configured through functional options.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config: DefaultConfig(),
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Host == nil {
		opts.Host = host.NewInMemoryHost()
	}

	if opts.Stages == nil {
		opts.Stages = []core.Stage{
			stage.NewConsolidator(),
			stage.NewDeduplicator(),
			stage.NewGrouper(),
		}
	}

	cm := NewCallbackManager()
	for _, cb := range opts.Callbacks {
		cm.Register(cb)
	}

	return &Engine{
		config:    opts.Config,
		host:      opts.Host,
		logger:    opts.Logger,
		stages:    opts.Stages,
		callbacks: cm,
	}
}

// RegisterCallback adds a lifecycle callback. Call before Run; registration
// during a run is not supported.
func (e *Engine) RegisterCallback(cb Callback) {
	e.callbacks.Register(cb)
}

// Run executes the pipeline once and returns the run's report. The returned
// report is populated even on error, so callers can inspect partial effects.
//
// The focused window is resolved exactly once, before the first stage, and
// every stage operates on that captured window ID. Focus changes during the
// run therefore cannot redirect later stages to a different window.
func (e *Engine) Run(ctx context.Context) (*core.RunReport, error) {
	runID := uuid.New().String()

	h := e.host
	if e.config.DryRun {
		h = host.NewDryRunHost(h, e.logger)
	}

	target, err := h.CurrentWindow(ctx)
	if err != nil {
		e.logger.Error("resolving target window failed", "run_id", runID, "error", err)
		return &core.RunReport{RunID: runID}, fmt.Errorf("resolve target window: %w", err)
	}

	rc := core.NewRunContext(ctx, runID, target.ID, h, e.logger)
	e.logger.Info("run started", "run_id", runID, "target_window", target.ID, "stages", len(e.stages), "dry_run", e.config.DryRun)

	for _, s := range e.stages {
		if err := ctx.Err(); err != nil {
			return rc.Report, err
		}
		if err := e.runStage(ctx, rc, s); err != nil {
			return rc.Report, err
		}
	}

	e.logger.Info("run completed", "run_id", runID,
		"tabs_moved", rc.Report.TabsMoved,
		"tabs_removed", rc.Report.TabsRemoved,
		"groups_created", rc.Report.GroupsCreated,
		"tabs_ungrouped", rc.Report.TabsUngrouped,
	)

	return rc.Report, nil
}

// runStage executes one stage with callbacks, timing and failure policy
// handling.
func (e *Engine) runStage(ctx context.Context, rc *core.RunContext, s core.Stage) error {
	cbCtx := &CallbackContext{RunID: rc.RunID, Stage: s, Report: rc.Report}
	if err := e.callbacks.Execute(ctx, CallbackBeforeStage, cbCtx); err != nil {
		return fmt.Errorf("before-stage callback for %q: %w", s.Name(), err)
	}

	start := time.Now()
	err := s.Run(rc)
	result := core.StageResult{
		Stage:    s.Name(),
		Policy:   s.Policy(),
		Duration: time.Since(start),
		Err:      err,
	}

	if err != nil {
		cbCtx.Result = &result
		if cbErr := e.callbacks.Execute(ctx, CallbackOnError, cbCtx); cbErr != nil {
			e.logger.Warn("on-error callback failed", "run_id", rc.RunID, "stage", s.Name(), "error", cbErr)
		}

		switch s.Policy() {
		case core.PolicyAbsorb:
			result.Absorbed = true
			e.logger.Warn("stage failed, continuing", "run_id", rc.RunID, "stage", s.Name(), "policy", s.Policy().String(), "error", err)
		default:
			rc.Report.Stages = append(rc.Report.Stages, result)
			e.logger.Error("stage failed, aborting run", "run_id", rc.RunID, "stage", s.Name(), "policy", s.Policy().String(), "error", err)
			return fmt.Errorf("stage %q: %w", s.Name(), err)
		}
	}

	rc.Report.Stages = append(rc.Report.Stages, result)
	cbCtx.Result = &result
	if cbErr := e.callbacks.Execute(ctx, CallbackAfterStage, cbCtx); cbErr != nil {
		e.logger.Warn("after-stage callback failed", "run_id", rc.RunID, "stage", s.Name(), "error", cbErr)
	}

	e.logger.Debug("stage completed", "run_id", rc.RunID, "stage", s.Name(), "duration", result.Duration, "absorbed", result.Absorbed)
	return nil
}
