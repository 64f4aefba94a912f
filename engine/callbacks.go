package engine

import (
	"context"

	"github.com/hupe1980/tabmesh/core"
)

// CallbackType defines the lifecycle points where callbacks execute.
type CallbackType string

const (
	// CallbackBeforeStage is triggered before a stage begins execution.
	// Use for setup, validation, or instrumentation.
	CallbackBeforeStage CallbackType = "before_stage"

	// CallbackAfterStage is triggered after a stage completes, whether it
	// succeeded, failed, or had its error absorbed.
	CallbackAfterStage CallbackType = "after_stage"

	// CallbackOnError is triggered when a stage returns an error, before
	// the failure policy is applied.
	CallbackOnError CallbackType = "on_error"
)

// CallbackContext provides context information for callback execution.
type CallbackContext struct {
	// RunID identifies the organizer run.
	RunID string

	// Stage is the stage associated with this callback.
	Stage core.Stage

	// Result is the stage's outcome. Nil for CallbackBeforeStage.
	Result *core.StageResult

	// Report is the run's accumulating report.
	Report *core.RunReport
}

// Callback is an execution lifecycle hook. Implementations should be fast
// (they run synchronously inside the pipeline) and must not panic. A
// callback returning an error from CallbackBeforeStage aborts the run.
type Callback interface {
	// Type returns the callback type this implementation handles.
	Type() CallbackType

	// Execute performs the callback logic with the provided context.
	Execute(ctx context.Context, callbackCtx *CallbackContext) error
}

// FunctionCallback wraps a function as a callback implementation. It is a
// convenience for simple, stateless hooks such as metrics counters.
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(ctx context.Context, callbackCtx *CallbackContext) error
}

// NewFunctionCallback creates a new function-based callback for the given
// lifecycle point.
func NewFunctionCallback(
	callbackType CallbackType,
	fn func(ctx context.Context, callbackCtx *CallbackContext) error,
) *FunctionCallback {
	return &FunctionCallback{callbackType: callbackType, fn: fn}
}

// Type returns the callback type this function handles.
func (c *FunctionCallback) Type() CallbackType { return c.callbackType }

// Execute calls the wrapped function with the provided context.
func (c *FunctionCallback) Execute(ctx context.Context, callbackCtx *CallbackContext) error {
	return c.fn(ctx, callbackCtx)
}

// CallbackManager routes callbacks to their registered lifecycle points.
// Callbacks run sequentially in registration order; the first error stops
// execution of the remaining callbacks for that point.
//
// Registration is not thread-safe; register all callbacks before starting
// runs. Execution is safe for concurrent use once registration is complete.
type CallbackManager struct {
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager creates an empty callback manager.
func NewCallbackManager() *CallbackManager {
	return &CallbackManager{callbacks: make(map[CallbackType][]Callback)}
}

// Register adds a callback for its declared type.
func (cm *CallbackManager) Register(callback Callback) {
	t := callback.Type()
	cm.callbacks[t] = append(cm.callbacks[t], callback)
}

// Execute runs all callbacks registered for the given type.
func (cm *CallbackManager) Execute(
	ctx context.Context,
	callbackType CallbackType,
	callbackCtx *CallbackContext,
) error {
	for _, callback := range cm.callbacks[callbackType] {
		if err := callback.Execute(ctx, callbackCtx); err != nil {
			return err
		}
	}
	return nil
}
