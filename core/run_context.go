package core

import (
	"context"

	"github.com/hupe1980/tabmesh/logging"
)

// loggerAdapter wraps a logging.Logger and exposes convenience methods
// (LogDebug/LogInfo/LogWarn/LogError). It guarantees a non-nil logger by
// substituting a NoOpLogger when constructed with nil.
type loggerAdapter struct {
	logger logging.Logger
}

func newLoggerAdapter(l logging.Logger) *loggerAdapter {
	if l == nil {
		l = logging.NoOpLogger{}
	}
	return &loggerAdapter{logger: l}
}

// Logger returns the underlying logger.
func (l *loggerAdapter) Logger() logging.Logger { return l.logger }

// LogDebug logs a debug message.
func (l *loggerAdapter) LogDebug(msg string, args ...any) { l.logger.Debug(msg, args...) }

// LogInfo logs an info message.
func (l *loggerAdapter) LogInfo(msg string, args ...any) { l.logger.Info(msg, args...) }

// LogWarn logs a warning message.
func (l *loggerAdapter) LogWarn(msg string, args ...any) { l.logger.Warn(msg, args...) }

// LogError logs an error message.
func (l *loggerAdapter) LogError(msg string, args ...any) { l.logger.Error(msg, args...) }

// RunContext carries execution state & helpers for a single organizer run.
// It encapsulates the per-run scope passed to a Stage's Run method:
//
//   - The ambient cancellation Context
//   - The run identifier
//   - The target window ID, captured exactly once when the run starts and
//     threaded through every stage (stages must not re-query the focused
//     window; focus may change mid-run)
//   - The Host the stages operate through
//   - The mutable RunReport accumulating effects
//
// A RunContext is used by one run at a time and is not safe for concurrent
// mutation.
type RunContext struct {
	Context      context.Context
	RunID        string
	TargetWindow WindowID
	Host         Host
	Report       *RunReport

	*loggerAdapter
}

// NewRunContext constructs a RunContext with a fresh report. A nil logger is
// replaced by a NoOpLogger.
func NewRunContext(
	ctx context.Context,
	runID string,
	target WindowID,
	host Host,
	logger logging.Logger,
) *RunContext {
	return &RunContext{
		Context:       ctx,
		RunID:         runID,
		TargetWindow:  target,
		Host:          host,
		Report:        &RunReport{RunID: runID},
		loggerAdapter: newLoggerAdapter(logger),
	}
}
