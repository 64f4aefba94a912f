// Package engine orchestrates the organizer pipeline: it captures the target
// window once per run, executes the registered stages strictly in sequence
// and applies each stage's declared failure policy. Lifecycle callbacks
// (before/after stage, on error) allow callers to hook instrumentation into
// the run without touching stage logic.
package engine
