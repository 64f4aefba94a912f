// Package core provides the foundational domain types, interfaces and the
// per-run execution context used by TabMesh. It defines the core abstractions
// for:
//
//   - Windows, Tabs and Groups (the browser-side entities this system reads
//     and mutates, identified by host-assigned IDs)
//   - The Host interface (asynchronous request/response tab-management API)
//   - Stages (units of pipeline work with an explicit FailurePolicy)
//   - RunContext (scoped execution state threaded through each stage)
//   - RunReport (counters and per-stage outcomes for a single run)
//
// The package intentionally keeps implementation concerns (concrete hosts,
// pipeline orchestration, stage logic) out of scope, exposing small
// interfaces to enable custom backends and extensions.
package core
