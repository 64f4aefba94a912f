// Package stage contains the concrete pipeline stages of the organizer:
//
//   - Consolidator: merges every window's tabs into the run's target window
//   - Deduplicator: collapses tabs with identical URLs, special-casing blank
//     "new tab" pages
//   - Grouper: clusters the remaining tabs into named groups by domain label
//     and ungroups singleton domains
//
// Stages communicate with the browser exclusively through the core.Host on
// their RunContext and declare their failure policy explicitly: the first two
// propagate errors and abort the run, the grouper absorbs them.
package stage
