// Package bridge implements core.Host over an HTTP connection to a browser
// extension. The extension cannot accept inbound connections, so the bridge
// inverts the flow: the extension long-polls GET /v1/commands for work, the
// server parks each host call on a per-command reply channel and the
// extension posts the outcome to POST /v1/replies. A toolbar click in the
// extension hits POST /v1/trigger, which the serving process turns into an
// organizer run.
//
// The server exposes /healthz and a Prometheus /metrics endpoint on the same
// router so a single listener serves both the extension and operational
// probes.
package bridge
