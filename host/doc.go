// Package host houses concrete implementations of the core.Host interface.
// The interface itself lives in the core package to centralize domain
// contracts; keeping only implementations here prevents higher level
// packages (stages, engine) from depending on concrete backends.
//
// InMemoryHost simulates a browser's window/tab/group behavior in-process
// and backs tests, examples and dry runs. The bridge sub-package connects a
// real browser extension over HTTP. Additional backends can be added in
// sub-packages without changing any calling code.
package host
