package core

import "context"

// Host is the tab-management API of the browser-side environment, consumed as
// a set of asynchronous request/response operations. Every call blocks until
// the host replies (or the context is cancelled) and reports failure through
// the ordinary error return: a populated error must fail the enclosing
// request rather than let a stage proceed on stale or undefined data.
//
// Implementations must:
//   - Respect context cancellation on every call
//   - Return snapshots (clones) that callers can hold without racing the
//     live window state
//   - Never retry or roll back on the caller's behalf
type Host interface {
	// CurrentWindow fetches the focused window with its tabs populated.
	CurrentWindow(ctx context.Context) (Window, error)

	// Windows fetches every open window with tabs populated, in host order.
	Windows(ctx context.Context) ([]Window, error)

	// MoveTab repositions a tab into the given window at the given index.
	// AppendIndex places the tab at the end of the window's tab order.
	// Moving the last tab out of a window causes the host to close that
	// window; that is host behavior, not something callers manage.
	MoveTab(ctx context.Context, tab TabID, window WindowID, index int) (Tab, error)

	// RemoveTabs closes one or more tabs in a single batched request.
	RemoveTabs(ctx context.Context, tabs []TabID) error

	// GroupTabs creates a visual grouping scoped to the given window
	// containing exactly the given tabs, returning the host-assigned ID.
	GroupTabs(ctx context.Context, tabs []TabID, window WindowID) (GroupID, error)

	// SetGroupTitle renames an existing group.
	SetGroupTitle(ctx context.Context, group GroupID, title string) error

	// UngroupTabs removes the given tabs from any group they belong to.
	// Ungrouping an already-ungrouped tab is a no-op.
	UngroupTabs(ctx context.Context, tabs []TabID) error
}
