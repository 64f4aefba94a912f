package core

import "errors"

// WindowID identifies a browser window. IDs are assigned by the host and are
// never fabricated by this system.
type WindowID int

// TabID identifies a single tab within the host.
type TabID int

// GroupID identifies a visual tab group created by the host.
type GroupID int

// NoGroup marks a tab that is not a member of any group.
const NoGroup GroupID = -1

// AppendIndex requests that a moved tab be placed at the end of the target
// window's tab order.
const AppendIndex = -1

const (
	// InternalScheme is the URL scheme prefix of the host's internal pages.
	InternalScheme = "chrome://"

	// BlankTabURL is the sentinel URL of an empty "new tab" page.
	BlankTabURL = "chrome://newtab/"

	// InternalLabel is the fixed domain label assigned to internal pages.
	InternalLabel = "Chrome"
)

// Window is a top-level host container holding an ordered list of tabs.
// Existence is transient: the host creates and destroys windows, including
// implicitly closing a window once its last tab is moved away or removed.
type Window struct {
	ID      WindowID
	Focused bool
	Tabs    []Tab
}

// Tab is a single navigable unit with a URL, owned by exactly one window at
// any instant.
type Tab struct {
	ID       TabID
	WindowID WindowID
	Index    int
	URL      string
	GroupID  GroupID
}

// Blank reports whether the tab is an empty "new tab" page.
func (t Tab) Blank() bool { return t.URL == BlankTabURL }

// Group is a named, window-scoped visual cluster of tabs.
type Group struct {
	ID       GroupID
	WindowID WindowID
	Title    string
	TabIDs   []TabID
}

// Clone returns a deep copy of the window so callers can hold a snapshot
// without observing later host-side mutation.
func (w Window) Clone() Window {
	out := w
	out.Tabs = make([]Tab, len(w.Tabs))
	copy(out.Tabs, w.Tabs)
	return out
}

// TabIDs returns the window's tab identifiers in tab order.
func (w Window) TabIDs() []TabID {
	ids := make([]TabID, len(w.Tabs))
	for i, t := range w.Tabs {
		ids[i] = t.ID
	}
	return ids
}

// Sentinel errors reported by Host implementations.
var (
	// ErrWindowNotFound indicates the referenced window no longer exists.
	ErrWindowNotFound = errors.New("window not found")

	// ErrTabNotFound indicates the referenced tab no longer exists.
	ErrTabNotFound = errors.New("tab not found")

	// ErrGroupNotFound indicates the referenced group no longer exists.
	ErrGroupNotFound = errors.New("group not found")

	// ErrHostClosed indicates the host connection has been shut down.
	ErrHostClosed = errors.New("host closed")
)
