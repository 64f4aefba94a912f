package testutil

import "github.com/hupe1980/tabmesh/core"

// WindowBuilder provides a fluent helper for constructing windows in tests.
// Example:
//
//	w := NewWindowBuilder(1).Focused().Tab(10, "https://example.com/").Build()
//
// Tab IDs must be unique across all windows built for one host; the builder
// does not check this.
type WindowBuilder struct {
	window core.Window
}

// NewWindowBuilder creates a builder for a window with the given ID.
func NewWindowBuilder(id core.WindowID) *WindowBuilder {
	return &WindowBuilder{window: core.Window{ID: id}}
}

// Focused marks the window as the focused one (chainable).
func (b *WindowBuilder) Focused() *WindowBuilder {
	b.window.Focused = true
	return b
}

// Tab appends an ungrouped tab with the given ID and URL (chainable).
func (b *WindowBuilder) Tab(id core.TabID, url string) *WindowBuilder {
	return b.GroupedTab(id, url, core.NoGroup)
}

// Blank appends a new-tab-page tab (chainable).
func (b *WindowBuilder) Blank(id core.TabID) *WindowBuilder {
	return b.Tab(id, core.BlankTabURL)
}

// GroupedTab appends a tab that is already a member of the given group
// (chainable).
func (b *WindowBuilder) GroupedTab(id core.TabID, url string, group core.GroupID) *WindowBuilder {
	b.window.Tabs = append(b.window.Tabs, core.Tab{
		ID:       id,
		WindowID: b.window.ID,
		Index:    len(b.window.Tabs),
		URL:      url,
		GroupID:  group,
	})
	return b
}

// Build returns the constructed window.
func (b *WindowBuilder) Build() core.Window {
	return b.window
}
