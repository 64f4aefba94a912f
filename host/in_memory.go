package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/tabmesh/core"
)

// InMemoryHost is a volatile core.Host implementation simulating a browser's
// window/tab/group behavior in a process-local structure. It is safe for
// concurrent access and best suited for tests, examples and dry runs. Each
// returned window is cloned to prevent external mutation of internal state.
//
// The simulation mirrors the host behaviors the pipeline relies on:
//   - MoveTab with core.AppendIndex appends to the target's tab order
//   - A window is closed implicitly once its last tab is moved away or
//     removed
//   - Groups are window-scoped; removing a group's last member deletes it
type InMemoryHost struct {
	mu        sync.Mutex
	windows   []*memWindow
	groups    map[core.GroupID]*core.Group
	nextGroup core.GroupID
	focused   core.WindowID
	failNext  map[string]error
}

type memWindow struct {
	id   core.WindowID
	tabs []core.Tab
}

// NewInMemoryHost constructs a host seeded with the given windows. The first
// window marked Focused (or the first window, when none is marked) becomes
// the current window. Tab group memberships present in the seed are
// registered as existing, untitled groups.
func NewInMemoryHost(seed ...core.Window) *InMemoryHost {
	h := &InMemoryHost{
		groups:    make(map[core.GroupID]*core.Group),
		nextGroup: 1,
		failNext:  make(map[string]error),
	}

	if len(seed) > 0 {
		h.focused = seed[0].ID
	}
	for _, w := range seed {
		mw := &memWindow{id: w.ID, tabs: make([]core.Tab, len(w.Tabs))}
		copy(mw.tabs, w.Tabs)
		h.windows = append(h.windows, mw)
		if w.Focused {
			h.focused = w.ID
		}
		for _, t := range w.Tabs {
			if t.GroupID == core.NoGroup || t.GroupID == 0 {
				continue
			}
			g, ok := h.groups[t.GroupID]
			if !ok {
				g = &core.Group{ID: t.GroupID, WindowID: w.ID}
				h.groups[t.GroupID] = g
			}
			g.TabIDs = append(g.TabIDs, t.ID)
			if t.GroupID >= h.nextGroup {
				h.nextGroup = t.GroupID + 1
			}
		}
	}

	return h
}

// FailNext injects an error returned by the next call of the named operation
// (e.g. "MoveTab"). The injection is consumed by that single call.
func (h *InMemoryHost) FailNext(op string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failNext[op] = err
}

// Focus changes the focused window.
func (h *InMemoryHost) Focus(id core.WindowID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.findWindowLocked(id); !ok {
		return core.ErrWindowNotFound
	}
	h.focused = id
	return nil
}

// CurrentWindow implements core.Host.
func (h *InMemoryHost) CurrentWindow(ctx context.Context) (core.Window, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.beginLocked(ctx, "CurrentWindow"); err != nil {
		return core.Window{}, err
	}
	mw, ok := h.findWindowLocked(h.focused)
	if !ok {
		return core.Window{}, core.ErrWindowNotFound
	}
	return h.cloneLocked(mw), nil
}

// Windows implements core.Host.
func (h *InMemoryHost) Windows(ctx context.Context) ([]core.Window, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.beginLocked(ctx, "Windows"); err != nil {
		return nil, err
	}
	out := make([]core.Window, len(h.windows))
	for i, mw := range h.windows {
		out[i] = h.cloneLocked(mw)
	}
	return out, nil
}

// MoveTab implements core.Host.
func (h *InMemoryHost) MoveTab(ctx context.Context, tab core.TabID, window core.WindowID, index int) (core.Tab, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.beginLocked(ctx, "MoveTab"); err != nil {
		return core.Tab{}, err
	}

	target, ok := h.findWindowLocked(window)
	if !ok {
		return core.Tab{}, fmt.Errorf("move tab %d: %w", tab, core.ErrWindowNotFound)
	}

	source, pos := h.findTabLocked(tab)
	if source == nil {
		return core.Tab{}, fmt.Errorf("move tab %d: %w", tab, core.ErrTabNotFound)
	}

	moved := source.tabs[pos]
	source.tabs = append(source.tabs[:pos], source.tabs[pos+1:]...)

	// Moving across windows detaches the tab from its group.
	if source != target {
		h.leaveGroupLocked(moved)
		moved.GroupID = core.NoGroup
	}

	moved.WindowID = window
	if index < 0 || index >= len(target.tabs) {
		target.tabs = append(target.tabs, moved)
		moved.Index = len(target.tabs) - 1
	} else {
		target.tabs = append(target.tabs[:index], append([]core.Tab{moved}, target.tabs[index:]...)...)
		moved.Index = index
	}

	// The host closes a window once its last tab has been moved away.
	if source != target && len(source.tabs) == 0 {
		h.closeWindowLocked(source.id)
	}

	return moved, nil
}

// RemoveTabs implements core.Host.
func (h *InMemoryHost) RemoveTabs(ctx context.Context, tabs []core.TabID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.beginLocked(ctx, "RemoveTabs"); err != nil {
		return err
	}

	for _, id := range tabs {
		mw, pos := h.findTabLocked(id)
		if mw == nil {
			return fmt.Errorf("remove tab %d: %w", id, core.ErrTabNotFound)
		}
		h.leaveGroupLocked(mw.tabs[pos])
		mw.tabs = append(mw.tabs[:pos], mw.tabs[pos+1:]...)
	}

	for _, mw := range append([]*memWindow(nil), h.windows...) {
		if len(mw.tabs) == 0 {
			h.closeWindowLocked(mw.id)
		}
	}

	return nil
}

// GroupTabs implements core.Host.
func (h *InMemoryHost) GroupTabs(ctx context.Context, tabs []core.TabID, window core.WindowID) (core.GroupID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.beginLocked(ctx, "GroupTabs"); err != nil {
		return core.NoGroup, err
	}

	mw, ok := h.findWindowLocked(window)
	if !ok {
		return core.NoGroup, fmt.Errorf("group tabs: %w", core.ErrWindowNotFound)
	}

	id := h.nextGroup
	h.nextGroup++
	group := &core.Group{ID: id, WindowID: window, TabIDs: make([]core.TabID, 0, len(tabs))}

	for _, tabID := range tabs {
		pos := indexOfTab(mw.tabs, tabID)
		if pos < 0 {
			return core.NoGroup, fmt.Errorf("group tab %d in window %d: %w", tabID, window, core.ErrTabNotFound)
		}
		h.leaveGroupLocked(mw.tabs[pos])
		mw.tabs[pos].GroupID = id
		group.TabIDs = append(group.TabIDs, tabID)
	}

	h.groups[id] = group
	return id, nil
}

// SetGroupTitle implements core.Host.
func (h *InMemoryHost) SetGroupTitle(ctx context.Context, group core.GroupID, title string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.beginLocked(ctx, "SetGroupTitle"); err != nil {
		return err
	}

	g, ok := h.groups[group]
	if !ok {
		return fmt.Errorf("title group %d: %w", group, core.ErrGroupNotFound)
	}
	g.Title = title
	return nil
}

// UngroupTabs implements core.Host.
func (h *InMemoryHost) UngroupTabs(ctx context.Context, tabs []core.TabID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.beginLocked(ctx, "UngroupTabs"); err != nil {
		return err
	}

	for _, id := range tabs {
		mw, pos := h.findTabLocked(id)
		if mw == nil {
			return fmt.Errorf("ungroup tab %d: %w", id, core.ErrTabNotFound)
		}
		h.leaveGroupLocked(mw.tabs[pos])
		mw.tabs[pos].GroupID = core.NoGroup
	}

	return nil
}

// Groups returns a snapshot of all existing groups, useful for assertions in
// tests and for rendering final state in examples.
func (h *InMemoryHost) Groups() []core.Group {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]core.Group, 0, len(h.groups))
	for _, g := range h.groups {
		cp := *g
		cp.TabIDs = append([]core.TabID(nil), g.TabIDs...)
		out = append(out, cp)
	}
	return out
}

// WindowCount returns the number of currently open windows.
func (h *InMemoryHost) WindowCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.windows)
}

// beginLocked applies context cancellation and failure injection shared by
// every operation. Caller must hold the lock.
func (h *InMemoryHost) beginLocked(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err, ok := h.failNext[op]; ok {
		delete(h.failNext, op)
		return err
	}
	return nil
}

func (h *InMemoryHost) findWindowLocked(id core.WindowID) (*memWindow, bool) {
	for _, mw := range h.windows {
		if mw.id == id {
			return mw, true
		}
	}
	return nil, false
}

func (h *InMemoryHost) findTabLocked(id core.TabID) (*memWindow, int) {
	for _, mw := range h.windows {
		if pos := indexOfTab(mw.tabs, id); pos >= 0 {
			return mw, pos
		}
	}
	return nil, -1
}

func (h *InMemoryHost) closeWindowLocked(id core.WindowID) {
	for i, mw := range h.windows {
		if mw.id == id {
			h.windows = append(h.windows[:i], h.windows[i+1:]...)
			break
		}
	}
	for gid, g := range h.groups {
		if g.WindowID == id {
			delete(h.groups, gid)
		}
	}
}

// leaveGroupLocked detaches a tab from its group, deleting the group when it
// loses its last member.
func (h *InMemoryHost) leaveGroupLocked(t core.Tab) {
	if t.GroupID == core.NoGroup || t.GroupID == 0 {
		return
	}
	g, ok := h.groups[t.GroupID]
	if !ok {
		return
	}
	for i, id := range g.TabIDs {
		if id == t.ID {
			g.TabIDs = append(g.TabIDs[:i], g.TabIDs[i+1:]...)
			break
		}
	}
	if len(g.TabIDs) == 0 {
		delete(h.groups, t.GroupID)
	}
}

func (h *InMemoryHost) cloneLocked(mw *memWindow) core.Window {
	w := core.Window{ID: mw.id, Focused: mw.id == h.focused, Tabs: make([]core.Tab, len(mw.tabs))}
	for i, t := range mw.tabs {
		t.WindowID = mw.id
		t.Index = i
		if t.GroupID == 0 {
			t.GroupID = core.NoGroup
		}
		w.Tabs[i] = t
	}
	return w
}

func indexOfTab(tabs []core.Tab, id core.TabID) int {
	for i, t := range tabs {
		if t.ID == id {
			return i
		}
	}
	return -1
}
