package stage

import (
	"fmt"

	"github.com/hupe1980/tabmesh/core"
)

// Deduplicator collapses tabs with identical URLs inside the target window.
//
// Before scanning it takes stock of every open window: when all tabs across
// the whole browser are blank pages and only a single window exists, the
// stage keeps the first blank tab, removes the rest and terminates early, so
// a collapsing browser is never left with zero tabs.
//
// In the general case the target window's tabs are scanned in index order.
// A tab is marked for removal when its URL was already seen, or when it is a
// blank page while the window holds any other content. First occurrence
// wins; the tie-break is the window's current tab index order. All marked
// tabs are removed in one batched request.
type Deduplicator struct {
	BaseStage
}

// NewDeduplicator creates the duplicate removal stage.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{BaseStage: NewBaseStage("dedupe", core.PolicyPropagate)}
}

// Run implements core.Stage.
func (d *Deduplicator) Run(rc *core.RunContext) error {
	windows, err := rc.Host.Windows(rc.Context)
	if err != nil {
		return fmt.Errorf("list windows: %w", err)
	}

	total, blank := 0, 0
	for _, w := range windows {
		total += len(w.Tabs)
		for _, t := range w.Tabs {
			if t.Blank() {
				blank++
			}
		}
	}

	// Nothing but blank pages in a single window: keep one so the user is
	// not left staring at a closed browser.
	if total > 0 && blank == total && len(windows) == 1 {
		doomed := windows[0].TabIDs()[1:]
		if len(doomed) == 0 {
			return nil
		}
		if err := rc.Host.RemoveTabs(rc.Context, doomed); err != nil {
			return fmt.Errorf("remove blank tabs: %w", err)
		}
		rc.Report.TabsRemoved += len(doomed)
		return nil
	}

	target, ok := findWindow(windows, rc.TargetWindow)
	if !ok {
		return fmt.Errorf("target window %d: %w", rc.TargetWindow, core.ErrWindowNotFound)
	}

	seen := make(map[string]bool, len(target.Tabs))
	var doomed []core.TabID
	for _, t := range target.Tabs {
		switch {
		case t.Blank() && len(target.Tabs) > 1:
			// Any blank tab is redundant once there is other content,
			// regardless of whether another blank was seen first.
			doomed = append(doomed, t.ID)
		case seen[t.URL]:
			doomed = append(doomed, t.ID)
		default:
			seen[t.URL] = true
		}
	}

	if len(doomed) == 0 {
		return nil
	}

	if err := rc.Host.RemoveTabs(rc.Context, doomed); err != nil {
		return fmt.Errorf("remove duplicate tabs: %w", err)
	}
	rc.Report.TabsRemoved += len(doomed)
	rc.LogDebug("removed duplicate tabs", "count", len(doomed), "window", target.ID)

	return nil
}

// findWindow locates a window by ID within a snapshot.
func findWindow(windows []core.Window, id core.WindowID) (core.Window, bool) {
	for _, w := range windows {
		if w.ID == id {
			return w, true
		}
	}
	return core.Window{}, false
}
