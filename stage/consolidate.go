package stage

import (
	"fmt"

	"github.com/hupe1980/tabmesh/core"
)

// Consolidator merges every open window's tabs into the run's target window.
//
// Tabs are moved one at a time in window-then-tab enumeration order, each
// move awaited before the next is issued: the host's positional indexing is
// only well-defined relative to a consistent, observed window state, so
// moves must not race on index assignment. Windows emptied by the moves are
// closed by the host itself.
//
// Any failed move aborts the whole stage and propagates; tabs already moved
// stay moved.
type Consolidator struct {
	BaseStage
}

// NewConsolidator creates the window consolidation stage.
func NewConsolidator() *Consolidator {
	return &Consolidator{BaseStage: NewBaseStage("consolidate", core.PolicyPropagate)}
}

// Run implements core.Stage.
func (c *Consolidator) Run(rc *core.RunContext) error {
	windows, err := rc.Host.Windows(rc.Context)
	if err != nil {
		return fmt.Errorf("list windows: %w", err)
	}

	for _, w := range windows {
		if w.ID == rc.TargetWindow {
			continue
		}
		for _, t := range w.Tabs {
			if _, err := rc.Host.MoveTab(rc.Context, t.ID, rc.TargetWindow, core.AppendIndex); err != nil {
				return fmt.Errorf("move tab %d from window %d: %w", t.ID, w.ID, err)
			}
			rc.Report.TabsMoved++
			rc.LogDebug("moved tab", "tab", t.ID, "from_window", w.ID, "to_window", rc.TargetWindow)
		}
	}

	return nil
}
