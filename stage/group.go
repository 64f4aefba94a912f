package stage

import (
	"fmt"

	"github.com/hupe1980/tabmesh/core"
	"github.com/hupe1980/tabmesh/domain"
)

// Grouper partitions the target window's tabs by domain label and applies
// the visual groupings.
//
// Buckets are built fresh from the window snapshot on every run, keyed by
// domain.Label and iterated in first-seen order. Buckets with two or more
// tabs become a group carrying the label as its title; group creation must
// complete and yield an identifier before the title is set. Buckets with a
// single tab are ungrouped, a no-op when the tab was never grouped.
//
// The grouper runs under core.PolicyAbsorb: any error it returns, including
// a label extraction failure, is logged by the engine and the run still
// reaches a terminal state. Partial grouping is an accepted outcome.
type Grouper struct {
	BaseStage
}

// NewGrouper creates the domain grouping stage.
func NewGrouper() *Grouper {
	return &Grouper{BaseStage: NewBaseStage("group", core.PolicyAbsorb)}
}

// Run implements core.Stage.
func (g *Grouper) Run(rc *core.RunContext) error {
	windows, err := rc.Host.Windows(rc.Context)
	if err != nil {
		return fmt.Errorf("list windows: %w", err)
	}

	target, ok := findWindow(windows, rc.TargetWindow)
	if !ok {
		return fmt.Errorf("target window %d: %w", rc.TargetWindow, core.ErrWindowNotFound)
	}

	// Read-only derived view, insertion-ordered by first-seen label.
	var order []string
	buckets := make(map[string][]core.TabID)
	wasGrouped := make(map[core.TabID]bool, len(target.Tabs))
	for _, t := range target.Tabs {
		label, err := domain.Label(t.URL)
		if err != nil {
			return fmt.Errorf("label for tab %d: %w", t.ID, err)
		}
		if _, exists := buckets[label]; !exists {
			order = append(order, label)
		}
		buckets[label] = append(buckets[label], t.ID)
		wasGrouped[t.ID] = t.GroupID != core.NoGroup
	}

	for _, label := range order {
		ids := buckets[label]

		if len(ids) < 2 {
			if err := rc.Host.UngroupTabs(rc.Context, ids); err != nil {
				return fmt.Errorf("ungroup singleton %q: %w", label, err)
			}
			// Only tabs actually released from a group count; for the rest
			// the ungroup was a no-op.
			for _, id := range ids {
				if wasGrouped[id] {
					rc.Report.TabsUngrouped++
				}
			}
			continue
		}

		groupID, err := rc.Host.GroupTabs(rc.Context, ids, target.ID)
		if err != nil {
			return fmt.Errorf("group %q: %w", label, err)
		}
		if err := rc.Host.SetGroupTitle(rc.Context, groupID, label); err != nil {
			return fmt.Errorf("title group %q: %w", label, err)
		}
		rc.Report.GroupsCreated++
		rc.LogDebug("created group", "label", label, "tabs", len(ids), "group", groupID)
	}

	return nil
}
