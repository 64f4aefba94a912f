package host

import (
	"context"
	"sync"

	"github.com/hupe1980/tabmesh/core"
	"github.com/hupe1980/tabmesh/logging"
)

// DryRunHost wraps another core.Host, passing reads through while logging
// mutating operations instead of issuing them. Fabricated results keep the
// pipeline's bookkeeping consistent: moves echo the requested placement and
// group creation yields synthetic negative IDs that cannot collide with
// host-assigned ones.
//
// Because mutations never reach the wrapped host, later stages observe the
// original window state; a dry run previews each stage's decisions against
// the untouched snapshot rather than simulating the full cascade.
type DryRunHost struct {
	host   core.Host
	logger logging.Logger

	mu        sync.Mutex
	nextGroup core.GroupID
}

// NewDryRunHost wraps host so that mutating calls are logged, not issued.
// A nil logger is replaced by a NoOpLogger.
func NewDryRunHost(host core.Host, logger logging.Logger) *DryRunHost {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &DryRunHost{host: host, logger: logger, nextGroup: -2}
}

// CurrentWindow implements core.Host.
func (d *DryRunHost) CurrentWindow(ctx context.Context) (core.Window, error) {
	return d.host.CurrentWindow(ctx)
}

// Windows implements core.Host.
func (d *DryRunHost) Windows(ctx context.Context) ([]core.Window, error) {
	return d.host.Windows(ctx)
}

// MoveTab implements core.Host.
func (d *DryRunHost) MoveTab(ctx context.Context, tab core.TabID, window core.WindowID, index int) (core.Tab, error) {
	if err := ctx.Err(); err != nil {
		return core.Tab{}, err
	}
	d.logger.Info("dry-run: would move tab", "tab", tab, "window", window, "index", index)
	return core.Tab{ID: tab, WindowID: window, Index: index, GroupID: core.NoGroup}, nil
}

// RemoveTabs implements core.Host.
func (d *DryRunHost) RemoveTabs(ctx context.Context, tabs []core.TabID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.logger.Info("dry-run: would remove tabs", "tabs", tabs)
	return nil
}

// GroupTabs implements core.Host.
func (d *DryRunHost) GroupTabs(ctx context.Context, tabs []core.TabID, window core.WindowID) (core.GroupID, error) {
	if err := ctx.Err(); err != nil {
		return core.NoGroup, err
	}
	d.mu.Lock()
	id := d.nextGroup
	d.nextGroup--
	d.mu.Unlock()
	d.logger.Info("dry-run: would group tabs", "tabs", tabs, "window", window, "group", id)
	return id, nil
}

// SetGroupTitle implements core.Host.
func (d *DryRunHost) SetGroupTitle(ctx context.Context, group core.GroupID, title string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.logger.Info("dry-run: would title group", "group", group, "title", title)
	return nil
}

// UngroupTabs implements core.Host.
func (d *DryRunHost) UngroupTabs(ctx context.Context, tabs []core.TabID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.logger.Info("dry-run: would ungroup tabs", "tabs", tabs)
	return nil
}
