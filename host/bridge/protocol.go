package bridge

import "github.com/hupe1980/tabmesh/core"

// Command actions understood by the extension.
const (
	actionWindows       = "windows"
	actionCurrentWindow = "current-window"
	actionMove          = "move"
	actionClose         = "close"
	actionGroup         = "group"
	actionTitleGroup    = "title-group"
	actionUngroup       = "ungroup"
)

// command is a single instruction sent to the extension. ID correlates the
// eventual reply. Index is a pointer because 0 is a valid position and must
// survive serialization; a nil Index is only ever sent for actions that do
// not place tabs.
type command struct {
	ID       string        `json:"id"`
	Action   string        `json:"action"`
	TabIDs   []core.TabID  `json:"tabIds,omitempty"`
	WindowID core.WindowID `json:"windowId,omitempty"`
	Index    *int          `json:"index,omitempty"`
	GroupID  core.GroupID  `json:"groupId,omitempty"`
	Title    string        `json:"title,omitempty"`
}

// reply is the extension's response to a command, matched by ID.
type reply struct {
	ID      string          `json:"id"`
	OK      bool            `json:"ok"`
	Error   string          `json:"error,omitempty"`
	Windows []windowPayload `json:"windows,omitempty"`
	Tab     *tabPayload     `json:"tab,omitempty"`
	GroupID core.GroupID    `json:"groupId,omitempty"`
}

type windowPayload struct {
	ID      core.WindowID `json:"id"`
	Focused bool          `json:"focused"`
	Tabs    []tabPayload  `json:"tabs"`
}

type tabPayload struct {
	ID       core.TabID    `json:"id"`
	WindowID core.WindowID `json:"windowId"`
	Index    int           `json:"index"`
	URL      string        `json:"url"`
	GroupID  core.GroupID  `json:"groupId"`
}

func (p windowPayload) toWindow() core.Window {
	w := core.Window{ID: p.ID, Focused: p.Focused, Tabs: make([]core.Tab, len(p.Tabs))}
	for i, t := range p.Tabs {
		w.Tabs[i] = t.toTab()
	}
	return w
}

// toTab maps the wire representation onto core.Tab. Browsers report both 0
// and -1 for ungrouped tabs depending on API level; normalize to NoGroup.
func (p tabPayload) toTab() core.Tab {
	t := core.Tab{ID: p.ID, WindowID: p.WindowID, Index: p.Index, URL: p.URL, GroupID: p.GroupID}
	if t.GroupID == 0 {
		t.GroupID = core.NoGroup
	}
	return t
}
