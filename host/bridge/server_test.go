package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tabmesh/core"
)

// Interface compliance (compile-time assertion)
var _ core.Host = (*Server)(nil)

// fakeExtension long-polls the bridge like the browser extension would and
// answers commands from a canned window snapshot.
type fakeExtension struct {
	t       *testing.T
	baseURL string
	client  *http.Client
	windows []windowPayload
	done    chan struct{}
}

func newFakeExtension(t *testing.T, baseURL string, windows []windowPayload) *fakeExtension {
	e := &fakeExtension{
		t:       t,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
		windows: windows,
		done:    make(chan struct{}),
	}
	go e.loop()
	return e
}

func (e *fakeExtension) stop() { close(e.done) }

func (e *fakeExtension) loop() {
	for {
		select {
		case <-e.done:
			return
		default:
		}

		resp, err := e.client.Get(e.baseURL + "/v1/commands")
		if err != nil {
			return
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			if resp.StatusCode == http.StatusGone {
				return
			}
			continue
		}

		var batch []command
		err = json.NewDecoder(resp.Body).Decode(&batch)
		resp.Body.Close()
		if err != nil {
			return
		}

		for _, cmd := range batch {
			e.reply(e.handle(cmd))
		}
	}
}

func (e *fakeExtension) handle(cmd command) reply {
	switch cmd.Action {
	case actionCurrentWindow:
		for _, w := range e.windows {
			if w.Focused {
				return reply{ID: cmd.ID, OK: true, Windows: []windowPayload{w}}
			}
		}
		return reply{ID: cmd.ID, OK: false, Error: "no focused window"}
	case actionWindows:
		return reply{ID: cmd.ID, OK: true, Windows: e.windows}
	case actionMove:
		return reply{ID: cmd.ID, OK: true, Tab: &tabPayload{
			ID:       cmd.TabIDs[0],
			WindowID: cmd.WindowID,
			Index:    *cmd.Index,
			GroupID:  core.NoGroup,
		}}
	case actionGroup:
		return reply{ID: cmd.ID, OK: true, GroupID: 7}
	case actionClose, actionTitleGroup, actionUngroup:
		return reply{ID: cmd.ID, OK: true}
	default:
		return reply{ID: cmd.ID, OK: false, Error: "unknown action " + cmd.Action}
	}
}

func (e *fakeExtension) reply(rep reply) {
	body, err := json.Marshal(rep)
	if err != nil {
		e.t.Errorf("marshal reply: %v", err)
		return
	}
	resp, err := e.client.Post(e.baseURL+"/v1/replies", "application/json", bytes.NewReader(body))
	if err == nil {
		resp.Body.Close()
	}
}

func testWindows() []windowPayload {
	return []windowPayload{
		{ID: 1, Focused: true, Tabs: []tabPayload{
			{ID: 10, WindowID: 1, Index: 0, URL: "https://example.com/", GroupID: -1},
		}},
		{ID: 2, Tabs: []tabPayload{
			{ID: 20, WindowID: 2, Index: 0, URL: "https://go.dev/", GroupID: 0},
		}},
	}
}

func newTestBridge(t *testing.T, optFns ...func(o *Options)) (*Server, *fakeExtension) {
	s := NewServer(append([]func(o *Options){func(o *Options) {
		o.CommandTimeout = 3 * time.Second
		o.PollTimeout = 250 * time.Millisecond
	}}, optFns...)...)

	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)

	ext := newFakeExtension(t, ts.URL, testWindows())
	t.Cleanup(ext.stop)
	t.Cleanup(s.Close)

	return s, ext
}

func TestServer_CurrentWindow(t *testing.T) {
	s, _ := newTestBridge(t)

	w, err := s.CurrentWindow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.WindowID(1), w.ID)
	assert.True(t, w.Focused)
	require.Len(t, w.Tabs, 1)
	assert.Equal(t, core.NoGroup, w.Tabs[0].GroupID)
}

func TestServer_Windows(t *testing.T) {
	s, _ := newTestBridge(t)

	windows, err := s.Windows(context.Background())
	require.NoError(t, err)
	require.Len(t, windows, 2)

	// Both wire encodings of "ungrouped" normalize to NoGroup.
	assert.Equal(t, core.NoGroup, windows[0].Tabs[0].GroupID)
	assert.Equal(t, core.NoGroup, windows[1].Tabs[0].GroupID)
}

func TestServer_MoveTab(t *testing.T) {
	s, _ := newTestBridge(t)

	moved, err := s.MoveTab(context.Background(), 20, 1, core.AppendIndex)
	require.NoError(t, err)
	assert.Equal(t, core.TabID(20), moved.ID)
	assert.Equal(t, core.WindowID(1), moved.WindowID)
	assert.Equal(t, core.AppendIndex, moved.Index)
}

func TestServer_GroupAndTitle(t *testing.T) {
	s, _ := newTestBridge(t)
	ctx := context.Background()

	id, err := s.GroupTabs(ctx, []core.TabID{10, 20}, 1)
	require.NoError(t, err)
	assert.Equal(t, core.GroupID(7), id)

	require.NoError(t, s.SetGroupTitle(ctx, id, "Example"))
	require.NoError(t, s.UngroupTabs(ctx, []core.TabID{10}))
	require.NoError(t, s.RemoveTabs(ctx, []core.TabID{20}))
}

func TestServer_ExtensionErrorSurfaces(t *testing.T) {
	s := NewServer(func(o *Options) {
		o.CommandTimeout = 3 * time.Second
		o.PollTimeout = 250 * time.Millisecond
	})
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	t.Cleanup(s.Close)

	// Extension with no focused window rejects current-window.
	ext := newFakeExtension(t, ts.URL, []windowPayload{{ID: 1, Tabs: nil}})
	t.Cleanup(ext.stop)

	_, err := s.CurrentWindow(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "no focused window")
}

func TestServer_CommandTimeout(t *testing.T) {
	s := NewServer(func(o *Options) {
		o.CommandTimeout = 100 * time.Millisecond
	})
	t.Cleanup(s.Close)

	// Nothing polls, so the reply never arrives.
	_, err := s.CurrentWindow(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "no reply")
}

func TestServer_ContextCancellation(t *testing.T) {
	s := NewServer()
	t.Cleanup(s.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := s.CurrentWindow(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestServer_CloseReleasesWaiters(t *testing.T) {
	s := NewServer()

	errCh := make(chan error, 1)
	go func() {
		_, err := s.CurrentWindow(context.Background())
		errCh <- err
	}()

	time.Sleep(50 * time.Millisecond)
	s.Close()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, core.ErrHostClosed)
	case <-time.After(time.Second):
		t.Fatal("blocked host call was not released by Close")
	}
}

func TestServer_Trigger(t *testing.T) {
	s := NewServer()
	t.Cleanup(s.Close)

	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)

	resp, err := http.Post(ts.URL+"/v1/trigger", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	select {
	case <-s.Triggers():
	case <-time.After(time.Second):
		t.Fatal("trigger was not delivered")
	}

	// Pending triggers coalesce instead of queueing unboundedly.
	for i := 0; i < 3; i++ {
		resp, err := http.Post(ts.URL+"/v1/trigger", "application/json", nil)
		require.NoError(t, err)
		resp.Body.Close()
	}
	<-s.Triggers()
	select {
	case <-s.Triggers():
		t.Fatal("triggers were not coalesced")
	default:
	}
}

func TestServer_DuplicateReplyDoesNotBlock(t *testing.T) {
	s := NewServer(func(o *Options) {
		o.CommandTimeout = 3 * time.Second
		o.PollTimeout = time.Second
	})
	t.Cleanup(s.Close)

	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)

	winCh := make(chan core.Window, 1)
	errCh := make(chan error, 1)
	go func() {
		w, err := s.CurrentWindow(context.Background())
		winCh <- w
		errCh <- err
	}()

	// Drain the command like the extension would.
	resp, err := http.Get(ts.URL + "/v1/commands")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var batch []command
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&batch))
	resp.Body.Close()
	require.Len(t, batch, 1)

	rep := reply{ID: batch[0].ID, OK: true, Windows: []windowPayload{{ID: 1, Focused: true}}}
	body, err := json.Marshal(rep)
	require.NoError(t, err)

	client := &http.Client{Timeout: 2 * time.Second}
	for i := 0; i < 3; i++ {
		resp, err := client.Post(ts.URL+"/v1/replies", "application/json", bytes.NewReader(body))
		require.NoError(t, err, "reply %d must not block the handler", i)
		resp.Body.Close()
	}

	w := <-winCh
	require.NoError(t, <-errCh)
	assert.Equal(t, core.WindowID(1), w.ID)
}

func TestServer_Healthz(t *testing.T) {
	s := NewServer()
	t.Cleanup(s.Close)

	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_MetricsExposed(t *testing.T) {
	s := NewServer()
	t.Cleanup(s.Close)

	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
