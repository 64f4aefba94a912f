package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tabmesh/core"
	"github.com/hupe1980/tabmesh/host"
	"github.com/hupe1980/tabmesh/internal/testutil"
)

// MockStage is a testify-based stage double.
type MockStage struct {
	mock.Mock
	name   string
	policy core.FailurePolicy
}

func NewMockStage(name string, policy core.FailurePolicy) *MockStage {
	return &MockStage{name: name, policy: policy}
}

func (m *MockStage) Name() string               { return m.name }
func (m *MockStage) Policy() core.FailurePolicy { return m.policy }

func (m *MockStage) Run(rc *core.RunContext) error {
	args := m.Called(rc)
	return args.Error(0)
}

func seededHost() *host.InMemoryHost {
	return host.NewInMemoryHost(
		testutil.NewWindowBuilder(1).Focused().
			Tab(1, "https://example.com/a").
			Tab(2, "https://example.com/a").
			Build(),
		testutil.NewWindowBuilder(2).
			Tab(3, "https://go.dev/").
			Tab(4, "https://go.dev/doc/").
			Build(),
	)
}

func TestEngine_RunsStagesInOrder(t *testing.T) {
	var order []string
	s1 := NewMockStage("first", core.PolicyPropagate)
	s2 := NewMockStage("second", core.PolicyPropagate)
	s1.On("Run", mock.Anything).Run(func(mock.Arguments) { order = append(order, "first") }).Return(nil)
	s2.On("Run", mock.Anything).Run(func(mock.Arguments) { order = append(order, "second") }).Return(nil)

	e := New(func(o *Options) {
		o.Host = seededHost()
		o.Stages = []core.Stage{s1, s2}
	})

	report, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
	require.Len(t, report.Stages, 2)
	assert.Equal(t, "first", report.Stages[0].Stage)
	assert.Equal(t, "second", report.Stages[1].Stage)
	assert.False(t, report.Failed())
	assert.NotEmpty(t, report.RunID)
}

func TestEngine_TargetWindowCapturedOnce(t *testing.T) {
	h := seededHost()

	var targets []core.WindowID
	s1 := NewMockStage("first", core.PolicyPropagate)
	s1.On("Run", mock.Anything).Run(func(args mock.Arguments) {
		rc := args.Get(0).(*core.RunContext)
		targets = append(targets, rc.TargetWindow)
		// Focus moves mid-run; later stages must not follow it.
		require.NoError(t, h.Focus(2))
	}).Return(nil)

	s2 := NewMockStage("second", core.PolicyPropagate)
	s2.On("Run", mock.Anything).Run(func(args mock.Arguments) {
		rc := args.Get(0).(*core.RunContext)
		targets = append(targets, rc.TargetWindow)
	}).Return(nil)

	e := New(func(o *Options) {
		o.Host = h
		o.Stages = []core.Stage{s1, s2}
	})

	_, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []core.WindowID{1, 1}, targets)
}

func TestEngine_PropagateHaltsPipeline(t *testing.T) {
	boom := errors.New("boom")
	s1 := NewMockStage("first", core.PolicyPropagate)
	s2 := NewMockStage("second", core.PolicyPropagate)
	s1.On("Run", mock.Anything).Return(boom)

	e := New(func(o *Options) {
		o.Host = seededHost()
		o.Stages = []core.Stage{s1, s2}
	})

	report, err := e.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, `stage "first"`)

	require.Len(t, report.Stages, 1)
	assert.True(t, report.Failed())
	s2.AssertNotCalled(t, "Run", mock.Anything)
}

func TestEngine_AbsorbContinuesPipeline(t *testing.T) {
	boom := errors.New("boom")
	s1 := NewMockStage("first", core.PolicyAbsorb)
	s2 := NewMockStage("second", core.PolicyPropagate)
	s1.On("Run", mock.Anything).Return(boom)
	s2.On("Run", mock.Anything).Return(nil)

	e := New(func(o *Options) {
		o.Host = seededHost()
		o.Stages = []core.Stage{s1, s2}
	})

	report, err := e.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Stages, 2)
	assert.True(t, report.Stages[0].Absorbed)
	assert.ErrorIs(t, report.Stages[0].Err, boom)
	assert.False(t, report.Failed())
	s2.AssertExpectations(t)
}

func TestEngine_TargetResolutionFailure(t *testing.T) {
	h := seededHost()
	h.FailNext("CurrentWindow", errors.New("bridge down"))

	e := New(func(o *Options) { o.Host = h })

	report, err := e.Run(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "resolve target window")
	assert.Empty(t, report.Stages)
}

func TestEngine_Callbacks(t *testing.T) {
	var events []string
	before := NewFunctionCallback(CallbackBeforeStage, func(_ context.Context, cc *CallbackContext) error {
		events = append(events, "before:"+cc.Stage.Name())
		assert.Nil(t, cc.Result)
		return nil
	})
	after := NewFunctionCallback(CallbackAfterStage, func(_ context.Context, cc *CallbackContext) error {
		events = append(events, "after:"+cc.Stage.Name())
		require.NotNil(t, cc.Result)
		return nil
	})
	onError := NewFunctionCallback(CallbackOnError, func(_ context.Context, cc *CallbackContext) error {
		events = append(events, "error:"+cc.Stage.Name())
		return nil
	})

	ok := NewMockStage("ok", core.PolicyPropagate)
	ok.On("Run", mock.Anything).Return(nil)
	failing := NewMockStage("failing", core.PolicyAbsorb)
	failing.On("Run", mock.Anything).Return(errors.New("boom"))

	e := New(func(o *Options) {
		o.Host = seededHost()
		o.Stages = []core.Stage{ok, failing}
		o.Callbacks = []Callback{before, after, onError}
	})

	_, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"before:ok", "after:ok",
		"before:failing", "error:failing", "after:failing",
	}, events)
}

func TestEngine_BeforeStageCallbackAbortsRun(t *testing.T) {
	veto := NewFunctionCallback(CallbackBeforeStage, func(context.Context, *CallbackContext) error {
		return errors.New("vetoed")
	})

	s := NewMockStage("first", core.PolicyPropagate)

	e := New(func(o *Options) {
		o.Host = seededHost()
		o.Stages = []core.Stage{s}
		o.Callbacks = []Callback{veto}
	})

	_, err := e.Run(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "before-stage callback")
	s.AssertNotCalled(t, "Run", mock.Anything)
}

func TestEngine_DefaultPipelineEndToEnd(t *testing.T) {
	h := seededHost()

	e := New(func(o *Options) { o.Host = h })

	report, err := e.Run(context.Background())
	require.NoError(t, err)

	// Consolidated into one window, the duplicate removed, survivors grouped.
	assert.Equal(t, 2, report.TabsMoved)
	assert.Equal(t, 1, report.TabsRemoved)
	assert.Equal(t, 1, report.GroupsCreated)
	assert.Zero(t, report.TabsUngrouped)
	assert.Equal(t, 1, h.WindowCount())

	groups := h.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, "Go", groups[0].Title)
	assert.Equal(t, []core.TabID{3, 4}, groups[0].TabIDs)
}

func TestEngine_DryRunLeavesHostUntouched(t *testing.T) {
	h := seededHost()

	e := New(func(o *Options) {
		o.Host = h
		o.Config = Config{DryRun: true}
	})

	report, err := e.Run(context.Background())
	require.NoError(t, err)

	// The pipeline planned moves, but nothing reached the real host.
	assert.Equal(t, 2, report.TabsMoved)
	assert.Equal(t, 2, h.WindowCount())
	assert.Empty(t, h.Groups())
}

func TestEngine_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := New(func(o *Options) { o.Host = seededHost() })

	_, err := e.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
