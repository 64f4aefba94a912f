package stage

import "github.com/hupe1980/tabmesh/core"

// BaseStage bundles the identity and policy plumbing shared by all stages.
// Embed it in concrete stage implementations and supply a Run method to
// satisfy the core.Stage interface.
type BaseStage struct {
	name   string
	policy core.FailurePolicy
}

// NewBaseStage constructs a BaseStage with the given name and failure policy.
func NewBaseStage(name string, policy core.FailurePolicy) BaseStage {
	return BaseStage{name: name, policy: policy}
}

// Name returns the stage's identifier used in logs and reports.
func (b *BaseStage) Name() string { return b.name }

// Policy returns the declared failure policy for this stage.
func (b *BaseStage) Policy() core.FailurePolicy { return b.policy }
