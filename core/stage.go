package core

// FailurePolicy declares how the pipeline reacts when a stage returns an
// error. The asymmetry between stages is an intentional, visible design
// choice rather than an implicit try/catch difference: consolidation and
// deduplication abort the run, grouping degrades to a partial result.
type FailurePolicy int

const (
	// PolicyPropagate aborts the pipeline on error. Effects already applied
	// stay applied; no rollback is attempted.
	PolicyPropagate FailurePolicy = iota

	// PolicyAbsorb logs the error and treats the stage as complete, leaving
	// the window in whatever partial state was reached.
	PolicyAbsorb
)

// String returns the string representation of the failure policy.
func (p FailurePolicy) String() string {
	switch p {
	case PolicyPropagate:
		return "propagate"
	case PolicyAbsorb:
		return "absorb"
	default:
		return "unknown"
	}
}

// Stage is a unit of pipeline work operating on the live window state
// through the RunContext's Host.
//
// Implementations must:
//   - Issue host operations sequentially and await each before the next
//   - Record their effects on the RunContext's report
//   - Return an error on any host failure and let the engine apply the
//     declared FailurePolicy; stages do not swallow their own errors
type Stage interface {
	// Name returns the stage's identifier used in logs and reports.
	Name() string

	// Policy returns the declared failure policy for this stage.
	Policy() FailurePolicy

	// Run executes the stage against the run's window state.
	Run(rc *RunContext) error
}
