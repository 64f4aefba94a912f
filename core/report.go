package core

import "time"

// StageResult records the outcome of a single stage within a run.
type StageResult struct {
	// Stage is the stage's name.
	Stage string

	// Policy is the failure policy the stage declared.
	Policy FailurePolicy

	// Duration is the wall-clock execution time of the stage.
	Duration time.Duration

	// Err is the error the stage returned, nil on success. For absorbing
	// stages Err is retained even though the run continued.
	Err error

	// Absorbed is true when Err was non-nil but the pipeline continued
	// because the stage's policy is PolicyAbsorb.
	Absorbed bool
}

// RunReport aggregates the effects of one organizer run. Counters are
// maintained by the stages as host operations complete; StageResults are
// appended by the engine. A report belongs to a single run and is not safe
// for concurrent mutation.
type RunReport struct {
	RunID string

	// TabsMoved counts tabs relocated into the target window.
	TabsMoved int

	// TabsRemoved counts tabs closed by deduplication.
	TabsRemoved int

	// GroupsCreated counts groups created and titled.
	GroupsCreated int

	// TabsUngrouped counts singleton tabs released from their groups.
	TabsUngrouped int

	// Stages holds the per-stage outcomes in execution order.
	Stages []StageResult
}

// Failed reports whether any stage ended with a non-absorbed error.
func (r *RunReport) Failed() bool {
	for _, s := range r.Stages {
		if s.Err != nil && !s.Absorbed {
			return true
		}
	}
	return false
}
