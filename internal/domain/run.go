package domain

import "time"

// RunOutcome is the terminal state of a pipeline or stage invocation.
type RunOutcome string

const (
	// OutcomeSuccess means the stage ran and produced its effect.
	OutcomeSuccess RunOutcome = "success"
	// OutcomeSkipped means the stage had nothing to do (missing input file,
	// empty batch, empty result). Not a failure.
	OutcomeSkipped RunOutcome = "skipped"
	// OutcomeFailed means the stage failed with a cause; the failure is
	// contained to the stage and reported, never raised past it.
	OutcomeFailed RunOutcome = "failed"
)

// RunReport captures one pipeline run end to end: identifiers, per-stage
// counts, and the terminal outcome. It is logged and, when a run history is
// configured, recorded for later inspection.
type RunReport struct {
	RunID      string     `json:"run_id"`
	Day        string     `json:"day"`
	InputPath  string     `json:"input_path"`
	Outcome    RunOutcome `json:"outcome"`
	Reason     string     `json:"reason,omitempty"`
	Extracted  int        `json:"extracted"`
	Dropped    int        `json:"dropped"`
	Deduped    int        `json:"deduped"`
	Inserted   int        `json:"inserted"`
	Duplicates int        `json:"duplicates"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
}

// ProvisionResult reports the per-step outcome of an environment provisioning
// run. The two database steps are independent: one failing does not prevent
// the other from being attempted.
type ProvisionResult struct {
	DataDirReady  bool
	DatabaseReady bool
	TableReady    bool
	DatabaseErr   error
	TableErr      error
}

// Ready reports whether every provisioning step succeeded.
func (r ProvisionResult) Ready() bool {
	return r.DataDirReady && r.DatabaseReady && r.TableReady
}
