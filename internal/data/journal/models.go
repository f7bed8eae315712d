package journal

import "time"

const SchemaVersion = 1

// Step outcome values stored in the journal.
const (
	ActionRebuilt = "rebuilt"
	ActionFailed  = "failed"
)

// Run status values.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Run records one orchestrator invocation against a graph prefix. Skipped
// steps are not recorded; a run with no steps did no regeneration work.
type Run struct {
	ID       string    `json:"id"`
	Prefix   string    `json:"prefix"`
	Force    bool      `json:"force"`
	EF       bool      `json:"ef"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Status   string    `json:"status"`
	Steps    []Step    `json:"steps,omitempty"`
}

// Step records one executed regeneration step within a run.
type Step struct {
	Artifact string        `json:"artifact"`
	Action   string        `json:"action"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}
