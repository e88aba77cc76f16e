package model

import "time"

// RunState is the pipeline state machine position. A run advances strictly
// forward; FAILED is terminal and reachable only from the validation
// checkpoints.
type RunState string

const (
	RunStateIngested       RunState = "INGESTED"
	RunStateCleaned        RunState = "CLEANED"
	RunStateValidatedClean RunState = "VALIDATED_CLEAN"
	RunStateFeatured       RunState = "FEATURED"
	RunStateValidatedGold  RunState = "VALIDATED_GOLD"
	RunStatePromoted       RunState = "PROMOTED"
	RunStateFailed         RunState = "FAILED"
)

// Stage statuses recorded in the run ledger.
const (
	StageStatusRunning  = "running"
	StageStatusComplete = "complete"
	StageStatusFailed   = "failed"
)

// StageResult captures one stage's outcome: row metrics, duration, and —
// for validation checkpoints — the full report.
type StageResult struct {
	Name        string            `json:"name"`
	Status      string            `json:"status"`
	DurationMS  int64             `json:"duration_ms"`
	RowsIn      int               `json:"rows_in,omitempty"`
	RowsOut     int               `json:"rows_out,omitempty"`
	RowsDropped int               `json:"rows_dropped,omitempty"`
	Artifact    string            `json:"artifact,omitempty"`
	Report      *ValidationReport `json:"report,omitempty"`
	Error       string            `json:"error,omitempty"`
	Metadata    map[string]any    `json:"metadata,omitempty"`
}

// Run is one pipeline execution tracked in the run ledger.
type Run struct {
	ID        string        `json:"id"`
	Input     string        `json:"input"`
	State     RunState      `json:"state"`
	Stages    []StageResult `json:"stages,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
