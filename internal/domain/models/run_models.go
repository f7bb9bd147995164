package models

import "time"

// RunState is the worker lifecycle state of one run.
type RunState string

const (
	RunIdle      RunState = "idle"
	RunStarting  RunState = "starting"
	RunRunning   RunState = "running"
	RunCompleted RunState = "completed"
	RunFailed    RunState = "failed"
	RunCancelled RunState = "cancelled"
)

// Terminal reports whether the state ends a run.
func (s RunState) Terminal() bool {
	return s == RunCompleted || s == RunFailed || s == RunCancelled
}

// KeywordStatus is the per-keyword outcome inside a run.
type KeywordStatus string

const (
	StatusPass KeywordStatus = "PASS"
	StatusFail KeywordStatus = "FAIL"
	StatusSkip KeywordStatus = "SKIP"
)

// KeywordOutcome is one keyword's terminal record in a RunResult.
type KeywordOutcome struct {
	Name       string        `json:"name"`
	Status     KeywordStatus `json:"status"`
	Message    string        `json:"message,omitempty"`
	DurationMs int64         `json:"duration_ms"`
}

// RunResult is built incrementally by the worker and frozen once the run
// reaches a terminal state. Keyword ordering matches the originating
// test case exactly.
type RunResult struct {
	RunID      string           `json:"run_id"`
	Name       string           `json:"name"`
	State      RunState         `json:"state"`
	Keywords   []KeywordOutcome `json:"keywords"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
}

// KeywordFailure is the reporting view of one failed keyword.
type KeywordFailure struct {
	Keyword string `json:"keyword"`
	Message string `json:"message"`
}

// RunReport is the supervisor-facing summary for one run id.
type RunReport struct {
	RunID      string           `json:"run_id"`
	Status     string           `json:"status"`
	DurationMs int64            `json:"duration_ms"`
	Failures   []KeywordFailure `json:"failures"`
}

// ProgressEvent is emitted after every keyword boundary. The core never
// stores these long-term; consumers persist if needed.
type ProgressEvent struct {
	RunID        string        `json:"run_id"`
	KeywordIndex int           `json:"keyword_index"`
	Total        int           `json:"total"`
	Keyword      string        `json:"keyword"`
	Status       KeywordStatus `json:"status"`
	Message      string        `json:"message,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}

// RunRequest is the test-case payload accepted by the run API.
type RunRequest struct {
	Name          string             `json:"name" binding:"required"`
	Tags          []string           `json:"tags,omitempty"`
	Documentation string             `json:"documentation,omitempty"`
	Keywords      []KeywordCallInput `json:"keywords" binding:"required"`
}

// RunCancelRequest addresses a run by id.
type RunCancelRequest struct {
	RunID string `json:"run_id" binding:"required"`
}
