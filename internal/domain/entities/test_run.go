package entities

import "time"

const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
	RunStatusCancelled = "cancelled"
)

// TestRun is the persisted record of one script execution.
type TestRun struct {
	RunID        string    `gorm:"primaryKey;not null" json:"run_id"`
	Name         string    `gorm:"not null" json:"name"`
	Status       string    `gorm:"not null" json:"status"` // running / completed / failed / cancelled
	KeywordTotal int       `json:"keyword_total"`
	DurationMs   int64     `json:"duration_ms"`
	Failures     string    `json:"failures"` // JSON-encoded keyword failures
	ScriptPath   string    `json:"script_path"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
