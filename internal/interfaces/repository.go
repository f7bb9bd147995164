package interfaces

import (
	"github.com/ssbtech/hilService/internal/domain/entities"
)

// TestRunRepository is the contract for persisted run history.
type TestRunRepository interface {
	Create(run *entities.TestRun) error
	Finish(runID, status string, durationMs int64, failures string) error
	GetByRunID(runID string) (*entities.TestRun, error)
	GetAll() ([]entities.TestRun, error)
}
