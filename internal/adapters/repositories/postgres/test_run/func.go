package test_run

import (
	"github.com/ssbtech/hilService/internal/domain/entities"
	"gorm.io/gorm"
)

func (r *TestRunRepositoryImpl) Create(run *entities.TestRun) error {
	return r.db.Create(run).Error
}

// Finish stamps the terminal status of a run.
func (r *TestRunRepositoryImpl) Finish(runID, status string, durationMs int64, failures string) error {
	updates := map[string]interface{}{
		"status":      status,
		"duration_ms": durationMs,
		"failures":    failures,
	}
	result := r.db.Model(&entities.TestRun{}).Where("run_id = ?", runID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *TestRunRepositoryImpl) GetByRunID(runID string) (*entities.TestRun, error) {
	var run entities.TestRun
	err := r.db.Where("run_id = ?", runID).First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// GetAll returns every persisted run, newest first.
func (r *TestRunRepositoryImpl) GetAll() ([]entities.TestRun, error) {
	var runs []entities.TestRun
	if err := r.db.Order("created_at DESC").Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
