package test_run

import (
	"github.com/ssbtech/hilService/internal/interfaces"
	"gorm.io/gorm"
)

type TestRunRepositoryImpl struct {
	db *gorm.DB
}

func NewTestRunRepository(db *gorm.DB) interfaces.TestRunRepository {
	return &TestRunRepositoryImpl{db: db}
}
