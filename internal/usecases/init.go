package usecases

import (
	"github.com/ssbtech/hilService/internal/interfaces"
	"github.com/ssbtech/hilService/internal/keywords"
)

type Usecase struct {
	devices  interfaces.DeviceService
	runs     interfaces.RunService
	registry *keywords.Registry
	repo     interfaces.TestRunRepository
}

func NewUsecase(
	devices interfaces.DeviceService,
	runs interfaces.RunService,
	registry *keywords.Registry,
	repo interfaces.TestRunRepository,
) interfaces.Usecases {
	return &Usecase{
		devices:  devices,
		runs:     runs,
		registry: registry,
		repo:     repo,
	}
}
