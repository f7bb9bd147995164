package interfaces

import (
	"github.com/ssbtech/hilService/internal/canbus"
	"github.com/ssbtech/hilService/internal/domain/entities"
	"github.com/ssbtech/hilService/internal/domain/models"
	"github.com/ssbtech/hilService/internal/keywords"
)

// Usecases is the aggregating interface consumed by the HTTP layer.
type Usecases interface {
	// Devices
	ConnectDevice(deviceID string) (*models.DeviceDescriptor, error)
	DisconnectDevice(deviceID string) (*models.DeviceDescriptor, error)
	DeviceStatus(deviceID string) (*models.DeviceDescriptor, error)
	AllDevices() []*models.DeviceDescriptor
	SendCommand(deviceID, command string) (string, error)
	SendCanMessage(deviceID string, msg canbus.Message) error

	// Keywords
	ListKeywords() []keywords.KeywordSchema

	// Runs
	StartRun(req models.RunRequest) (string, error)
	CancelRun(runID string) error
	RunResult(runID string) (*models.RunResult, error)
	RunReport(runID string) (*models.RunReport, error)
	RunHistory() ([]entities.TestRun, error)
}
