package usecases

import (
	"github.com/ssbtech/hilService/internal/canbus"
	"github.com/ssbtech/hilService/internal/domain/entities"
	"github.com/ssbtech/hilService/internal/domain/models"
	"github.com/ssbtech/hilService/internal/keywords"
)

func (u *Usecase) ConnectDevice(deviceID string) (*models.DeviceDescriptor, error) {
	return u.devices.Connect(deviceID)
}

func (u *Usecase) DisconnectDevice(deviceID string) (*models.DeviceDescriptor, error) {
	return u.devices.Disconnect(deviceID)
}

func (u *Usecase) DeviceStatus(deviceID string) (*models.DeviceDescriptor, error) {
	return u.devices.Status(deviceID)
}

func (u *Usecase) AllDevices() []*models.DeviceDescriptor {
	return u.devices.StatusAll()
}

func (u *Usecase) SendCommand(deviceID, command string) (string, error) {
	return u.devices.Send(deviceID, command)
}

func (u *Usecase) SendCanMessage(deviceID string, msg canbus.Message) error {
	return u.devices.SendCan(deviceID, msg)
}

func (u *Usecase) ListKeywords() []keywords.KeywordSchema {
	return u.registry.All()
}

func (u *Usecase) StartRun(req models.RunRequest) (string, error) {
	return u.runs.StartRun(req)
}

func (u *Usecase) CancelRun(runID string) error {
	return u.runs.CancelRun(runID)
}

func (u *Usecase) RunResult(runID string) (*models.RunResult, error) {
	return u.runs.Result(runID)
}

func (u *Usecase) RunReport(runID string) (*models.RunReport, error) {
	return u.runs.Report(runID)
}

func (u *Usecase) RunHistory() ([]entities.TestRun, error) {
	return u.repo.GetAll()
}
