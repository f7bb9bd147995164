package interfaces

import (
	"context"

	"github.com/ssbtech/hilService/internal/canbus"
	"github.com/ssbtech/hilService/internal/domain/models"
)

// DeviceService is the contract of the device manager facade: the sole owner
// of device instances and the sole arbiter of the shared transports.
type DeviceService interface {
	Connect(deviceID string) (*models.DeviceDescriptor, error)
	Disconnect(deviceID string) (*models.DeviceDescriptor, error)
	Status(deviceID string) (*models.DeviceDescriptor, error)
	StatusAll() []*models.DeviceDescriptor

	// Send issues one raw command round-trip under the transport lock.
	// Query commands (SCPI "?") return the instrument response.
	Send(deviceID, command string) (string, error)
	// SendCan encodes msg and sends it through a dongle device.
	SendCan(deviceID string, msg canbus.Message) error

	// WithTransport runs fn holding the device's transport lock exclusively,
	// releasing it on every exit path.
	WithTransport(deviceID string, fn func() error) error

	// ResetConnecting forces any device stuck in Connecting back to
	// Disconnected. Called by the worker after a cancelled run.
	ResetConnecting()

	// Shutdown disconnects every device and releases all handles.
	Shutdown()
}

// RunService is the contract of the test-run pipeline: parse, generate,
// execute, report.
type RunService interface {
	// StartRun validates the request, generates the script and starts the
	// worker. Returns the new run id immediately.
	StartRun(req models.RunRequest) (string, error)
	// CancelRun requests cooperative cancellation of an active run.
	CancelRun(runID string) error

	Result(runID string) (*models.RunResult, error)
	Report(runID string) (*models.RunReport, error)
	ActiveRun() (string, bool)
}

// Monitor is the observer hub fanning out worker progress and device state
// changes to subscribers.
type Monitor interface {
	Subscribe(buffer int) (<-chan models.MonitorEvent, int)
	Unsubscribe(handle int)
	PublishProgress(ev models.ProgressEvent)
	PublishDeviceChange(ev models.DeviceStateChange)
	Close()
}

// Interpreter is the black-box external test interpreter. Run launches one
// execution of the script and streams lifecycle events until the process
// ends; cancelling ctx terminates it.
type Interpreter interface {
	Run(ctx context.Context, scriptPath string) (<-chan models.InterpreterEvent, error)
}
