// Package devices implements the hardware access layer for the bench
// instruments: the SCPI power supply, the SCPI electronic load and the
// USB-CAN dongle. All variants sit behind the same capability interface and
// share physical transports; exclusive access to a transport is arbitrated
// by the device manager, not here.
package devices

import (
	"time"

	"github.com/ssbtech/hilService/internal/domain/models"
)

// Device is the capability contract every bench instrument implements.
type Device interface {
	// Connect opens the underlying transport and verifies the instrument
	// answers within timeout.
	Connect(timeout time.Duration) error
	Disconnect() error
	Connected() bool
	Kind() models.DeviceKind

	// Send writes one raw command to the instrument.
	Send(cmd []byte) error
	// Receive reads one response unit (a line for SCPI instruments, a frame
	// for the dongle), waiting at most timeout.
	Receive(timeout time.Duration) ([]byte, error)
}

// Constructor builds one device over a shared transport.
type Constructor func(t *Transport) Device

// registry maps device kinds to constructors. Populated from init, not
// runtime discovery.
var registry = map[models.DeviceKind]Constructor{}

// Register installs a constructor for kind.
func Register(kind models.DeviceKind, ctor Constructor) {
	registry[kind] = ctor
}

// New builds a device of the given kind, or nil when the kind is unknown.
func New(kind models.DeviceKind, t *Transport) Device {
	ctor, ok := registry[kind]
	if !ok {
		return nil
	}
	return ctor(t)
}

func init() {
	Register(models.KindPower, func(t *Transport) Device { return NewPower(t) })
	Register(models.KindLoader, func(t *Transport) Device { return NewLoader(t) })
	Register(models.KindDongle, func(t *Transport) Device { return NewDongle(t) })
}
