package devices

import (
	"fmt"
	"time"

	"github.com/ssbtech/hilService/internal/canbus"
	"github.com/ssbtech/hilService/internal/domain/models"
	"github.com/ssbtech/hilService/pkg/errors"
)

// Dongle drives the SSB USB-CAN bridge. Commands and responses are fixed-size
// frames in the canbus wire format.
type Dongle struct {
	transport *Transport
	connected bool
}

func NewDongle(t *Transport) *Dongle {
	return &Dongle{transport: t}
}

func (d *Dongle) Kind() models.DeviceKind { return models.KindDongle }
func (d *Dongle) Connected() bool         { return d.connected }

// Connect opens the bridge port. The dongle streams frames as soon as the
// port is up, so no probe command is needed.
func (d *Dongle) Connect(timeout time.Duration) error {
	if err := d.transport.Open(); err != nil {
		return err
	}
	d.connected = true
	return nil
}

func (d *Dongle) Disconnect() error {
	d.connected = false
	return d.transport.Close()
}

// Send writes one encoded frame. The frame must already be in wire format;
// anything else is rejected before touching the bus.
func (d *Dongle) Send(cmd []byte) error {
	if !d.connected {
		return fmt.Errorf("%w: dongle is not connected", errors.ErrTransport)
	}
	if len(cmd) != canbus.FrameSize {
		return fmt.Errorf("%w: dongle command must be a %d-byte frame, got %d bytes",
			errors.ErrProtocol, canbus.FrameSize, len(cmd))
	}
	return d.transport.Write(cmd)
}

// Receive reads one frame from the bridge.
func (d *Dongle) Receive(timeout time.Duration) ([]byte, error) {
	if !d.connected {
		return nil, fmt.Errorf("%w: dongle is not connected", errors.ErrTransport)
	}
	return d.transport.ReadFull(canbus.FrameSize, timeout)
}
