package devices

import (
	"fmt"
	"time"

	"github.com/ssbtech/hilService/internal/domain/models"
	"github.com/ssbtech/hilService/pkg/errors"
)

// Power drives a UDP6730-class SCPI bench supply over serial.
type Power struct {
	transport *Transport
	connected bool
}

func NewPower(t *Transport) *Power {
	return &Power{transport: t}
}

func (p *Power) Kind() models.DeviceKind { return models.KindPower }
func (p *Power) Connected() bool         { return p.connected }

// Connect opens the port and probes the instrument with *IDN?. A failed
// probe releases the port again so the bus refcount stays balanced.
func (p *Power) Connect(timeout time.Duration) error {
	if err := p.transport.Open(); err != nil {
		return err
	}
	if err := p.transport.Write([]byte("*IDN?\n")); err != nil {
		_ = p.transport.Close()
		return err
	}
	idn, err := p.transport.ReadLine(timeout)
	if err != nil {
		_ = p.transport.Close()
		return fmt.Errorf("supply did not answer *IDN?: %w", err)
	}
	if len(idn) == 0 {
		_ = p.transport.Close()
		return fmt.Errorf("%w: empty *IDN? response", errors.ErrTransport)
	}
	p.connected = true
	return nil
}

func (p *Power) Disconnect() error {
	p.connected = false
	return p.transport.Close()
}

// Send writes one SCPI command, newline terminated.
func (p *Power) Send(cmd []byte) error {
	if !p.connected {
		return fmt.Errorf("%w: power supply is not connected", errors.ErrTransport)
	}
	return p.transport.Write(append(cmd, '\n'))
}

// Receive reads one SCPI response line.
func (p *Power) Receive(timeout time.Duration) ([]byte, error) {
	if !p.connected {
		return nil, fmt.Errorf("%w: power supply is not connected", errors.ErrTransport)
	}
	return p.transport.ReadLine(timeout)
}
