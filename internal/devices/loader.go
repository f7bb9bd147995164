package devices

import (
	"fmt"
	"time"

	"github.com/ssbtech/hilService/internal/domain/models"
	"github.com/ssbtech/hilService/pkg/errors"
)

// Loader drives a PEL500-class SCPI electronic load over serial.
type Loader struct {
	transport *Transport
	connected bool
}

func NewLoader(t *Transport) *Loader {
	return &Loader{transport: t}
}

func (l *Loader) Kind() models.DeviceKind { return models.KindLoader }
func (l *Loader) Connected() bool         { return l.connected }

// Connect opens the port and verifies the load answers an identity query.
// A failed probe releases the port again so the bus refcount stays balanced.
func (l *Loader) Connect(timeout time.Duration) error {
	if err := l.transport.Open(); err != nil {
		return err
	}
	if err := l.transport.Write([]byte("*IDN?\n")); err != nil {
		_ = l.transport.Close()
		return err
	}
	if _, err := l.transport.ReadLine(timeout); err != nil {
		_ = l.transport.Close()
		return fmt.Errorf("load did not answer *IDN?: %w", err)
	}
	l.connected = true
	return nil
}

func (l *Loader) Disconnect() error {
	l.connected = false
	return l.transport.Close()
}

// Send writes one SCPI command, newline terminated.
func (l *Loader) Send(cmd []byte) error {
	if !l.connected {
		return fmt.Errorf("%w: load is not connected", errors.ErrTransport)
	}
	return l.transport.Write(append(cmd, '\n'))
}

// Receive reads one SCPI response line.
func (l *Loader) Receive(timeout time.Duration) ([]byte, error) {
	if !l.connected {
		return nil, fmt.Errorf("%w: load is not connected", errors.ErrTransport)
	}
	return l.transport.ReadLine(timeout)
}
