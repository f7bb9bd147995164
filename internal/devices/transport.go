package devices

import (
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/ssbtech/hilService/pkg/errors"
)

// openPort dials a serial port. Indirection for tests.
var openPort = func(path string, baud int) (serial.Port, error) {
	return serial.Open(path, &serial.Mode{BaudRate: baud})
}

// Transport wraps one physical serial bus. Several logical devices may share
// a transport; the lock is per transport and is meant to be held for one
// command round-trip only. The port itself is reference counted: it stays
// open until the last device sharing it has closed.
type Transport struct {
	name string
	path string
	baud int

	mu sync.Mutex // command round-trip lock

	stateMu sync.Mutex // guards port and users
	port    serial.Port
	users   int
}

func NewTransport(name, path string, baud int) *Transport {
	return &Transport{name: name, path: path, baud: baud}
}

func (t *Transport) Name() string { return t.name }

// TryAcquire takes the transport lock without blocking. Callers that get
// false should surface ErrTransportBusy and let the caller retry.
func (t *Transport) TryAcquire() bool { return t.mu.TryLock() }

// Acquire blocks until the transport lock is held.
func (t *Transport) Acquire() { t.mu.Lock() }

// Release frees the transport lock.
func (t *Transport) Release() { t.mu.Unlock() }

// Open registers one user of the bus, dialing the serial port on first use.
// Every successful Open must be balanced by one Close.
func (t *Transport) Open() error {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()

	if t.users > 0 {
		t.users++
		return nil
	}
	port, err := openPort(t.path, t.baud)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", errors.ErrTransport, t.path, err)
	}
	t.port = port
	t.users = 1
	return nil
}

// Close drops one user of the bus. The port closes only when the last user
// is gone, so disconnecting one device never cuts off its siblings.
func (t *Transport) Close() error {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()

	if t.users == 0 {
		return nil
	}
	t.users--
	if t.users > 0 {
		return nil
	}
	port := t.port
	t.port = nil
	if err := port.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %v", errors.ErrTransport, t.path, err)
	}
	return nil
}

func (t *Transport) handle() (serial.Port, error) {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()
	if t.port == nil {
		return nil, fmt.Errorf("%w: %s is not open", errors.ErrTransport, t.path)
	}
	return t.port, nil
}

// Write sends raw bytes down the bus.
func (t *Transport) Write(data []byte) error {
	port, err := t.handle()
	if err != nil {
		return err
	}
	if _, err := port.Write(data); err != nil {
		return fmt.Errorf("%w: writing to %s: %v", errors.ErrTransport, t.path, err)
	}
	return nil
}

// ReadLine reads bytes until a newline or until timeout elapses.
func (t *Transport) ReadLine(timeout time.Duration) ([]byte, error) {
	port, err := t.handle()
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrTransport, err)
	}

	var line []byte
	buf := make([]byte, 1)
	deadline := time.Now().Add(timeout)
	for {
		n, err := port.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("%w: reading from %s: %v", errors.ErrTransport, t.path, err)
		}
		if n == 0 || time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: no line within %s", errors.ErrConnectionTimeout, timeout)
		}
		if buf[0] == '\n' {
			return line, nil
		}
		if buf[0] != '\r' {
			line = append(line, buf[0])
		}
	}
}

// ReadFull reads exactly size bytes or fails once timeout elapses.
func (t *Transport) ReadFull(size int, timeout time.Duration) ([]byte, error) {
	port, err := t.handle()
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrTransport, err)
	}

	out := make([]byte, 0, size)
	buf := make([]byte, size)
	deadline := time.Now().Add(timeout)
	for len(out) < size {
		n, err := port.Read(buf[:size-len(out)])
		if err != nil {
			return nil, fmt.Errorf("%w: reading from %s: %v", errors.ErrTransport, t.path, err)
		}
		if n == 0 || time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %d of %d bytes within %s", errors.ErrConnectionTimeout, len(out), size, timeout)
		}
		out = append(out, buf[:n]...)
	}
	return out, nil
}
