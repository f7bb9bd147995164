package device_service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ssbtech/hilService/internal/canbus"
	"github.com/ssbtech/hilService/internal/config"
	"github.com/ssbtech/hilService/internal/devices"
	"github.com/ssbtech/hilService/internal/domain/models"
	"github.com/ssbtech/hilService/internal/interfaces"
	"github.com/ssbtech/hilService/internal/middleware/logging"
	"github.com/ssbtech/hilService/pkg/errors"
)

type managed struct {
	device    devices.Device
	transport *devices.Transport
	desc      models.DeviceDescriptor
}

// DeviceManager owns every device instance and arbitrates the shared
// transports. The transport lock is per physical bus and held for one
// command round-trip only, never across a whole run, so status queries are
// not starved by long tests.
type DeviceManager struct {
	mu      sync.RWMutex
	table   map[string]*managed
	monitor interfaces.Monitor
	logger  *logging.Logger

	connectTimeout time.Duration
	receiveTimeout time.Duration
}

// NewDeviceManager builds the bench from the declared device configuration.
// Devices configured on the same port share one transport.
func NewDeviceManager(cfg *config.AppConfig, monitor interfaces.Monitor, logger *logging.Logger) interfaces.DeviceService {
	dm := &DeviceManager{
		table:          make(map[string]*managed),
		monitor:        monitor,
		logger:         logger.WithPrefix("DEVICES"),
		connectTimeout: time.Duration(cfg.Devices.ConnectTimeoutMs) * time.Millisecond,
		receiveTimeout: time.Duration(cfg.Devices.ReceiveTimeoutMs) * time.Millisecond,
	}

	transports := make(map[string]*devices.Transport)
	bus := func(path string, baud int) *devices.Transport {
		if t, ok := transports[path]; ok {
			return t
		}
		t := devices.NewTransport(path, path, baud)
		transports[path] = t
		return t
	}

	dm.register("power", models.KindPower, bus(cfg.Devices.PowerPort, cfg.Devices.PowerBaud))
	dm.register("loader", models.KindLoader, bus(cfg.Devices.LoaderPort, cfg.Devices.LoaderBaud))
	dm.register("dongle", models.KindDongle, bus(cfg.Devices.DonglePort, cfg.Devices.DongleBaud))

	return dm
}

func (dm *DeviceManager) register(id string, kind models.DeviceKind, t *devices.Transport) {
	dev := devices.New(kind, t)
	if dev == nil {
		dm.logger.Error("No constructor registered for device kind", "kind", kind)
		return
	}
	dm.table[id] = &managed{
		device:    dev,
		transport: t,
		desc: models.DeviceDescriptor{
			ID:        id,
			Kind:      kind,
			State:     models.StateDisconnected,
			Transport: t.Name(),
			UpdatedAt: time.Now(),
		},
	}
}

func (dm *DeviceManager) lookup(deviceID string) (*managed, error) {
	m, ok := dm.table[deviceID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errors.ErrDeviceNotFound, deviceID)
	}
	return m, nil
}

// transition moves a device through its closed state machine and publishes
// the change. Callers hold dm.mu.
func (dm *DeviceManager) transition(m *managed, next models.ConnState, cause error) error {
	from := m.desc.State
	if from == next {
		return nil
	}
	if !from.CanTransition(next) {
		return fmt.Errorf("illegal device state transition %s -> %s for %q", from, next, m.desc.ID)
	}
	m.desc.State = next
	m.desc.UpdatedAt = time.Now()
	m.desc.LastError = ""
	if cause != nil {
		m.desc.LastError = cause.Error()
	}

	dm.logger.Info("Device state changed", "device", m.desc.ID, "from", from, "to", next)
	dm.monitor.PublishDeviceChange(models.DeviceStateChange{
		DeviceID:  m.desc.ID,
		From:      from,
		To:        next,
		Timestamp: m.desc.UpdatedAt,
	})
	return nil
}

func (dm *DeviceManager) Connect(deviceID string) (*models.DeviceDescriptor, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	m, err := dm.lookup(deviceID)
	if err != nil {
		return nil, err
	}
	if m.desc.State == models.StateConnected {
		desc := m.desc
		return &desc, nil
	}

	if err := dm.transition(m, models.StateConnecting, nil); err != nil {
		return nil, err
	}

	if !m.transport.TryAcquire() {
		_ = dm.transition(m, models.StateDisconnected, errors.ErrTransportBusy)
		return nil, fmt.Errorf("%w: transport %q is in use", errors.ErrTransportBusy, m.transport.Name())
	}
	defer m.transport.Release()

	if err := m.device.Connect(dm.connectTimeout); err != nil {
		_ = dm.transition(m, models.StateError, err)
		return nil, err
	}

	if err := dm.transition(m, models.StateConnected, nil); err != nil {
		return nil, err
	}
	desc := m.desc
	return &desc, nil
}

func (dm *DeviceManager) Disconnect(deviceID string) (*models.DeviceDescriptor, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	m, err := dm.lookup(deviceID)
	if err != nil {
		return nil, err
	}
	if m.desc.State == models.StateDisconnected {
		desc := m.desc
		return &desc, nil
	}

	// Closing must not race an in-flight round-trip on the shared bus.
	if !m.transport.TryAcquire() {
		return nil, fmt.Errorf("%w: transport %q is in use", errors.ErrTransportBusy, m.transport.Name())
	}
	err = m.device.Disconnect()
	m.transport.Release()
	if err != nil {
		_ = dm.transition(m, models.StateError, err)
		return nil, err
	}
	if err := dm.transition(m, models.StateDisconnected, nil); err != nil {
		return nil, err
	}
	desc := m.desc
	return &desc, nil
}

func (dm *DeviceManager) Status(deviceID string) (*models.DeviceDescriptor, error) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	m, err := dm.lookup(deviceID)
	if err != nil {
		return nil, err
	}
	desc := m.desc
	return &desc, nil
}

func (dm *DeviceManager) StatusAll() []*models.DeviceDescriptor {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	out := make([]*models.DeviceDescriptor, 0, len(dm.table))
	for _, m := range dm.table {
		desc := m.desc
		out = append(out, &desc)
	}
	return out
}

// Send issues one command round-trip under the transport lock. Contended
// locks fail fast with ErrTransportBusy; the manager never retries on its
// own, the caller decides the backoff policy.
func (dm *DeviceManager) Send(deviceID, command string) (string, error) {
	dm.mu.RLock()
	m, err := dm.lookup(deviceID)
	dm.mu.RUnlock()
	if err != nil {
		return "", err
	}
	if !m.device.Connected() {
		return "", fmt.Errorf("%w: device %q is not connected", errors.ErrTransport, deviceID)
	}

	if !m.transport.TryAcquire() {
		return "", fmt.Errorf("%w: transport %q is in use", errors.ErrTransportBusy, m.transport.Name())
	}
	defer m.transport.Release()

	if err := m.device.Send([]byte(command)); err != nil {
		return "", err
	}

	// SCPI query commands expect one response line.
	if strings.HasSuffix(strings.TrimSpace(command), "?") {
		resp, err := m.device.Receive(dm.receiveTimeout)
		if err != nil {
			return "", err
		}
		return string(resp), nil
	}
	return "", nil
}

// SendCan encodes msg and pushes it through the dongle. Encoding failures
// reject the message before it reaches the bus.
func (dm *DeviceManager) SendCan(deviceID string, msg canbus.Message) error {
	dm.mu.RLock()
	m, err := dm.lookup(deviceID)
	dm.mu.RUnlock()
	if err != nil {
		return err
	}
	if m.desc.Kind != models.KindDongle {
		return fmt.Errorf("%w: device %q is not a CAN dongle", errors.ErrValidation, deviceID)
	}

	frame, err := canbus.Encode(msg)
	if err != nil {
		return err
	}

	if !m.transport.TryAcquire() {
		return fmt.Errorf("%w: transport %q is in use", errors.ErrTransportBusy, m.transport.Name())
	}
	defer m.transport.Release()

	return m.device.Send(frame)
}

// WithTransport runs fn holding the device's transport lock for a multi-step
// transaction. The lock is released on every exit path.
func (dm *DeviceManager) WithTransport(deviceID string, fn func() error) error {
	dm.mu.RLock()
	m, err := dm.lookup(deviceID)
	dm.mu.RUnlock()
	if err != nil {
		return err
	}

	m.transport.Acquire()
	defer m.transport.Release()
	return fn()
}

// ResetConnecting returns devices stuck in Connecting to Disconnected.
// A cancelled run must not leave orphaned half-open connections behind.
func (dm *DeviceManager) ResetConnecting() {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	for _, m := range dm.table {
		if m.desc.State == models.StateConnecting {
			m.transport.Acquire()
			_ = m.device.Disconnect()
			m.transport.Release()
			_ = dm.transition(m, models.StateDisconnected, nil)
		}
	}
}

// Shutdown disconnects everything and releases all device handles.
func (dm *DeviceManager) Shutdown() {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	for _, m := range dm.table {
		if m.desc.State == models.StateConnected || m.desc.State == models.StateConnecting {
			m.transport.Acquire()
			err := m.device.Disconnect()
			m.transport.Release()
			if err != nil {
				dm.logger.Error("Failed to disconnect device on shutdown", "device", m.desc.ID, "error", err)
				continue
			}
			_ = dm.transition(m, models.StateDisconnected, nil)
		}
	}
}
