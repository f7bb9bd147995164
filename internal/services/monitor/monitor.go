// Package monitor implements the progress/component observer hub. Worker
// progress events and device state changes fan out to explicitly registered
// subscribers; there is no implicit global event bus.
package monitor

import (
	"sync"

	"github.com/ssbtech/hilService/internal/domain/models"
	"github.com/ssbtech/hilService/internal/interfaces"
	"github.com/ssbtech/hilService/internal/middleware/logging"
)

const defaultBuffer = 256

// Hub delivers events to each subscriber in publish order, at most once.
// A subscriber that cannot keep up loses events rather than stalling the
// publisher or reordering the stream; there is no replay for late joiners.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan models.MonitorEvent
	closed bool
	logger *logging.Logger
}

func NewHub(logger *logging.Logger) interfaces.Monitor {
	return &Hub{
		subs:   make(map[int]chan models.MonitorEvent),
		logger: logger.WithPrefix("MONITOR"),
	}
}

// Subscribe registers a listener and returns its event channel and handle.
func (h *Hub) Subscribe(buffer int) (<-chan models.MonitorEvent, int) {
	if buffer <= 0 {
		buffer = defaultBuffer
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	ch := make(chan models.MonitorEvent, buffer)
	if h.closed {
		close(ch)
		return ch, h.nextID
	}
	h.subs[h.nextID] = ch
	h.logger.Debug("Listener subscribed", "handle", h.nextID)
	return ch, h.nextID
}

// Unsubscribe removes a listener and closes its channel.
func (h *Hub) Unsubscribe(handle int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch, ok := h.subs[handle]
	if !ok {
		return
	}
	delete(h.subs, handle)
	close(ch)
	h.logger.Debug("Listener unsubscribed", "handle", handle)
}

func (h *Hub) PublishProgress(ev models.ProgressEvent) {
	h.publish(models.MonitorEvent{Progress: &ev})
}

func (h *Hub) PublishDeviceChange(ev models.DeviceStateChange) {
	h.publish(models.MonitorEvent{Device: &ev})
}

// publish delivers under the hub lock, so every listener observes events in
// the exact publish order. Slow listeners drop, they never block or reorder.
func (h *Hub) publish(ev models.MonitorEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	for handle, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.logger.Warn("Listener buffer full, dropping event", "handle", handle)
		}
	}
}

// Close shuts the hub down and closes every subscriber channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for handle, ch := range h.subs {
		delete(h.subs, handle)
		close(ch)
	}
}
