package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ssbtech/hilService/internal/domain/models"
	"github.com/ssbtech/hilService/internal/middleware/logging"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	logger := logging.NewLogger(&logging.Config{Enabled: false}, "TEST")
	return NewHub(logger).(*Hub)
}

func TestSubscribeReceivesInOrder(t *testing.T) {
	h := newTestHub(t)
	defer h.Close()

	events, handle := h.Subscribe(16)
	defer h.Unsubscribe(handle)

	for i := 0; i < 5; i++ {
		h.PublishProgress(models.ProgressEvent{RunID: "r", KeywordIndex: i, Total: 5})
	}

	for i := 0; i < 5; i++ {
		select {
		case ev := <-events:
			require.NotNil(t, ev.Progress)
			require.Equal(t, i, ev.Progress.KeywordIndex, "events must arrive in publish order")
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestMultipleSubscribersEachReceive(t *testing.T) {
	h := newTestHub(t)
	defer h.Close()

	a, ha := h.Subscribe(4)
	b, hb := h.Subscribe(4)
	defer h.Unsubscribe(ha)
	defer h.Unsubscribe(hb)

	h.PublishDeviceChange(models.DeviceStateChange{DeviceID: "power"})

	for _, ch := range []<-chan models.MonitorEvent{a, b} {
		select {
		case ev := <-ch:
			require.NotNil(t, ev.Device)
			require.Equal(t, "power", ev.Device.DeviceID)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := newTestHub(t)
	defer h.Close()

	events, handle := h.Subscribe(2)
	defer h.Unsubscribe(handle)

	// More events than the buffer holds; publish must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			h.PublishProgress(models.ProgressEvent{KeywordIndex: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber buffer")
	}

	// The survivors are the earliest events, still in order, at most once.
	first := <-events
	second := <-events
	require.Equal(t, 0, first.Progress.KeywordIndex)
	require.Equal(t, 1, second.Progress.KeywordIndex)
	require.Empty(t, events)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := newTestHub(t)
	defer h.Close()

	events, handle := h.Subscribe(1)
	h.Unsubscribe(handle)

	_, open := <-events
	require.False(t, open)

	// Double unsubscribe is a no-op.
	h.Unsubscribe(handle)

	// Publishing after unsubscribe must not panic.
	h.PublishProgress(models.ProgressEvent{})
}

func TestCloseShutsDownAllSubscribers(t *testing.T) {
	h := newTestHub(t)

	a, _ := h.Subscribe(1)
	b, _ := h.Subscribe(1)

	h.Close()

	_, openA := <-a
	_, openB := <-b
	require.False(t, openA)
	require.False(t, openB)

	// Subscribe after close yields an already-closed channel.
	c, _ := h.Subscribe(1)
	_, openC := <-c
	require.False(t, openC)
}
