package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ProgressStream upgrades the connection and streams monitor events as JSON
// messages until the client disconnects.
// @Summary Stream run progress and device state changes
// @Description WebSocket endpoint. Each message is one monitor event, keyword progress or device state change, in publication order.
// @Tags Progress
// @Router /ws/progress [get]
func (h *Handler) ProgressStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events, handle := h.monitor.Subscribe(0)
	defer h.monitor.Unsubscribe(handle)

	h.logger.Info("Progress subscriber attached", "remote_addr", conn.RemoteAddr().String())

	// Reader goroutine: detect client disconnect, discard inbound frames.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				h.logger.Warn("Progress subscriber write failed", "error", err)
				return
			}
		case <-closed:
			return
		}
	}
}
