package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ssbtech/hilService/internal/canbus"
	"github.com/ssbtech/hilService/internal/interfaces"
	"github.com/ssbtech/hilService/internal/middleware/logging"
	"github.com/ssbtech/hilService/pkg/errors"
)

// stubUsecases records forwarded CAN messages; nothing else is exercised.
type stubUsecases struct {
	interfaces.Usecases
	canDevice string
	canMsgs   []canbus.Message
	canErr    error
}

func (s *stubUsecases) SendCanMessage(deviceID string, msg canbus.Message) error {
	s.canDevice = deviceID
	s.canMsgs = append(s.canMsgs, msg)
	return s.canErr
}

func newCanTestRouter(t *testing.T, uc *stubUsecases) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logging.NewLogger(&logging.Config{Enabled: false}, "TEST")
	h := NewHandler(uc, nil, logger)

	router := gin.New()
	router.POST("/api/v1/devices/can", h.SendCanMessage)
	return router
}

func postCan(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/devices/can", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSendCanMessageEndpoint(t *testing.T) {
	uc := &stubUsecases{}
	router := newCanTestRouter(t, uc)

	rec := postCan(t, router, `{"device_id":"dongle","can_id":400,"payload":"3210","node":1,"type":0}`)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Equal(t, "dongle", uc.canDevice)
	require.Len(t, uc.canMsgs, 1)
	require.Equal(t, uint32(400), uc.canMsgs[0].ID)
	require.Equal(t, []byte{0x32, 0x10}, uc.canMsgs[0].Payload)
	require.Equal(t, uint8(1), uc.canMsgs[0].Node)
	require.Equal(t, canbus.TypeData, uc.canMsgs[0].Type)
}

func TestSendCanMessageRejectsBadPayload(t *testing.T) {
	uc := &stubUsecases{}
	router := newCanTestRouter(t, uc)

	// Missing device id fails binding.
	rec := postCan(t, router, `{"can_id":400,"payload":"32"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Payloads must be hex encoded.
	rec = postCan(t, router, `{"device_id":"dongle","can_id":400,"payload":"zz"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	require.Empty(t, uc.canMsgs, "rejected requests never reach the usecase")
}

func TestSendCanMessageErrorMapping(t *testing.T) {
	uc := &stubUsecases{canErr: errors.ErrDeviceNotFound}
	router := newCanTestRouter(t, uc)

	rec := postCan(t, router, `{"device_id":"ghost","can_id":1,"payload":""}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	uc.canErr = errors.ErrTransportBusy
	rec = postCan(t, router, `{"device_id":"dongle","can_id":1,"payload":""}`)
	require.Equal(t, http.StatusConflict, rec.Code)
}
