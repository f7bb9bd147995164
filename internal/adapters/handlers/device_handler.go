package handlers

import (
	"encoding/hex"
	"net/http"

	"github.com/ssbtech/hilService/internal/canbus"
	"github.com/ssbtech/hilService/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// ConnectDevice connects a configured device.
// @Summary Connect a device
// @Description Opens the device's transport and probes the instrument. Returns 409 when the shared transport is held by another device.
// @Tags Devices
// @Accept json
// @Produce json
// @Param input body models.DeviceRequest true "Logical device id (power / loader / dongle)"
// @Success 200 {object} models.DeviceResponse "Device descriptor after the attempt"
// @Failure 400 {object} models.ErrorResponse "Invalid request payload"
// @Failure 404 {object} models.ErrorResponse "Unknown device id"
// @Failure 409 {object} models.ErrorResponse "Transport busy"
// @Router /devices/connect [post]
func (h *Handler) ConnectDevice(c *gin.Context) {
	var req models.DeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err, "Invalid request payload")
		return
	}

	h.logger.Info("Connecting device", "deviceID", req.DeviceID)

	desc, err := h.usecase.ConnectDevice(req.DeviceID)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "device": desc})
}

// DisconnectDevice disconnects a device and releases its transport.
// @Summary Disconnect a device
// @Tags Devices
// @Accept json
// @Produce json
// @Param input body models.DeviceRequest true "Logical device id"
// @Success 200 {object} models.DeviceResponse "Device descriptor after disconnect"
// @Failure 400 {object} models.ErrorResponse "Invalid request payload"
// @Failure 404 {object} models.ErrorResponse "Unknown device id"
// @Router /devices/disconnect [post]
func (h *Handler) DisconnectDevice(c *gin.Context) {
	var req models.DeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err, "Invalid request payload")
		return
	}

	desc, err := h.usecase.DisconnectDevice(req.DeviceID)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "device": desc})
}

// ListDevices returns every configured device with its connection state.
// @Summary List devices
// @Tags Devices
// @Produce json
// @Success 200 {object} models.DeviceListResponse "All device descriptors"
// @Router /devices [get]
func (h *Handler) ListDevices(c *gin.Context) {
	devices := h.usecase.AllDevices()
	c.JSON(http.StatusOK, gin.H{"status": "ok", "devices": devices})
}

// DeviceStatus returns one device descriptor.
// @Summary Get device status
// @Tags Devices
// @Produce json
// @Param id path string true "Logical device id"
// @Success 200 {object} models.DeviceResponse "Device descriptor"
// @Failure 404 {object} models.ErrorResponse "Unknown device id"
// @Router /devices/{id} [get]
func (h *Handler) DeviceStatus(c *gin.Context) {
	desc, err := h.usecase.DeviceStatus(c.Param("id"))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "device": desc})
}

// SendCommand sends one raw command to a connected device.
// @Summary Send a raw command
// @Description Performs one command round-trip under the transport lock. Query commands return the instrument response.
// @Tags Devices
// @Accept json
// @Produce json
// @Param input body models.SendRequest true "Device id and command"
// @Success 200 {object} models.SendResponse "Command accepted, response when applicable"
// @Failure 400 {object} models.ErrorResponse "Invalid request payload"
// @Failure 404 {object} models.ErrorResponse "Unknown device id"
// @Failure 409 {object} models.ErrorResponse "Transport busy"
// @Router /devices/send [post]
func (h *Handler) SendCommand(c *gin.Context) {
	var req models.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err, "Invalid request payload")
		return
	}

	resp, err := h.usecase.SendCommand(req.DeviceID, req.Command)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "response": resp})
}

// SendCanMessage sends one CAN message through a connected dongle.
// @Summary Send a CAN message
// @Description Encodes the message into a dongle frame and pushes it onto the bus. The payload is hex encoded and covers at most 8 bytes.
// @Tags Devices
// @Accept json
// @Produce json
// @Param input body models.CanSendRequest true "Device id and CAN message"
// @Success 200 {object} models.MessageResponse "Message queued on the bus"
// @Failure 400 {object} models.ErrorResponse "Invalid request payload or frame"
// @Failure 404 {object} models.ErrorResponse "Unknown device id"
// @Failure 409 {object} models.ErrorResponse "Transport busy"
// @Router /devices/can [post]
func (h *Handler) SendCanMessage(c *gin.Context) {
	var req models.CanSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err, "Invalid request payload")
		return
	}

	payload, err := hex.DecodeString(req.Payload)
	if err != nil {
		h.BadRequest(c, err, "Payload must be hex encoded")
		return
	}

	msg := canbus.Message{
		ID:       req.CanID,
		Extended: req.Extended,
		Payload:  payload,
		Node:     req.Node,
		Type:     canbus.MsgType(req.Type),
	}

	h.logger.Info("Sending CAN message", "deviceID", req.DeviceID, "canID", req.CanID)

	if err := h.usecase.SendCanMessage(req.DeviceID, msg); err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "can message sent"})
}
