package handlers

import (
	stderr "errors"
	"net/http"

	"github.com/ssbtech/hilService/pkg/errors"

	"github.com/gin-gonic/gin"
)

// ErrorResponse returns a standardized error payload.
func (h *Handler) ErrorResponse(c *gin.Context, err error, statusCode int, message string, showError bool) {
	errorMessage := message
	if showError && err != nil {
		errorMessage = message + ": " + err.Error()
	}

	h.logger.Error(message, "error", err, "statusCode", statusCode)
	c.AbortWithStatusJSON(statusCode, gin.H{
		"status": "error",
		"error": gin.H{
			"code":    statusCode,
			"message": errorMessage,
		},
	})
}

// BadRequest returns a 400 error
func (h *Handler) BadRequest(c *gin.Context, err error, message string) {
	if message == "" {
		message = errors.BadRequest
	}
	h.ErrorResponse(c, err, http.StatusBadRequest, message, true)
}

// InternalError returns a 500 error
func (h *Handler) InternalError(c *gin.Context, err error) {
	h.ErrorResponse(c, err, http.StatusInternalServerError, errors.InternalServerError, false)
}

// NotFound returns a 404 error
func (h *Handler) NotFound(c *gin.Context, err error) {
	h.ErrorResponse(c, err, http.StatusNotFound, errors.NotFound, true)
}

// Conflict returns a 409 error
func (h *Handler) Conflict(c *gin.Context, err error) {
	h.ErrorResponse(c, err, http.StatusConflict, errors.Conflict, true)
}

// RespondError maps domain sentinels to HTTP status codes.
func (h *Handler) RespondError(c *gin.Context, err error) {
	switch {
	case stderr.Is(err, errors.ErrDeviceNotFound), stderr.Is(err, errors.ErrRunNotFound):
		h.NotFound(c, err)
	case stderr.Is(err, errors.ErrTransportBusy), stderr.Is(err, errors.ErrRunActive):
		h.Conflict(c, err)
	case stderr.Is(err, errors.ErrValidation),
		stderr.Is(err, errors.ErrUnknownKeyword),
		stderr.Is(err, errors.ErrMissingParameter),
		stderr.Is(err, errors.ErrProtocol):
		h.BadRequest(c, err, "Invalid request")
	default:
		h.InternalError(c, err)
	}
}
