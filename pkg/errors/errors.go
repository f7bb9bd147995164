package errors

import (
	"errors"
	"fmt"
)

const (
	InternalServerError = "internal server error"
	BadRequest          = "bad request"
	NotFound            = "not_found"
	Conflict            = "conflict"

	InvalidDataCode         = 402
	InternalServerErrorCode = 500
	NotFoundErrorCode       = 404
	ConflictErrorCode       = 409
)

// AppError is the standardized error shape returned by the API layer.
type AppError struct {
	Code         int    `json:"code"`    // HTTP status code
	Message      string `json:"message"` // Client-facing message
	Err          error  `json:"-"`       // Internal error, not for the client
	IsUserFacing bool   `json:"-"`       // Whether Err may be shown to the client
}

func (a *AppError) Error() string {
	if a == nil {
		return ""
	}
	if a.Err != nil {
		return fmt.Sprintf("%s (code: %d): %v", a.Message, a.Code, a.Err)
	}
	return fmt.Sprintf("%s (code: %d)", a.Message, a.Code)
}

// NewAppError creates a new AppError instance.
func NewAppError(httpCode int, message string, err error, isUserFacing bool) *AppError {
	return &AppError{
		Code:         httpCode,
		Message:      message,
		Err:          err,
		IsUserFacing: isUserFacing,
	}
}

// Core error taxonomy. Validation errors are rejected before any hardware
// contact; transport and execution errors are captured into run reporting
// instead of crossing the run boundary.
var (
	ErrValidation        = errors.New("validation error")
	ErrUnknownKeyword    = errors.New("unknown keyword")
	ErrMissingParameter  = errors.New("missing required parameter")
	ErrProtocol          = errors.New("protocol error")
	ErrMalformedFrame    = errors.New("malformed frame")
	ErrDeviceNotFound    = errors.New("device not found")
	ErrTransportBusy     = errors.New("transport busy")
	ErrTransport         = errors.New("transport error")
	ErrConnectionTimeout = errors.New("connection timeout")
	ErrExecution         = errors.New("execution error")
	ErrCancelled         = errors.New("run cancelled")
	ErrRunActive         = errors.New("another run is already active")
	ErrRunNotFound       = errors.New("run not found")
)
