package models

import "time"

// DeviceKind identifies the hardware class behind a logical device.
type DeviceKind string

const (
	KindPower  DeviceKind = "POWER"
	KindLoader DeviceKind = "LOADER"
	KindDongle DeviceKind = "DONGLE"
)

// ConnState is the connection lifecycle state of a device. Transitions form
// a closed state machine; Connecting is never skipped.
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
	StateError        ConnState = "error"
)

// CanTransition reports whether the state machine allows moving to next.
func (s ConnState) CanTransition(next ConnState) bool {
	switch s {
	case StateDisconnected:
		return next == StateConnecting
	case StateConnecting:
		return next == StateConnected || next == StateError || next == StateDisconnected
	case StateConnected:
		return next == StateDisconnected || next == StateError
	case StateError:
		return next == StateConnecting || next == StateDisconnected
	}
	return false
}

// DeviceDescriptor is the manager-owned view of one logical device.
type DeviceDescriptor struct {
	ID        string     `json:"id"`
	Kind      DeviceKind `json:"kind"`
	State     ConnState  `json:"state"`
	Transport string     `json:"transport"` // physical bus name, shared between devices
	LastError string     `json:"last_error,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// DeviceStateChange is published to the monitor hub on every transition.
type DeviceStateChange struct {
	DeviceID  string    `json:"device_id"`
	From      ConnState `json:"from"`
	To        ConnState `json:"to"`
	Timestamp time.Time `json:"timestamp"`
}

// DeviceRequest addresses a device by its logical id.
type DeviceRequest struct {
	DeviceID string `json:"device_id" binding:"required"`
}

// SendRequest carries one raw command for a device.
type SendRequest struct {
	DeviceID string `json:"device_id" binding:"required"`
	Command  string `json:"command" binding:"required"`
}

// CanSendRequest carries one CAN message for a dongle device. Payload is hex
// encoded and covers at most 8 bytes.
type CanSendRequest struct {
	DeviceID string `json:"device_id" binding:"required"`
	CanID    uint32 `json:"can_id"`
	Extended bool   `json:"extended"`
	Payload  string `json:"payload"`
	Node     uint8  `json:"node"`
	Type     uint8  `json:"type"`
}
