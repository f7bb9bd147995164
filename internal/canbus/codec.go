// Package canbus implements the wire codec for the SSB USB-CAN dongle frame.
//
// Frame layout (little-endian, 25 bytes):
//
//	header   uint16   0xFFFF host->device, 0xAAAA device->host
//	systick  uint32   sender milliseconds counter
//	node     uint8
//	type     uint8    0=Data, 1=Remote, 2=Error
//	id       uint32   bit 31 set marks a 29-bit extended identifier
//	dlc      uint8    payload length, 0..8
//	payload  [8]byte  zero padded
//	crc32    uint32   over the first 21 bytes
package canbus

import (
	"encoding/binary"
	"fmt"

	"github.com/ssbtech/hilService/pkg/errors"
)

const (
	FrameSize   = 25
	headerLen   = 21 // bytes covered by the CRC
	maxPayload  = 8
	maxStandard = 0x7FF
	maxExtended = 0x1FFFFFFF

	HeaderHost   uint16 = 0xFFFF
	HeaderDevice uint16 = 0xAAAA

	extendedBit uint32 = 1 << 31
)

// MsgType is the CAN frame type.
type MsgType uint8

const (
	TypeData   MsgType = 0
	TypeRemote MsgType = 1
	TypeError  MsgType = 2
)

// Message is one structured CAN message. Immutable value type; Encode and
// Decode never mutate their argument.
type Message struct {
	ID       uint32  `json:"id"`
	Extended bool    `json:"extended"`
	Payload  []byte  `json:"payload"` // at most 8 bytes
	Node     uint8   `json:"node"`
	Type     MsgType `json:"type"`
	Systick  uint32  `json:"systick"` // sender millisecond counter
}

// Encode serializes m into the 25-byte dongle frame. Pure and deterministic:
// the same message always yields the same bytes.
func Encode(m Message) ([]byte, error) {
	if len(m.Payload) > maxPayload {
		return nil, fmt.Errorf("%w: payload length %d exceeds %d bytes", errors.ErrProtocol, len(m.Payload), maxPayload)
	}
	if m.Type > TypeError {
		return nil, fmt.Errorf("%w: unknown message type %d", errors.ErrProtocol, m.Type)
	}
	limit := uint32(maxStandard)
	if m.Extended {
		limit = maxExtended
	}
	if m.ID > limit {
		return nil, fmt.Errorf("%w: id 0x%X exceeds field width", errors.ErrProtocol, m.ID)
	}

	frame := make([]byte, FrameSize)
	binary.LittleEndian.PutUint16(frame[0:2], HeaderHost)
	binary.LittleEndian.PutUint32(frame[2:6], m.Systick)
	frame[6] = m.Node
	frame[7] = uint8(m.Type)

	id := m.ID
	if m.Extended {
		id |= extendedBit
	}
	binary.LittleEndian.PutUint32(frame[8:12], id)

	frame[12] = uint8(len(m.Payload))
	copy(frame[13:21], m.Payload)

	binary.LittleEndian.PutUint32(frame[21:25], Checksum(frame[:headerLen]))
	return frame, nil
}

// Decode parses a 25-byte dongle frame back into a Message.
func Decode(frame []byte) (Message, error) {
	if len(frame) != FrameSize {
		return Message{}, fmt.Errorf("%w: frame length %d, want %d", errors.ErrMalformedFrame, len(frame), FrameSize)
	}

	header := binary.LittleEndian.Uint16(frame[0:2])
	if header != HeaderHost && header != HeaderDevice {
		return Message{}, fmt.Errorf("%w: unexpected header 0x%04X", errors.ErrMalformedFrame, header)
	}

	if got, want := binary.LittleEndian.Uint32(frame[21:25]), Checksum(frame[:headerLen]); got != want {
		return Message{}, fmt.Errorf("%w: crc mismatch, got 0x%08X want 0x%08X", errors.ErrMalformedFrame, got, want)
	}

	dlc := frame[12]
	if dlc > maxPayload {
		return Message{}, fmt.Errorf("%w: dlc %d exceeds %d", errors.ErrMalformedFrame, dlc, maxPayload)
	}

	typ := MsgType(frame[7])
	if typ > TypeError {
		return Message{}, fmt.Errorf("%w: unknown message type %d", errors.ErrMalformedFrame, typ)
	}

	rawID := binary.LittleEndian.Uint32(frame[8:12])
	m := Message{
		ID:       rawID &^ extendedBit,
		Extended: rawID&extendedBit != 0,
		Node:     frame[6],
		Type:     typ,
		Systick:  binary.LittleEndian.Uint32(frame[2:6]),
	}
	if dlc > 0 {
		m.Payload = make([]byte, dlc)
		copy(m.Payload, frame[13:13+dlc])
	}
	return m, nil
}
