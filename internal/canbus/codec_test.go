package canbus

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ssbtech/hilService/pkg/errors"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	msg := Message{
		ID:      400,
		Payload: []byte{0x32},
		Node:    1,
		Type:    TypeData,
		Systick: 12345,
	}

	frame, err := Encode(msg)
	require.NoError(t, err)
	require.Len(t, frame, FrameSize)
	require.Equal(t, HeaderHost, binary.LittleEndian.Uint16(frame[0:2]))
	require.Equal(t, uint8(1), frame[12], "dlc must match payload length")

	decoded, err := Decode(frame)
	require.NoError(t, err)
	require.Equal(t, msg, decoded)
}

func TestEncodeDeterministic(t *testing.T) {
	msg := Message{ID: 0x123, Payload: []byte{0xDE, 0xAD}, Node: 2, Type: TypeData}

	a, err := Encode(msg)
	require.NoError(t, err)
	b, err := Encode(msg)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestEncodeExtendedID(t *testing.T) {
	msg := Message{ID: 0x18DAF110, Extended: true, Payload: []byte{0x01}, Node: 1}

	frame, err := Encode(msg)
	require.NoError(t, err)

	rawID := binary.LittleEndian.Uint32(frame[8:12])
	require.NotZero(t, rawID&(1<<31), "extended flag bit must be set")

	decoded, err := Decode(frame)
	require.NoError(t, err)
	require.True(t, decoded.Extended)
	require.Equal(t, uint32(0x18DAF110), decoded.ID)
}

func TestEncodeRejectsOversizedPayload(t *testing.T) {
	msg := Message{ID: 1, Payload: make([]byte, 9)}

	_, err := Encode(msg)
	require.ErrorIs(t, err, errors.ErrProtocol)
}

func TestEncodeRejectsWideStandardID(t *testing.T) {
	_, err := Encode(Message{ID: 0x800})
	require.ErrorIs(t, err, errors.ErrProtocol)

	_, err = Encode(Message{ID: 0x800, Extended: true})
	require.NoError(t, err)

	_, err = Encode(Message{ID: 0x20000000, Extended: true})
	require.ErrorIs(t, err, errors.ErrProtocol)
}

func TestEncodeRejectsUnknownType(t *testing.T) {
	_, err := Encode(Message{ID: 1, Type: MsgType(3)})
	require.ErrorIs(t, err, errors.ErrProtocol)
}

func TestDecodeRejectsShortFrame(t *testing.T) {
	_, err := Decode(make([]byte, FrameSize-1))
	require.ErrorIs(t, err, errors.ErrMalformedFrame)
}

func TestDecodeRejectsBadHeader(t *testing.T) {
	frame, err := Encode(Message{ID: 1, Node: 1})
	require.NoError(t, err)

	binary.LittleEndian.PutUint16(frame[0:2], 0x1234)
	binary.LittleEndian.PutUint32(frame[21:25], Checksum(frame[:21]))

	_, err = Decode(frame)
	require.ErrorIs(t, err, errors.ErrMalformedFrame)
}

func TestDecodeRejectsCorruptedCRC(t *testing.T) {
	frame, err := Encode(Message{ID: 42, Payload: []byte{0xFF}})
	require.NoError(t, err)

	frame[13] ^= 0x01 // flip one payload bit without recomputing the CRC

	_, err = Decode(frame)
	require.ErrorIs(t, err, errors.ErrMalformedFrame)
}

func TestDecodeAcceptsDeviceHeader(t *testing.T) {
	frame, err := Encode(Message{ID: 7, Payload: []byte{0xAB}, Node: 3})
	require.NoError(t, err)

	binary.LittleEndian.PutUint16(frame[0:2], HeaderDevice)
	binary.LittleEndian.PutUint32(frame[21:25], Checksum(frame[:21]))

	decoded, err := Decode(frame)
	require.NoError(t, err)
	require.Equal(t, uint32(7), decoded.ID)
}

func TestDecodeRejectsBadDLC(t *testing.T) {
	frame, err := Encode(Message{ID: 1})
	require.NoError(t, err)

	frame[12] = 9
	binary.LittleEndian.PutUint32(frame[21:25], Checksum(frame[:21]))

	_, err = Decode(frame)
	require.ErrorIs(t, err, errors.ErrMalformedFrame)
}

func TestChecksumKnownProperties(t *testing.T) {
	require.Zero(t, Checksum(nil))
	require.Zero(t, Checksum([]byte{0x00}), "zero seed and zero input stay zero")
	require.NotZero(t, Checksum([]byte{0x01}))
}
