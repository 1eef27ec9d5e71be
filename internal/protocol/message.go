package protocol

import (
	"encoding/binary"
	"fmt"
)

// Envelope layout constants
const (
	// HeaderSize is the number of bytes before the payload: preamble,
	// header marker, type, serial, length.
	HeaderSize = 13

	// TrailerSize is the number of bytes after the payload: checksum
	// marker plus CRC-16.
	TrailerSize = 3

	// MinMessageSize is the size of a message with an empty payload.
	MinMessageSize = HeaderSize + TrailerSize
)

// preamble is the fixed five-zero-byte prefix on every frame
var preamble = [5]byte{0x00, 0x00, 0x00, 0x00, 0x00}

// Message is one Simarine Pico protocol message. Serial is the device's
// 32-bit system serial number; clients send 0 and the device fills in its
// own on responses. A Message is immutable once handed to Encode or
// returned by Decode.
type Message struct {
	Type   MessageType
	Serial uint32
	Fields []Field
}

// String returns a debug representation of the message
func (m *Message) String() string {
	return fmt.Sprintf("Message{type=%s, serial=0x%08X, fields=%d}", m.Type, m.Serial, len(m.Fields))
}

// FieldsByID returns every field carrying the given id, in wire order.
// Ids are not unique within a message, so this can return more than one.
func (m *Message) FieldsByID(id uint8) []Field {
	var out []Field
	for _, f := range m.Fields {
		if f.ID == id {
			out = append(out, f)
		}
	}
	return out
}

// FieldByID returns the first field carrying the given id
func (m *Message) FieldByID(id uint8) (Field, bool) {
	for _, f := range m.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// Encode serializes the message:
//
//	preamble | FF | type | serial | length | payload | FF | crc16
//
// where length = len(payload) + 3 and the CRC covers everything before the
// two checksum bytes.
func (m *Message) Encode() []byte {
	payload := EncodeFields(m.Fields)

	buf := make([]byte, 0, HeaderSize+len(payload)+TrailerSize)
	buf = append(buf, preamble[:]...)
	buf = append(buf, Marker, byte(m.Type))
	buf = binary.BigEndian.AppendUint32(buf, m.Serial)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(payload)+TrailerSize))
	buf = append(buf, payload...)

	crc := Checksum(buf)
	buf = append(buf, Marker)
	buf = binary.BigEndian.AppendUint16(buf, crc)

	return buf
}

// Decode validates and parses one complete message. Fields are decoded
// leniently: an unknown field type folds the payload tail into a single
// Unknown field rather than failing.
func Decode(data []byte) (*Message, error) {
	return decode(data, false)
}

// DecodeStrict is Decode with strict field parsing: an unknown field type
// fails with ErrUnknownFieldType.
func DecodeStrict(data []byte) (*Message, error) {
	return decode(data, true)
}

func decode(data []byte, strict bool) (*Message, error) {
	if len(data) < MinMessageSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrLength, len(data), MinMessageSize)
	}

	if [5]byte(data[0:5]) != preamble {
		return nil, fmt.Errorf("%w: % X", ErrPreamble, data[0:5])
	}
	if data[5] != Marker {
		return nil, fmt.Errorf("%w: 0x%02X at offset 5", ErrHeaderMarker, data[5])
	}

	msgType := MessageType(data[6])
	serial := binary.BigEndian.Uint32(data[7:11])
	length := int(binary.BigEndian.Uint16(data[11:13]))

	if got := len(data) - HeaderSize; got != length {
		if got < length {
			return nil, fmt.Errorf("%w: header says %d payload bytes, short read of %d", ErrLength, length, got)
		}
		return nil, fmt.Errorf("%w: header says %d payload bytes, got %d trailing", ErrLength, length, got)
	}

	if data[len(data)-TrailerSize] != Marker {
		return nil, fmt.Errorf("%w: 0x%02X at offset %d", ErrChecksumMarker, data[len(data)-TrailerSize], len(data)-TrailerSize)
	}

	want := binary.BigEndian.Uint16(data[len(data)-2:])
	if got := Checksum(data[:len(data)-2]); got != want {
		return nil, fmt.Errorf("%w: computed 0x%04X, frame carries 0x%04X", ErrChecksum, got, want)
	}

	fields, err := decodeFields(data[HeaderSize:len(data)-TrailerSize], strict)
	if err != nil {
		return nil, err
	}

	return &Message{Type: msgType, Serial: serial, Fields: fields}, nil
}
