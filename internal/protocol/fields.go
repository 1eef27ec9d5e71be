package protocol

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// Marker is the 0xFF sentinel separating protocol regions: header start,
// checksum start, field start, and sub-structures inside variable fields.
const Marker byte = 0xFF

// textEnd terminates the data of a TimestampedText field.
const textEnd byte = 0x00

// RawInt is the 4-byte big-endian integer payload shared by Int and
// TimestampedInt fields. The wire tags neither signedness nor width, so
// every view stays available and the caller picks the right one per field.
type RawInt [4]byte

// RawIntFromInt32 packs a signed 32-bit value
func RawIntFromInt32(v int32) RawInt {
	return RawIntFromUint32(uint32(v))
}

// RawIntFromUint32 packs an unsigned 32-bit value
func RawIntFromUint32(v uint32) RawInt {
	var r RawInt
	binary.BigEndian.PutUint32(r[:], v)
	return r
}

// RawIntFromUint16Pair packs two 16-bit halves
func RawIntFromUint16Pair(hi, lo uint16) RawInt {
	var r RawInt
	binary.BigEndian.PutUint16(r[0:2], hi)
	binary.BigEndian.PutUint16(r[2:4], lo)
	return r
}

func (r RawInt) Int32() int32    { return int32(binary.BigEndian.Uint32(r[:])) }
func (r RawInt) Uint32() uint32  { return binary.BigEndian.Uint32(r[:]) }
func (r RawInt) Int16Hi() int16  { return int16(binary.BigEndian.Uint16(r[0:2])) }
func (r RawInt) Int16Lo() int16  { return int16(binary.BigEndian.Uint16(r[2:4])) }
func (r RawInt) Uint16Hi() uint16 { return binary.BigEndian.Uint16(r[0:2]) }
func (r RawInt) Uint16Lo() uint16 { return binary.BigEndian.Uint16(r[2:4]) }

// Sample is one timeseries entry, carried on the wire as a 0xFF marker
// followed by two big-endian 16-bit halves.
type Sample struct {
	Hi uint16
	Lo uint16
}

// Value is the decoded data of a field. Exactly one of the variant types
// below implements it.
type Value interface {
	isValue()
}

// IntValue is the data of a FieldInt field: 4 raw bytes.
type IntValue struct {
	Raw RawInt
}

// TimestampedIntValue is the data of a FieldTimestampedInt field: a Unix
// timestamp plus 4 raw bytes.
type TimestampedIntValue struct {
	Timestamp uint32
	Raw       RawInt
}

// TextValue is the data of a FieldTimestampedText field: a Unix timestamp
// plus a UTF-8 string (wire null terminator excluded).
type TextValue struct {
	Timestamp uint32
	Text      string
}

// TimeseriesValue is the data of a FieldTimeseries field: a start and end
// Unix timestamp and the samples between them, ordered newest to oldest.
type TimeseriesValue struct {
	Start   uint32
	End     uint32
	Samples []Sample
}

// UnknownValue preserves the data of a field whose type code has no known
// wire encoding. Because unknown types are not self-delimiting, Raw holds
// everything from the end of the field header to the end of the payload.
type UnknownValue struct {
	Raw []byte
}

func (IntValue) isValue()            {}
func (TimestampedIntValue) isValue() {}
func (TextValue) isValue()           {}
func (TimeseriesValue) isValue()     {}
func (UnknownValue) isValue()        {}

// Field is one {marker, id, type, data} unit inside a message payload.
// Ids need not be unique within a message; wire order is preserved.
type Field struct {
	ID    uint8
	Type  FieldType
	Value Value
}

// NewIntField builds a FieldInt field
func NewIntField(id uint8, raw RawInt) Field {
	return Field{ID: id, Type: FieldInt, Value: IntValue{Raw: raw}}
}

// NewTimestampedIntField builds a FieldTimestampedInt field
func NewTimestampedIntField(id uint8, ts uint32, raw RawInt) Field {
	return Field{ID: id, Type: FieldTimestampedInt, Value: TimestampedIntValue{Timestamp: ts, Raw: raw}}
}

// NewTextField builds a FieldTimestampedText field
func NewTextField(id uint8, ts uint32, text string) Field {
	return Field{ID: id, Type: FieldTimestampedText, Value: TextValue{Timestamp: ts, Text: text}}
}

// NewTimeseriesField builds a FieldTimeseries field
func NewTimeseriesField(id uint8, start, end uint32, samples []Sample) Field {
	return Field{ID: id, Type: FieldTimeseries, Value: TimeseriesValue{Start: start, End: end, Samples: samples}}
}

// IntView returns the 4 raw integer bytes of an Int or TimestampedInt
// field. ok is false for other variants.
func (f Field) IntView() (RawInt, bool) {
	switch v := f.Value.(type) {
	case IntValue:
		return v.Raw, true
	case TimestampedIntValue:
		return v.Raw, true
	}
	return RawInt{}, false
}

// Timestamp returns the Unix timestamp of a timestamped field. For
// Timeseries fields this is the start timestamp.
func (f Field) Timestamp() (uint32, bool) {
	switch v := f.Value.(type) {
	case TimestampedIntValue:
		return v.Timestamp, true
	case TextValue:
		return v.Timestamp, true
	case TimeseriesValue:
		return v.Start, true
	}
	return 0, false
}

// Text returns the string data of a TimestampedText field
func (f Field) Text() (string, bool) {
	if v, ok := f.Value.(TextValue); ok {
		return v.Text, true
	}
	return "", false
}

// Series returns the data of a Timeseries field
func (f Field) Series() (TimeseriesValue, bool) {
	if v, ok := f.Value.(TimeseriesValue); ok {
		return v, true
	}
	return TimeseriesValue{}, false
}

// String returns a debug representation of the field
func (f Field) String() string {
	switch v := f.Value.(type) {
	case IntValue:
		return fmt.Sprintf("Field{id=%d, type=%s, raw=0x%08X}", f.ID, f.Type, v.Raw.Uint32())
	case TimestampedIntValue:
		return fmt.Sprintf("Field{id=%d, type=%s, ts=%d, raw=0x%08X}", f.ID, f.Type, v.Timestamp, v.Raw.Uint32())
	case TextValue:
		return fmt.Sprintf("Field{id=%d, type=%s, ts=%d, text=%q}", f.ID, f.Type, v.Timestamp, v.Text)
	case TimeseriesValue:
		return fmt.Sprintf("Field{id=%d, type=%s, start=%d, end=%d, samples=%d}", f.ID, f.Type, v.Start, v.End, len(v.Samples))
	case UnknownValue:
		return fmt.Sprintf("Field{id=%d, type=%s, raw=%d bytes}", f.ID, f.Type, len(v.Raw))
	default:
		return fmt.Sprintf("Field{id=%d, type=%s}", f.ID, f.Type)
	}
}

// DecodeFields parses a payload into its fields. When a field of unknown
// type is hit, the remaining bytes are returned as a single Unknown field:
// unknown types have no length prefix, so nothing after them can be
// decoded reliably.
func DecodeFields(data []byte) ([]Field, error) {
	return decodeFields(data, false)
}

// DecodeFieldsStrict parses a payload into its fields, failing with
// ErrUnknownFieldType instead of preserving an undecodable tail.
func DecodeFieldsStrict(data []byte) ([]Field, error) {
	return decodeFields(data, true)
}

func decodeFields(data []byte, strict bool) ([]Field, error) {
	var fields []Field

	off := 0
	for off < len(data) {
		if data[off] != Marker {
			return nil, fmt.Errorf("%w: expected 0xFF at offset %d, got 0x%02X", ErrFieldMarker, off, data[off])
		}
		if len(data)-off < 3 {
			return nil, fmt.Errorf("%w: field header at offset %d", ErrFieldTruncated, off)
		}

		id := data[off+1]
		ftype := FieldType(data[off+2])
		body := data[off+3:]

		var (
			value    Value
			consumed int
			err      error
		)
		switch ftype {
		case FieldInt:
			value, consumed, err = decodeInt(body, off+3)
		case FieldTimestampedInt:
			value, consumed, err = decodeTimestampedInt(body, off+3)
		case FieldTimestampedText:
			value, consumed, err = decodeText(body, off+3)
		case FieldTimeseries:
			value, consumed, err = decodeTimeseries(body, off+3)
		default:
			if strict {
				return nil, fmt.Errorf("%w: 0x%02X at offset %d", ErrUnknownFieldType, uint8(ftype), off)
			}
			raw := make([]byte, len(body))
			copy(raw, body)
			return append(fields, Field{ID: id, Type: ftype, Value: UnknownValue{Raw: raw}}), nil
		}
		if err != nil {
			return nil, err
		}

		fields = append(fields, Field{ID: id, Type: ftype, Value: value})
		off += 3 + consumed
	}

	return fields, nil
}

func decodeInt(body []byte, base int) (Value, int, error) {
	if len(body) < 4 {
		return nil, 0, fmt.Errorf("%w: int data at offset %d", ErrFieldTruncated, base)
	}
	return IntValue{Raw: RawInt(body[0:4])}, 4, nil
}

func decodeTimestampedInt(body []byte, base int) (Value, int, error) {
	if len(body) < 9 {
		return nil, 0, fmt.Errorf("%w: timestamped int data at offset %d", ErrFieldTruncated, base)
	}
	if body[4] != Marker {
		return nil, 0, fmt.Errorf("%w: expected 0xFF at offset %d, got 0x%02X", ErrFieldMarker, base+4, body[4])
	}
	return TimestampedIntValue{
		Timestamp: binary.BigEndian.Uint32(body[0:4]),
		Raw:       RawInt(body[5:9]),
	}, 9, nil
}

func decodeText(body []byte, base int) (Value, int, error) {
	if len(body) < 5 {
		return nil, 0, fmt.Errorf("%w: text data at offset %d", ErrFieldTruncated, base)
	}
	if body[4] != Marker {
		return nil, 0, fmt.Errorf("%w: expected 0xFF at offset %d, got 0x%02X", ErrFieldMarker, base+4, body[4])
	}

	end := -1
	for i := 5; i < len(body); i++ {
		if body[i] == textEnd {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, 0, fmt.Errorf("%w: unterminated text at offset %d", ErrFieldTruncated, base)
	}

	text := body[5:end]
	if !utf8.Valid(text) {
		return nil, 0, fmt.Errorf("%w: at offset %d", ErrFieldText, base+5)
	}

	return TextValue{
		Timestamp: binary.BigEndian.Uint32(body[0:4]),
		Text:      string(text),
	}, end + 1, nil
}

func decodeTimeseries(body []byte, base int) (Value, int, error) {
	// ts1(4) FF ts2(4) FF count(1) count*(FF hi lo) FF
	if len(body) < 11 {
		return nil, 0, fmt.Errorf("%w: timeseries header at offset %d", ErrFieldTruncated, base)
	}
	if body[4] != Marker {
		return nil, 0, fmt.Errorf("%w: expected 0xFF at offset %d, got 0x%02X", ErrFieldMarker, base+4, body[4])
	}
	if body[9] != Marker {
		return nil, 0, fmt.Errorf("%w: expected 0xFF at offset %d, got 0x%02X", ErrFieldMarker, base+9, body[9])
	}

	count := int(body[10])
	total := 11 + count*5 + 1
	if len(body) < total {
		return nil, 0, fmt.Errorf("%w: timeseries needs %d bytes at offset %d, have %d", ErrFieldTruncated, total, base, len(body))
	}

	samples := make([]Sample, 0, count)
	for i := 0; i < count; i++ {
		block := body[11+i*5:]
		if block[0] != Marker {
			return nil, 0, fmt.Errorf("%w: expected 0xFF at offset %d, got 0x%02X", ErrFieldMarker, base+11+i*5, block[0])
		}
		samples = append(samples, Sample{
			Hi: binary.BigEndian.Uint16(block[1:3]),
			Lo: binary.BigEndian.Uint16(block[3:5]),
		})
	}

	if body[total-1] != Marker {
		return nil, 0, fmt.Errorf("%w: expected terminating 0xFF at offset %d, got 0x%02X", ErrFieldMarker, base+total-1, body[total-1])
	}

	return TimeseriesValue{
		Start:   binary.BigEndian.Uint32(body[0:4]),
		End:     binary.BigEndian.Uint32(body[5:9]),
		Samples: samples,
	}, total, nil
}

// EncodeFields serializes fields in order, producing the payload portion
// of a message. It is the exact inverse of DecodeFields.
func EncodeFields(fields []Field) []byte {
	var buf []byte
	for _, f := range fields {
		buf = f.appendTo(buf)
	}
	return buf
}

func (f Field) appendTo(dst []byte) []byte {
	dst = append(dst, Marker, f.ID, byte(f.Type))

	switch v := f.Value.(type) {
	case IntValue:
		dst = append(dst, v.Raw[:]...)
	case TimestampedIntValue:
		dst = binary.BigEndian.AppendUint32(dst, v.Timestamp)
		dst = append(dst, Marker)
		dst = append(dst, v.Raw[:]...)
	case TextValue:
		dst = binary.BigEndian.AppendUint32(dst, v.Timestamp)
		dst = append(dst, Marker)
		dst = append(dst, v.Text...)
		dst = append(dst, textEnd)
	case TimeseriesValue:
		dst = binary.BigEndian.AppendUint32(dst, v.Start)
		dst = append(dst, Marker)
		dst = binary.BigEndian.AppendUint32(dst, v.End)
		dst = append(dst, Marker)
		dst = append(dst, byte(len(v.Samples)))
		for _, s := range v.Samples {
			dst = append(dst, Marker)
			dst = binary.BigEndian.AppendUint16(dst, s.Hi)
			dst = binary.BigEndian.AppendUint16(dst, s.Lo)
		}
		dst = append(dst, Marker)
	case UnknownValue:
		dst = append(dst, v.Raw...)
	}

	return dst
}
