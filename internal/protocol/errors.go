package protocol

import "errors"

// Framing errors, raised by Decode in validation order.
var (
	// ErrPreamble indicates the five-zero-byte preamble is missing
	ErrPreamble = errors.New("invalid preamble")
	// ErrHeaderMarker indicates byte 5 is not the 0xFF header marker
	ErrHeaderMarker = errors.New("invalid header marker")
	// ErrLength indicates the length field disagrees with the input size
	ErrLength = errors.New("length mismatch")
	// ErrChecksumMarker indicates the 0xFF checksum marker is missing
	ErrChecksumMarker = errors.New("invalid checksum marker")
	// ErrChecksum indicates the CRC-16 does not match the trailing bytes
	ErrChecksum = errors.New("checksum mismatch")
)

// Field errors, raised while walking a payload.
var (
	// ErrFieldMarker indicates a field does not begin with 0xFF
	ErrFieldMarker = errors.New("invalid field marker")
	// ErrFieldText indicates a text field is not valid UTF-8
	ErrFieldText = errors.New("invalid text encoding")
	// ErrFieldTruncated indicates a field runs off the end of the payload
	ErrFieldTruncated = errors.New("truncated field")
	// ErrUnknownFieldType indicates an unknown field type in strict mode
	ErrUnknownFieldType = errors.New("unknown field type")
)

// ErrUnexpectedType indicates a response message type does not match the
// request that solicited it.
var ErrUnexpectedType = errors.New("unexpected message type")
