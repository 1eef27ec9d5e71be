// Package protocol implements the Simarine Pico binary message protocol.
//
// This package handles parsing, validation, and construction of the binary
// messages spoken by Simarine Pico battery/tank monitors over TCP (control,
// port 5001) and UDP (broadcast, port 43210). The protocol was reverse
// engineered from packet captures; unknown message and field types are
// carried through opaquely so newer firmware keeps decoding.
//
// # Message Envelope
//
// Every message, request or response, uses the same envelope (all integers
// big-endian):
//
//	off 0..4    : 00 00 00 00 00   preamble
//	off 5       : FF               header marker
//	off 6       : message type
//	off 7..10   : serial number (uint32, 0 on client requests)
//	off 11..12  : length (uint16)  = payload length + 3
//	off 13..    : payload (sequence of fields, may be empty)
//	off N-3     : FF               checksum marker
//	off N-2..N-1: CRC-16
//
// The CRC-16 uses polynomial 0x11189, init 0, no reflection, no final xor,
// and covers every byte up to but not including the two checksum bytes.
//
// # Fields
//
// The payload is a sequence of fields, each starting with an FF marker
// followed by a one-byte id and a one-byte type code. The length of a field
// is implied by its type; there is no length prefix. Known types are
// 4-byte integers, timestamped integers, null-terminated timestamped text,
// and timeseries blocks. Because unknown types cannot be skipped, the
// lenient decoder folds the undecodable tail into a single Unknown field
// while the strict decoder fails with ErrUnknownFieldType.
//
// # Usage
//
//	msg := &protocol.Message{Type: protocol.TypeSystemInfo}
//	wire := msg.Encode()
//	// ... exchange wire bytes with the device ...
//	reply, err := protocol.Decode(response)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range reply.Fields {
//	    fmt.Println(f.String())
//	}
//
// All encoding and decoding functions are stateless and safe for concurrent
// use.
package protocol
