package protocol

// CRC parameters recovered from capture analysis. The polynomial is the
// CCITT 0x1189 variant without reflection and without a final xor, which
// matches no common named CRC-16 exactly.
const (
	crcPoly uint16 = 0x1189
	crcInit uint16 = 0x0000
)

// Checksum computes the Simarine CRC-16 over data.
//
// Bit-by-bit form, no lookup table: message sizes are small (the largest
// observed frame, a 72 hour pressure history broadcast, is ~1.1 KiB) so
// table generation would not pay for itself.
func Checksum(data []byte) uint16 {
	crc := crcInit
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ crcPoly
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
