package protocol

import "encoding/binary"

// CRC16 parameters used by the chip's scratchpad framing: the reflected
// CRC-16 polynomial 0x8005 processed LSB first.
const (
	// CRC16Polynomial is the reflected form of polynomial 0x8005
	CRC16Polynomial = 0xA001

	// CRC16Seed is the initial CRC value
	CRC16Seed = 0
)

// CRC16 updates a running CRC16 with data. Pass CRC16Seed for the first
// segment and the previous result for subsequent segments.
func CRC16(seed uint16, data []byte) uint16 {
	crc := seed
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ CRC16Polynomial
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}

// VerifyInvertedCRC16 validates the 2-byte CRC reply the chip transmits after
// scratchpad transactions. The reply is the bitwise complement of the CRC16
// over the given segments, little-endian on the wire. A mismatch is reported
// as a CRCError.
func VerifyInvertedCRC16(op string, reply [2]byte, segments ...[]byte) error {
	crc := uint16(CRC16Seed)
	for _, s := range segments {
		crc = CRC16(crc, s)
	}

	received := ^binary.LittleEndian.Uint16(reply[:])
	if received != crc {
		return &CRCError{Op: op, Received: received, Computed: crc}
	}
	return nil
}
