package protocol

import (
	"encoding/binary"
	"math/bits"
)

// MAC is the 160-bit message authentication code the chip requires before it
// commits a scratchpad write into protected EEPROM. The five words are the
// working variables of the transform after round 80, in register order.
type MAC struct {
	A, B, C, D, E uint32
}

// SHA-1 initial state and round constants.
const (
	macInitA = 0x67452301
	macInitB = 0xEFCDAB89
	macInitC = 0x98BADCFE
	macInitD = 0x10325476
	macInitE = 0xC3D2E1F0

	macK1 = 0x5A827999 // rounds  0-19
	macK2 = 0x6ED9EBA1 // rounds 20-39
	macK3 = 0x8F1BBCDC // rounds 40-59
	macK4 = 0xCA62C1D6 // rounds 60-79
)

// GenerateMAC computes the MAC authorizing a Copy Scratchpad at the given
// target address. The inputs are the host's copy of the secret, the 8 bytes
// staged in the scratchpad, the first 28 bytes of the addressed memory page
// as currently stored on the chip, and the device registration number.
//
// Pure function: same inputs always yield the same MAC.
func GenerateMAC(secret [SecretSize]byte, scratchpad [ScratchpadSize]byte, address uint16, page [28]byte, serial [8]byte) MAC {
	msg := authMessage(secret, scratchpad, address, page, serial)
	return shaTransform(&msg)
}

// authMessage assembles the 64-byte input block of the transform. The byte
// offsets are a binary contract with the chip; any drift produces a MAC the
// chip rejects.
func authMessage(secret [SecretSize]byte, scratchpad [ScratchpadSize]byte, address uint16, page [28]byte, serial [8]byte) [64]byte {
	var m [64]byte

	// First half of the secret.
	copy(m[0:4], secret[0:4])

	// The 28 bytes of the addressed memory page that precede the pending
	// scratchpad overlay.
	copy(m[4:32], page[:])

	// Scratchpad content.
	copy(m[32:40], scratchpad[:])

	// Page number byte. Bits 7:4 are zero for Copy Scratchpad; bits 3:0 carry
	// the upper part of the page address. The shift by 5 is what the chip
	// actually computes against; do not "correct" it to the datasheet's T8:T5
	// mapping.
	m[40] = byte((address & 0xF0) >> 5)

	// Registration number; its first byte is the family code.
	copy(m[41:48], serial[0:7])

	// Second half of the secret.
	copy(m[48:52], secret[4:8])

	// Fixed tail from the datasheet: three 0xFF fill bytes, then single-block
	// SHA-1 padding for a 440-bit message (0x80 marker, zero fill, big-endian
	// bit length 0x01B8).
	copy(m[52:64], []byte{0xFF, 0xFF, 0xFF, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0xB8})

	return m
}

// shaTransform runs one block of the SHA-1 compression function over the
// message, seeded with the fixed initial state.
//
// This is the chip's variant of SHA-1, not the FIPS-180 function: the final
// step of adding the working variables back into the initial state is
// omitted. The registers after round 80 are the MAC. Routing this through a
// general-purpose SHA-1 implementation would produce values the chip rejects.
func shaTransform(block *[64]byte) MAC {
	var w [80]uint32
	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint32(block[i*4:])
	}
	for i := 0; i < 64; i++ {
		w[i+16] = bits.RotateLeft32(w[i+13]^w[i+8]^w[i+2]^w[i], 1)
	}

	a := uint32(macInitA)
	b := uint32(macInitB)
	c := uint32(macInitC)
	d := uint32(macInitD)
	e := uint32(macInitE)

	for i := 0; i < 80; i++ {
		var f, k uint32
		switch {
		case i < 20:
			f = d ^ (b & (c ^ d)) // b ? c : d
			k = macK1
		case i < 40:
			f = b ^ c ^ d
			k = macK2
		case i < 60:
			f = (b & c) + (d & (b ^ c)) // majority
			k = macK3
		default:
			f = b ^ c ^ d
			k = macK4
		}

		t := f + k + bits.RotateLeft32(a, 5) + e + w[i]
		e = d
		d = c
		c = bits.RotateLeft32(b, 30)
		b = a
		a = t
	}

	return MAC{A: a, B: b, C: c, D: d, E: e}
}

// Serialize encodes the MAC in the order the chip consumes it during Copy
// Scratchpad: words E,D,C,B,A, each little-endian.
func (m MAC) Serialize() [MacSize]byte {
	var out [MacSize]byte
	binary.LittleEndian.PutUint32(out[0:], m.E)
	binary.LittleEndian.PutUint32(out[4:], m.D)
	binary.LittleEndian.PutUint32(out[8:], m.C)
	binary.LittleEndian.PutUint32(out[12:], m.B)
	binary.LittleEndian.PutUint32(out[16:], m.A)
	return out
}

// ParseMAC decodes a 20-byte wire MAC, the inverse of Serialize. Used for the
// chip-computed MAC returned by Read Authenticated Page.
func ParseMAC(wire [MacSize]byte) MAC {
	return MAC{
		E: binary.LittleEndian.Uint32(wire[0:]),
		D: binary.LittleEndian.Uint32(wire[4:]),
		C: binary.LittleEndian.Uint32(wire[8:]),
		B: binary.LittleEndian.Uint32(wire[12:]),
		A: binary.LittleEndian.Uint32(wire[16:]),
	}
}
