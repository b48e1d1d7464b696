package onewire

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Address is the 64-bit registration number of a 1-Wire device, packed the
// way the Linux w1 bus packs it: CRC in the top byte, the 48-bit serial in
// the middle, family code in the low byte.
type Address uint64

// NewAddress builds an Address from a family code and a 48-bit serial,
// computing the CRC byte.
func NewAddress(family byte, id uint64) Address {
	a := Address(id&0xFFFFFFFFFFFF)<<8 | Address(family)
	rom := a.Bytes()
	return a | Address(CRC8(rom[:7]))<<56
}

// Family returns the device family code (0xB3 for the DS2432).
func (a Address) Family() byte {
	return byte(a)
}

// ID returns the 48-bit serial number.
func (a Address) ID() uint64 {
	return uint64(a) >> 8 & 0xFFFFFFFFFFFF
}

// CRC returns the CRC byte covering family and serial.
func (a Address) CRC() byte {
	return byte(a >> 56)
}

// Valid reports whether the CRC byte matches the family and serial.
func (a Address) Valid() bool {
	rom := a.Bytes()
	return CRC8(rom[:7]) == a.CRC()
}

// Bytes returns the registration number in ROM wire order: family code first,
// serial least significant byte first, CRC last. This is the order the Match
// ROM sequence transmits and the order the chip's MAC engine consumes.
func (a Address) Bytes() [8]byte {
	var rom [8]byte
	rom[0] = a.Family()
	id := a.ID()
	for i := 0; i < 6; i++ {
		rom[1+i] = byte(id >> (8 * i))
	}
	rom[7] = a.CRC()
	return rom
}

// String formats the address the way the Linux w1 sysfs tree names device
// directories: "b3-0000153d8a6f".
func (a Address) String() string {
	return fmt.Sprintf("%02x-%012x", a.Family(), a.ID())
}

// ParseAddress parses the sysfs directory form "family-serial", for example
// "b3-0000153d8a6f". The CRC byte is computed, not taken from the input.
func ParseAddress(s string) (Address, error) {
	familyStr, idStr, ok := strings.Cut(s, "-")
	if !ok {
		return 0, fmt.Errorf("onewire: address %q is not in family-serial form", s)
	}
	family, err := strconv.ParseUint(familyStr, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("onewire: bad family code in %q: %w", s, err)
	}
	id, err := strconv.ParseUint(idStr, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("onewire: bad serial in %q: %w", s, err)
	}
	if id > 0xFFFFFFFFFFFF {
		return 0, fmt.Errorf("onewire: serial in %q exceeds 48 bits", s)
	}
	return NewAddress(byte(family), id), nil
}

// AddressFromBytes builds an Address from a ROM code in wire order, verifying
// its CRC byte.
func AddressFromBytes(rom [8]byte) (Address, error) {
	if CRC8(rom[:7]) != rom[7] {
		return 0, errors.New("onewire: registration number fails its CRC")
	}
	id := uint64(0)
	for i := 5; i >= 0; i-- {
		id = id<<8 | uint64(rom[1+i])
	}
	return Address(rom[7])<<56 | Address(id)<<8 | Address(rom[0]), nil
}

// CRC8 computes the Dallas/Maxim CRC-8 (polynomial 0x8C, reflected) used to
// seal registration numbers.
func CRC8(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x01 != 0 {
				crc = crc>>1 ^ 0x8C
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}
