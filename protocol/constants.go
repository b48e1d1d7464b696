package protocol

import "time"

// FamilyCode is the 1-Wire family code of the DS2432 (and DS1961S), and the
// first byte of every registration number.
const FamilyCode = 0xB3

// Command codes per the DS2432 datasheet.
const (
	// CmdReadMemory reads data memory or the register page starting at a
	// target address
	CmdReadMemory = 0xF0

	// CmdWriteScratchpad stages 8 bytes and a target address in the scratchpad
	CmdWriteScratchpad = 0x0F

	// CmdReadScratchpad reads back the target address, ES byte and staged data
	CmdReadScratchpad = 0xAA

	// CmdCopyScratchpad commits the scratchpad to EEPROM after MAC authorization
	CmdCopyScratchpad = 0x55

	// CmdLoadFirstSecret transfers the scratchpad into the secret register
	CmdLoadFirstSecret = 0x5A

	// CmdReadAuthPage reads a full page together with a chip-computed MAC
	CmdReadAuthPage = 0xA5
)

// Memory map (byte offsets on the chip).
const (
	// PageSize is the size of one data memory page
	PageSize = 32

	// PageCount is the number of data memory pages
	PageCount = 4

	// DataMemorySize is the total data memory size (4 pages x 32 bytes)
	DataMemorySize = PageSize * PageCount

	// BlockSize is the write granularity: every committed write covers one
	// 8-byte aligned block
	BlockSize = 8

	// ScratchpadSize is the size of the scratchpad staging buffer
	ScratchpadSize = 8

	// SecretAddr is the target address of the write-only secret register
	SecretAddr = 0x0080

	// SecretSize is the size of the secret
	SecretSize = 8

	// RegisterPageAddr is the start of the register/configuration page
	RegisterPageAddr = 0x0088

	// RegisterPageSize is the size of the register/configuration page
	RegisterPageSize = 16
)

// Register page field offsets, relative to RegisterPageAddr.
// Protection and mode fields activate on code 0xAA or 0x55.
const (
	// RegWriteProtectSecret write-protects the secret register
	RegWriteProtectSecret = 0

	// RegWriteProtectPages write-protects data pages 0 to 3
	RegWriteProtectPages = 1

	// RegUserByte is a self-protecting user byte
	RegUserByte = 2

	// RegFactoryByte is the factory byte (read only, reads 0xAA or 0x55)
	RegFactoryByte = 3

	// RegEPROMModePage1 is the user byte / EPROM mode control for page 1
	RegEPROMModePage1 = 4

	// RegWriteProtectPage0 is the user byte / write-protect for page 0 only
	RegWriteProtectPage0 = 5

	// RegManufacturerID is the 2-byte user bytes / manufacturer ID field
	RegManufacturerID = 6

	// RegRegistrationNumber is the 8-byte alternate registration number readout
	RegRegistrationNumber = 8
)

// Status byte patterns. After an internal operation the chip transmits
// alternating ones and zeros (0xAA or 0x55) until the next reset pulse.
const (
	// DispositionSuccess is the primary success pattern
	DispositionSuccess = 0xAA

	// DispositionSuccessAlt is the alternate success pattern (phase-shifted read)
	DispositionSuccessAlt = 0x55

	// DispositionAuthFailed means the chip computed a different MAC
	DispositionAuthFailed = 0x00

	// DispositionWriteProtected means the MAC matched but the target is locked
	DispositionWriteProtected = 0xFF
)

// ESPartialByteFlag is bit 5 (PF) of the ES byte; set when the chip saw a
// partial byte during scratchpad write.
const ESPartialByteFlag = 1 << 5

// MacSize is the wire size of the serialized MAC.
const MacSize = 20

// Chip-internal operation timing per the datasheet. During ProgramDelay the
// bus supply must not fall below 2.8V; that is the transport's contract.
const (
	// ComputeDelay is the time the chip needs to compute its own MAC (tCSHA)
	ComputeDelay = 2 * time.Millisecond

	// ProgramDelay is the time for an internal EEPROM or secret transfer cycle
	ProgramDelay = 10 * time.Millisecond
)

// IsActivationCode reports whether a register page field holds the 0xAA/0x55
// sentinel that activates a protection or mode flag.
func IsActivationCode(b byte) bool {
	return b == 0xAA || b == 0x55
}
