package protocol

import "fmt"

// BuildWriteScratchpadCmd constructs a Write Scratchpad command frame.
// The data must be exactly ScratchpadSize bytes and the address must point
// at the start of an 8-byte block.
//
// Frame structure:
//
//	[CMD][TA1][TA2][DATA(8)]
//
// The chip answers the frame with an inverted CRC16 computed over the whole
// frame; validate it with VerifyInvertedCRC16.
func BuildWriteScratchpadCmd(address uint16, data []byte) ([]byte, error) {
	if len(data) != ScratchpadSize {
		return nil, fmt.Errorf("scratchpad data must be exactly %d bytes, got %d", ScratchpadSize, len(data))
	}

	frame := make([]byte, 0, 3+ScratchpadSize)
	frame = append(frame, CmdWriteScratchpad, byte(address), byte(address>>8))
	frame = append(frame, data...)
	return frame, nil
}

// BuildReadScratchpadCmd constructs a Read Scratchpad command frame.
// The chip answers with [TA1][TA2][ES][DATA(8)] followed by an inverted CRC16
// over the command byte and the full reply.
func BuildReadScratchpadCmd() []byte {
	return []byte{CmdReadScratchpad}
}

// BuildCopyScratchpadCmd constructs a Copy Scratchpad command frame.
// The address and ES byte must match what Read Scratchpad returned; they act
// as the authorization pattern for the commit.
//
// Frame structure:
//
//	[CMD][TA1][TA2][ES]
func BuildCopyScratchpadCmd(address uint16, es byte) []byte {
	return []byte{CmdCopyScratchpad, byte(address), byte(address >> 8), es}
}

// BuildLoadFirstSecretCmd constructs a Load First Secret command frame.
// The address and ES byte are the authorization pattern from Read Scratchpad;
// the address must be the secret register address.
//
// Frame structure:
//
//	[CMD][TA1][TA2][ES]
func BuildLoadFirstSecretCmd(address uint16, es byte) []byte {
	return []byte{CmdLoadFirstSecret, byte(address), byte(address >> 8), es}
}

// BuildReadMemoryCmd constructs a Read Memory command frame.
// Reading starts at the target address and continues for as many bytes as the
// master clocks out.
//
// Frame structure:
//
//	[CMD][TA1][TA2]
func BuildReadMemoryCmd(address uint16) []byte {
	return []byte{CmdReadMemory, byte(address), byte(address >> 8)}
}

// BuildReadAuthPageCmd constructs a Read Authenticated Page command frame.
// The chip answers with the page data to the end of the addressed page, a
// 0xFF byte, an inverted CRC16, and (after its MAC computation time) a
// 20-byte MAC with its own inverted CRC16.
//
// Frame structure:
//
//	[CMD][TA1][TA2]
func BuildReadAuthPageCmd(address uint16) []byte {
	return []byte{CmdReadAuthPage, byte(address), byte(address >> 8)}
}
