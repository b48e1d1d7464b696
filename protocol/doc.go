// Package protocol implements the wire-level command set of the DS2432 /
// DS1961S secure 1-Wire EEPROM.
//
// This package is pure: it builds command frames, computes and validates the
// CRC16 framing the chip appends to scratchpad transactions, classifies
// status bytes, and implements the MAC engine. It performs no I/O; the eeprom
// package sequences these pieces over a Transport.
//
// # Command Framing
//
// Every command starts with a command byte, usually followed by a 2-byte
// target address transmitted low byte first:
//
//	Write Scratchpad: [0x0F][TA1][TA2][DATA(8)]       -> inverted CRC16
//	Read Scratchpad:  [0xAA]                          -> [TA1][TA2][ES][DATA(8)] + inverted CRC16
//	Copy Scratchpad:  [0x55][TA1][TA2][ES]            -> (2ms) <- 20-byte MAC -> (10ms) -> status
//	Load First Secret:[0x5A][TA1][TA2][ES]            -> (10ms) -> status
//	Read Memory:      [0xF0][TA1][TA2]                -> data
//
// Use the Build* functions to create the frames and VerifyInvertedCRC16 to
// validate the chip's complemented CRC replies.
//
// # MAC Engine
//
// Writes into data memory and the register page only commit after the host
// proves knowledge of the 8-byte device secret. GenerateMAC assembles the
// 64-byte authentication message (secret halves, current page data, staged
// scratchpad, page address bits, registration number, fixed padding) and runs
// the chip's truncated SHA-1 variant over it:
//
//	mac := protocol.GenerateMAC(secret, scratchpad, address, pageData, serial)
//	wire := mac.Serialize() // word order e,d,c,b,a, little-endian words
//
// The transform deliberately omits the final FIPS-180 step of adding the
// initial state back into the working variables. It is not a general-purpose
// hash and must not be replaced with crypto/sha1.
//
// # Status Classification
//
// CheckDisposition maps the post-commit status byte to typed errors so that
// callers can tell a wrong secret (AuthError) from a locked region
// (WriteProtectError) from wire trouble (DispositionError):
//
//	if err := protocol.CheckDisposition("copy scratchpad", status); err != nil {
//	    if protocol.IsAuthRejected(err) { ... }
//	}
package protocol
