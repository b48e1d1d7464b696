package protocol

// ParseScratchpadStatus extracts the target address and ES byte from the
// 3-byte status prefix of a Read Scratchpad reply.
//
// Status format:
//
//	[TA1][TA2][ES]
//
// TA1 is the low address byte, TA2 the high byte.
func ParseScratchpadStatus(status [3]byte) (address uint16, es byte) {
	address = uint16(status[1])<<8 | uint16(status[0])
	es = status[2]
	return address, es
}

// CheckDisposition classifies the status byte read after Copy Scratchpad.
// Returns nil on success, an AuthError when the chip computed a different
// MAC, a WriteProtectError when the MAC matched a protected region, and a
// DispositionError for anything else. Callers need the three-way split
// because the recovery actions differ: none, none, retry.
func CheckDisposition(op string, code byte) error {
	switch code {
	case DispositionSuccess, DispositionSuccessAlt:
		return nil
	case DispositionAuthFailed:
		return &AuthError{Op: op, Code: code}
	case DispositionWriteProtected:
		return &WriteProtectError{Op: op, Code: code}
	default:
		return &DispositionError{Op: op, Code: code}
	}
}

// CheckCompletion classifies the status byte read after an internal operation
// that has no MAC semantics (Load First Secret, Read Authenticated Page).
// Only the alternating success patterns are accepted; anything else is a
// commit failure.
func CheckCompletion(op string, code byte) error {
	if code == DispositionSuccess || code == DispositionSuccessAlt {
		return nil
	}
	return &DispositionError{Op: op, Code: code}
}
