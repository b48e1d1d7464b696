package protocol

import (
	"errors"
	"fmt"
)

// AuthError indicates the chip computed a different MAC than the host: the
// secret is wrong or the authentication message drifted. Permanent for the
// given secret; retrying does not help.
type AuthError struct {
	// Op is the command that failed
	Op string

	// Code is the disposition byte from the chip
	Code byte
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s failed: mac rejected by device (code 0x%02X)", e.Op, e.Code)
}

// WriteProtectError indicates the MAC was accepted but the target region is
// protection-locked. Permanent; retrying does not help.
type WriteProtectError struct {
	// Op is the command that failed
	Op string

	// Code is the disposition byte from the chip
	Code byte
}

func (e *WriteProtectError) Error() string {
	return fmt.Sprintf("%s failed: target region is write protected (code 0x%02X)", e.Op, e.Code)
}

// DispositionError indicates a status byte outside the defined success and
// failure codes. Treated as an I/O-class anomaly: the scratchpad state is
// unconfirmed and the whole block write may be retried from the top.
type DispositionError struct {
	// Op is the command that failed
	Op string

	// Code is the disposition byte from the chip
	Code byte
}

func (e *DispositionError) Error() string {
	return fmt.Sprintf("%s failed: unknown disposition code 0x%02X", e.Op, e.Code)
}

// CRCError indicates the chip's inverted CRC16 reply did not match the CRC
// computed over the transaction. Wire corruption or a misbehaving device.
type CRCError struct {
	// Op is the transaction that failed
	Op string

	// Received is the complemented CRC value from the chip
	Received uint16

	// Computed is the CRC the host computed
	Computed uint16
}

func (e *CRCError) Error() string {
	return fmt.Sprintf("%s: invalid checksum: received 0x%04X but expected 0x%04X", e.Op, e.Received, e.Computed)
}

// IsAuthRejected returns true if the error is an authentication rejection.
func IsAuthRejected(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsWriteProtected returns true if the error is a write-protection rejection.
func IsWriteProtected(err error) bool {
	var we *WriteProtectError
	return errors.As(err, &we)
}

// IsUnknownDisposition returns true if the error is an unclassified
// disposition code.
func IsUnknownDisposition(err error) bool {
	var de *DispositionError
	return errors.As(err, &de)
}

// IsCRCError returns true if the error is a CRC validation failure.
func IsCRCError(err error) bool {
	var ce *CRCError
	return errors.As(err, &ce)
}
