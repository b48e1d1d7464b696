package eeprom

import (
	"errors"
	"fmt"

	"github.com/onewiretools/go-ds2432/protocol"
)

// LinkError indicates that reset-and-select or raw bus I/O failed: the bus or
// the device is unreachable. Surfaced immediately, never retried by the
// driver.
type LinkError struct {
	// Op is the operation that failed
	Op string

	// Err is the underlying transport error
	Err error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("%s: link failure: %v", e.Op, e.Err)
}

func (e *LinkError) Unwrap() error {
	return e.Err
}

// AddressMismatchError indicates the scratchpad readback returned a different
// target address than was staged.
type AddressMismatchError struct {
	Got  uint16
	Want uint16
}

func (e *AddressMismatchError) Error() string {
	return fmt.Sprintf("unexpected scratchpad address: 0x%04X (expected 0x%04X)", e.Got, e.Want)
}

// PartialByteError indicates the ES partial byte flag was set after staging:
// the chip saw an incomplete byte on the wire.
type PartialByteError struct {
	ES byte
}

func (e *PartialByteError) Error() string {
	return fmt.Sprintf("ES partial byte flag is set (ES=0x%02X)", e.ES)
}

// DataMismatchError indicates the scratchpad readback differs from the data
// that was staged: the write did not land as sent.
type DataMismatchError struct {
	Got  [8]byte
	Want [8]byte
}

func (e *DataMismatchError) Error() string {
	return fmt.Sprintf("scratchpad data does not match: got %X, want %X", e.Got, e.Want)
}

// IsLinkError returns true if the error is a bus or device reachability
// failure.
func IsLinkError(err error) bool {
	var le *LinkError
	return errors.As(err, &le)
}

// IsIntegrityError returns true for protocol-integrity failures: CRC
// mismatch, address echo mismatch, partial byte flag, or a scratchpad
// readback that differs from the staged data. These indicate wire corruption
// or a malformed response; the caller may retry the whole operation.
func IsIntegrityError(err error) bool {
	var (
		ae *AddressMismatchError
		pe *PartialByteError
		de *DataMismatchError
	)
	return protocol.IsCRCError(err) || errors.As(err, &ae) || errors.As(err, &pe) || errors.As(err, &de)
}
