package eeprom

import "time"

// Transport is the byte-oriented 1-Wire link the driver runs on. The driver
// owns all command framing; the transport owns electrical correctness and
// device addressing.
//
// The link is half-duplex with one outstanding transaction at a time and is
// shared by every device on the bus. The driver serializes access through its
// bus mutex; implementations do not need their own locking for calls made
// through a single Device.
type Transport interface {
	// ResetSelect issues a reset pulse and addresses the device so that the
	// next command byte reaches it. Returns an error when no presence pulse
	// is seen or the bus is unreachable.
	ResetSelect() error

	// Write transmits the buffer on the bus.
	Write(p []byte) error

	// Read fills the buffer with bytes clocked in from the bus.
	Read(p []byte) error

	// Sleep blocks for at least d while the chip runs an internal operation.
	// The bus supply must stay above the chip's programming minimum for the
	// whole duration.
	Sleep(d time.Duration)
}
