package eeprom

import "sync"

// Config holds the device configuration.
type Config struct {
	// Logger is used for logging operations (optional)
	Logger Logger

	// ProgressCallback is called after each committed block during
	// multi-block writes (optional)
	ProgressCallback ProgressCallback

	// ValidateCRC enables validation of the chip's inverted CRC16 replies
	// after scratchpad transactions. On by default; turning it off trades
	// corruption detection for a little bus time.
	ValidateCRC bool

	// BusMutex serializes bus access. Leave nil for a device-private mutex;
	// set a shared mutex when several devices hang off one bus.
	BusMutex *sync.Mutex
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		ValidateCRC: true,
	}
}

// Option is a functional option for configuring the Device.
type Option func(*Config)

// WithLogger sets a logger for device operations.
//
// Example:
//
//	dev := eeprom.New(link, serial, eeprom.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithProgressCallback sets a callback to track multi-block write progress.
//
// Example:
//
//	dev := eeprom.New(link, serial,
//	    eeprom.WithProgressCallback(func(p eeprom.Progress) {
//	        fmt.Printf("%d/%d blocks\n", p.BlocksDone, p.TotalBlocks)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithCRCValidation enables or disables CRC16 validation of scratchpad
// replies. Default is true.
//
// Example:
//
//	dev := eeprom.New(link, serial, eeprom.WithCRCValidation(false))
func WithCRCValidation(validate bool) Option {
	return func(c *Config) {
		c.ValidateCRC = validate
	}
}

// WithBusMutex shares a bus mutex between devices on the same 1-Wire bus.
// Every top-level operation holds the mutex for its full duration, so
// multi-step transactions of different devices never interleave.
//
// Example:
//
//	var bus sync.Mutex
//	a := eeprom.New(link, serialA, eeprom.WithBusMutex(&bus))
//	b := eeprom.New(link, serialB, eeprom.WithBusMutex(&bus))
func WithBusMutex(mu *sync.Mutex) Option {
	return func(c *Config) {
		c.BusMutex = mu
	}
}
