package eeprom

// Progress describes how far a multi-block write has advanced. Reported once
// after every committed block.
type Progress struct {
	// BlocksDone is the number of blocks committed so far
	BlocksDone int

	// TotalBlocks is the number of blocks the write decomposes into
	TotalBlocks int

	// BytesCommitted is the number of caller bytes durably written so far
	BytesCommitted int
}

// ProgressCallback is called after each committed block during a multi-block
// write. Implementations should return quickly; the bus mutex is held while
// the callback runs.
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the device.
// This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	dev := eeprom.New(link, serial, eeprom.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
