package eeprom

import (
	"bytes"
	"encoding/binary"
	"io"
	"time"

	"github.com/onewiretools/go-ds2432/protocol"
)

// mockLink is a scripted Transport: writes are recorded, reads pop from a
// prepared byte queue, and each call site can inject errors.
type mockLink struct {
	writes [][]byte
	queue  bytes.Buffer
	slept  []time.Duration

	resetErr error
	writeErr error
	readErr  error

	resets int
}

func newMockLink() *mockLink {
	return &mockLink{}
}

func (m *mockLink) ResetSelect() error {
	if m.resetErr != nil {
		return m.resetErr
	}
	m.resets++
	return nil
}

func (m *mockLink) Write(p []byte) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	buf := make([]byte, len(p))
	copy(buf, p)
	m.writes = append(m.writes, buf)
	return nil
}

func (m *mockLink) Read(p []byte) error {
	if m.readErr != nil {
		return m.readErr
	}
	if m.queue.Len() < len(p) {
		return io.ErrUnexpectedEOF
	}
	_, err := io.ReadFull(&m.queue, p)
	return err
}

func (m *mockLink) Sleep(d time.Duration) {
	m.slept = append(m.slept, d)
}

func (m *mockLink) queueBytes(p ...byte) {
	m.queue.Write(p)
}

// queueInvertedCRC appends the complemented CRC16 over the segments, the way
// the chip answers scratchpad transactions.
func (m *mockLink) queueInvertedCRC(segments ...[]byte) {
	crc := uint16(protocol.CRC16Seed)
	for _, s := range segments {
		crc = protocol.CRC16(crc, s)
	}
	var reply [2]byte
	binary.LittleEndian.PutUint16(reply[:], ^crc)
	m.queue.Write(reply[:])
}

// scriptBlockWrite queues the replies for one full writeBlock sequence at the
// given address: the 32-byte page read, the write-scratchpad CRC echo, the
// read-scratchpad reply, and finally the copy disposition byte.
func (m *mockLink) scriptBlockWrite(address uint16, data [8]byte, page [32]byte, es byte, disposition byte) {
	m.scriptBlockStage(address, data, page, es, address, data)
	m.queueBytes(disposition)
}

// scriptBlockStage queues everything up to (not including) the disposition
// byte, letting tests vary the echoed address and data independently.
func (m *mockLink) scriptBlockStage(address uint16, data [8]byte, page [32]byte, es byte, echoAddress uint16, echoData [8]byte) {
	// Page read preceding the stage.
	m.queue.Write(page[:])

	// Write Scratchpad CRC echo over the frame the driver sends.
	frame := append([]byte{protocol.CmdWriteScratchpad, byte(address), byte(address >> 8)}, data[:]...)
	m.queueInvertedCRC(frame)

	// Read Scratchpad reply: status triple, data, CRC.
	status := []byte{byte(echoAddress), byte(echoAddress >> 8), es}
	m.queue.Write(status)
	m.queue.Write(echoData[:])
	m.queueInvertedCRC([]byte{protocol.CmdReadScratchpad}, status, echoData[:])
}

// mockLogger collects log messages for assertions.
type mockLogger struct {
	debugMsgs []string
	infoMsgs  []string
	errorMsgs []string
}

func (l *mockLogger) Debug(msg string, kv ...interface{}) {
	l.debugMsgs = append(l.debugMsgs, msg)
}

func (l *mockLogger) Info(msg string, kv ...interface{}) {
	l.infoMsgs = append(l.infoMsgs, msg)
}

func (l *mockLogger) Error(msg string, kv ...interface{}) {
	l.errorMsgs = append(l.errorMsgs, msg)
}
