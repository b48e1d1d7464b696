package eeprom

import (
	"bytes"
	"encoding/binary"
	"io"
	"time"

	"github.com/onewiretools/go-ds2432/protocol"
)

// simChip is a Transport that behaves like the chip itself: it keeps memory,
// scratchpad and secret state, verifies copy authorization MACs with the real
// MAC engine and honors the write protection flags in its register page.
// End-to-end tests drive a Device against it without scripting byte queues.
type simChip struct {
	// mem covers data memory, the secret window (reads as 0xFF) and the
	// register page.
	mem    [0xA0]byte
	secret [8]byte
	serial [8]byte

	scratch [8]byte
	ta      uint16
	es      byte

	out      bytes.Buffer
	awaitMAC bool

	// copyCount numbers MAC checks; when failCopyAt matches, the check is
	// forced to fail regardless of the MAC.
	copyCount  int
	failCopyAt int
}

func newSimChip(serial [8]byte) *simChip {
	c := &simChip{serial: serial}
	for i := protocol.SecretAddr; i < protocol.SecretAddr+protocol.SecretSize; i++ {
		c.mem[i] = 0xFF // the secret never reads back
	}
	c.mem[protocol.RegisterPageAddr+protocol.RegFactoryByte] = 0xAA
	copy(c.mem[protocol.RegisterPageAddr+protocol.RegRegistrationNumber:], serial[:])
	for i := protocol.RegisterPageAddr + protocol.RegisterPageSize; i < len(c.mem); i++ {
		c.mem[i] = 0xFF
	}
	return c
}

func (c *simChip) ResetSelect() error {
	c.out.Reset()
	c.awaitMAC = false
	return nil
}

func (c *simChip) Sleep(time.Duration) {}

func (c *simChip) Read(p []byte) error {
	if c.out.Len() < len(p) {
		return io.ErrUnexpectedEOF
	}
	_, err := io.ReadFull(&c.out, p)
	return err
}

func (c *simChip) Write(p []byte) error {
	if c.awaitMAC {
		c.awaitMAC = false
		c.checkMAC(p)
		return nil
	}

	switch p[0] {
	case protocol.CmdWriteScratchpad:
		c.ta = binary.LittleEndian.Uint16(p[1:3])
		copy(c.scratch[:], p[3:11])
		c.es = 0x07
		c.replyCRC(p)

	case protocol.CmdReadScratchpad:
		status := []byte{byte(c.ta), byte(c.ta >> 8), c.es}
		c.out.Write(status)
		c.out.Write(c.scratch[:])
		c.replyCRC(p, status, c.scratch[:])

	case protocol.CmdReadMemory:
		addr := binary.LittleEndian.Uint16(p[1:3])
		c.out.Write(c.mem[addr:])

	case protocol.CmdCopyScratchpad:
		addr := binary.LittleEndian.Uint16(p[1:3])
		if addr != c.ta || p[3] != c.es {
			c.out.WriteByte(protocol.DispositionAuthFailed)
			return nil
		}
		c.awaitMAC = true

	case protocol.CmdLoadFirstSecret:
		addr := binary.LittleEndian.Uint16(p[1:3])
		if addr != protocol.SecretAddr || addr != c.ta || p[3] != c.es {
			c.out.WriteByte(protocol.DispositionAuthFailed)
			return nil
		}
		if protocol.IsActivationCode(c.mem[protocol.RegisterPageAddr+protocol.RegWriteProtectSecret]) {
			c.out.WriteByte(protocol.DispositionWriteProtected)
			return nil
		}
		c.secret = c.scratch
		c.out.WriteByte(protocol.DispositionSuccess)

	case protocol.CmdReadAuthPage:
		addr := binary.LittleEndian.Uint16(p[1:3])
		page := c.mem[addr : addr+protocol.PageSize]
		c.out.Write(page)
		c.out.WriteByte(0xFF)
		c.replyCRC(p, page, []byte{0xFF})

		mac := c.pageMAC(addr).Serialize()
		c.out.Write(mac[:])
		c.replyCRC(mac[:])
		c.out.WriteByte(protocol.DispositionSuccess)
	}
	return nil
}

// checkMAC compares the host MAC against the chip's own computation and, on
// match, commits the scratchpad.
func (c *simChip) checkMAC(wire []byte) {
	c.copyCount++

	want := c.pageMAC(c.ta).Serialize()
	if !bytes.Equal(wire, want[:]) || c.copyCount == c.failCopyAt {
		c.out.WriteByte(protocol.DispositionAuthFailed)
		return
	}
	if c.targetProtected(c.ta) {
		c.out.WriteByte(protocol.DispositionWriteProtected)
		return
	}

	copy(c.mem[c.ta:], c.scratch[:])
	c.out.WriteByte(protocol.DispositionSuccess)
}

func (c *simChip) pageMAC(address uint16) protocol.MAC {
	var pageData [28]byte
	page := address / protocol.PageSize * protocol.PageSize
	copy(pageData[:], c.mem[page:page+28])
	return protocol.GenerateMAC(c.secret, c.scratch, address, pageData, c.serial)
}

func (c *simChip) targetProtected(address uint16) bool {
	regs := c.mem[protocol.RegisterPageAddr:]
	if int(address) < protocol.DataMemorySize && protocol.IsActivationCode(regs[protocol.RegWriteProtectPages]) {
		return true
	}
	if int(address) < protocol.PageSize && protocol.IsActivationCode(regs[protocol.RegWriteProtectPage0]) {
		return true
	}
	return false
}

func (c *simChip) replyCRC(segments ...[]byte) {
	crc := uint16(protocol.CRC16Seed)
	for _, s := range segments {
		crc = protocol.CRC16(crc, s)
	}
	var reply [2]byte
	binary.LittleEndian.PutUint16(reply[:], ^crc)
	c.out.Write(reply[:])
}
