package eeprom

import (
	"fmt"
	"sync"

	"github.com/onewiretools/go-ds2432/protocol"
)

// Device drives one DS2432/DS1961S chip over a Transport. It owns the
// host-side shadow of the write-only secret and the bus mutex discipline:
// every exported operation holds the bus mutex for its full duration, so a
// multi-step transaction never has another device's bytes interleaved into it.
//
// Device is safe for concurrent use.
type Device struct {
	link   Transport
	config Config

	// mu is the bus-wide exclusion lock, held across whole top-level
	// operations rather than individual commands.
	mu *sync.Mutex

	// secretMu guards the shadow so that a secret swap never races an
	// in-flight MAC computation.
	secretMu sync.RWMutex
	secret   [protocol.SecretSize]byte

	serial [8]byte
}

// New creates a Device for the chip with the given registration number.
// The serial's first byte is expected to be the 0xB3 family code; the chip
// never discloses its secret, so the shadow starts all-zero until SetSecret
// or InstallSecret is called.
//
// Example:
//
//	link, _ := onewire.Open(masterID, rom)
//	dev := eeprom.New(link, rom.Bytes(),
//	    eeprom.WithLogger(logger),
//	)
func New(link Transport, serial [8]byte, opts ...Option) *Device {
	if link == nil {
		panic("link cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	mu := cfg.BusMutex
	if mu == nil {
		mu = new(sync.Mutex)
	}

	return &Device{
		link:   link,
		config: cfg,
		mu:     mu,
		serial: serial,
	}
}

// Serial returns the registration number the device was created with.
func (d *Device) Serial() [8]byte {
	return d.serial
}

// Secret returns the host-side shadow of the secret. The chip's installed
// secret cannot be read back; this is the only copy the host has.
func (d *Device) Secret() [protocol.SecretSize]byte {
	d.secretMu.RLock()
	defer d.secretMu.RUnlock()
	return d.secret
}

// SetSecret replaces the host-side shadow without any device I/O. Use
// SyncSecret to transfer the shadow into the chip, or SetSecret alone when
// the chip already holds this value.
func (d *Device) SetSecret(secret [protocol.SecretSize]byte) {
	d.secretMu.Lock()
	d.secret = secret
	d.secretMu.Unlock()
}

// Read reads from the 128-byte data memory region starting at off. Requests
// reaching past the end of the region are clamped; a fully out-of-range
// offset reads zero bytes. Returns the number of bytes read.
func (d *Device) Read(off int, p []byte) (int, error) {
	n := clampCount(off, len(p), protocol.DataMemorySize)
	if n == 0 {
		return 0, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.readMemory(uint16(off), p[:n]); err != nil {
		return 0, err
	}
	return n, nil
}

// Write writes to the data memory region starting at off, clamped to the
// region like Read. The write decomposes into successive 8-byte aligned
// authenticated block writes; unaligned head and tail blocks are
// read-modified so any offset and length work. The first failing block
// aborts the rest. The returned count is the number of caller bytes durably
// committed: blocks before the failure are verified on the chip, blocks from
// the failure onward were never committed.
func (d *Device) Write(off int, p []byte) (int, error) {
	n := clampCount(off, len(p), protocol.DataMemorySize)
	if n == 0 {
		return 0, nil
	}
	p = p[:n]

	d.mu.Lock()
	defer d.mu.Unlock()

	start := off / protocol.BlockSize * protocol.BlockSize
	end := (off + n + protocol.BlockSize - 1) / protocol.BlockSize * protocol.BlockSize
	total := (end - start) / protocol.BlockSize

	committed := 0
	blocks := 0
	for addr := start; addr < end; addr += protocol.BlockSize {
		var block [protocol.BlockSize]byte

		// Caller bytes covered by this block.
		lo := max(off, addr)
		hi := min(off+n, addr+protocol.BlockSize)

		if lo != addr || hi != addr+protocol.BlockSize {
			// Partial block: merge with the current contents.
			if err := d.readMemory(uint16(addr), block[:]); err != nil {
				return committed, err
			}
		}
		copy(block[lo-addr:], p[lo-off:hi-off])

		if err := d.writeBlock(uint16(addr), block); err != nil {
			d.logError("block write failed", "address", fmt.Sprintf("0x%04X", addr), "err", err)
			return committed, err
		}

		committed += hi - lo
		blocks++
		d.reportProgress(Progress{
			BlocksDone:     blocks,
			TotalBlocks:    total,
			BytesCommitted: committed,
		})
	}

	return committed, nil
}

// WriteBlock performs one authenticated 8-byte block write. The address must
// be 8-byte aligned and inside data memory or the register page. Most
// callers want Write; WriteBlock is the unit the chip actually commits.
func (d *Device) WriteBlock(address uint16, data [protocol.BlockSize]byte) error {
	if address%protocol.BlockSize != 0 {
		return fmt.Errorf("address 0x%04X is not aligned to %d bytes", address, protocol.BlockSize)
	}
	if int(address) >= protocol.DataMemorySize &&
		(address < protocol.RegisterPageAddr || int(address) >= protocol.RegisterPageAddr+protocol.RegisterPageSize) {
		return fmt.Errorf("address 0x%04X is outside the writable regions", address)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeBlock(address, data)
}

// SyncSecret transfers the current host-side shadow into the chip's secret
// register via the scratchpad and Load First Secret. After it returns, MAC
// computations with the shadow match the chip again.
func (d *Device) SyncSecret() error {
	secret := d.Secret()

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.installSecret(secret)
}

// InstallSecret installs a new secret on the chip and, on success, updates
// the host-side shadow to match. The shadow is untouched when the install
// fails, so an interrupted install never leaves the host computing MACs with
// a secret the chip does not hold.
func (d *Device) InstallSecret(secret [protocol.SecretSize]byte) error {
	d.mu.Lock()
	err := d.installSecret(secret)
	d.mu.Unlock()
	if err != nil {
		return err
	}

	d.SetSecret(secret)
	return nil
}

// ReadAuthPage reads a full 32-byte page together with the MAC the chip
// computes over it. The address must be page aligned. The chip-side MAC is
// returned for the caller to verify; its input message differs from the copy
// authorization message.
func (d *Device) ReadAuthPage(address uint16) ([protocol.PageSize]byte, protocol.MAC, error) {
	var page [protocol.PageSize]byte
	var mac protocol.MAC

	if address%protocol.PageSize != 0 || int(address) >= protocol.DataMemorySize {
		return page, mac, fmt.Errorf("address 0x%04X is not a data memory page start", address)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	const op = "read authenticated page"
	if err := d.link.ResetSelect(); err != nil {
		return page, mac, &LinkError{Op: op, Err: err}
	}

	cmd := protocol.BuildReadAuthPageCmd(address)
	if err := d.link.Write(cmd); err != nil {
		return page, mac, &LinkError{Op: op, Err: err}
	}

	var tail [1]byte
	var crc [2]byte
	if err := d.readAll(op, page[:], tail[:], crc[:]); err != nil {
		return page, mac, err
	}
	if d.config.ValidateCRC {
		if err := protocol.VerifyInvertedCRC16(op, crc, cmd, page[:], tail[:]); err != nil {
			return page, mac, err
		}
	}

	// The chip computes its MAC after the data phase.
	d.link.Sleep(protocol.ComputeDelay)

	var wire [protocol.MacSize]byte
	var macCRC [2]byte
	var status [1]byte
	if err := d.readAll(op, wire[:], macCRC[:], status[:]); err != nil {
		return page, mac, err
	}
	if d.config.ValidateCRC {
		if err := protocol.VerifyInvertedCRC16(op, macCRC, wire[:]); err != nil {
			return page, mac, err
		}
	}
	if err := protocol.CheckCompletion(op, status[0]); err != nil {
		return page, mac, err
	}

	return page, protocol.ParseMAC(wire), nil
}

//
// Command transactions. Callers hold the bus mutex.
//

// readMemory runs a Read Memory command into buf starting at address.
func (d *Device) readMemory(address uint16, buf []byte) error {
	const op = "read memory"
	if err := d.link.ResetSelect(); err != nil {
		return &LinkError{Op: op, Err: err}
	}
	if err := d.link.Write(protocol.BuildReadMemoryCmd(address)); err != nil {
		return &LinkError{Op: op, Err: err}
	}
	if err := d.link.Read(buf); err != nil {
		return &LinkError{Op: op, Err: err}
	}
	return nil
}

// writeScratchpad stages one block and validates the chip's CRC echo.
func (d *Device) writeScratchpad(address uint16, data [protocol.ScratchpadSize]byte) error {
	const op = "write scratchpad"
	if err := d.link.ResetSelect(); err != nil {
		return &LinkError{Op: op, Err: err}
	}

	frame, err := protocol.BuildWriteScratchpadCmd(address, data[:])
	if err != nil {
		return err
	}
	if err := d.link.Write(frame); err != nil {
		return &LinkError{Op: op, Err: err}
	}

	var crc [2]byte
	if err := d.link.Read(crc[:]); err != nil {
		return &LinkError{Op: op, Err: err}
	}
	if d.config.ValidateCRC {
		if err := protocol.VerifyInvertedCRC16(op, crc, frame); err != nil {
			d.logError("write scratchpad checksum mismatch", "err", err)
			return err
		}
	}
	return nil
}

// readScratchpad reads back the staged address, ES byte and data.
func (d *Device) readScratchpad() (address uint16, es byte, data [protocol.ScratchpadSize]byte, err error) {
	const op = "read scratchpad"
	if err := d.link.ResetSelect(); err != nil {
		return 0, 0, data, &LinkError{Op: op, Err: err}
	}

	cmd := protocol.BuildReadScratchpadCmd()
	if err := d.link.Write(cmd); err != nil {
		return 0, 0, data, &LinkError{Op: op, Err: err}
	}

	var status [3]byte
	var crc [2]byte
	if err := d.readAll(op, status[:], data[:], crc[:]); err != nil {
		return 0, 0, data, err
	}

	address, es = protocol.ParseScratchpadStatus(status)

	if d.config.ValidateCRC {
		if err := protocol.VerifyInvertedCRC16(op, crc, cmd, status[:], data[:]); err != nil {
			d.logError("read scratchpad checksum mismatch", "err", err)
			return 0, 0, data, err
		}
	}
	return address, es, data, nil
}

// loadFirstSecret transfers the staged scratchpad into the secret register.
func (d *Device) loadFirstSecret(address uint16, es byte) error {
	const op = "load first secret"
	if err := d.link.ResetSelect(); err != nil {
		return &LinkError{Op: op, Err: err}
	}
	if err := d.link.Write(protocol.BuildLoadFirstSecretCmd(address, es)); err != nil {
		return &LinkError{Op: op, Err: err}
	}

	// The internal transfer takes up to 10ms; the bus supply must not sag
	// below 2.8V during this window.
	d.link.Sleep(protocol.ProgramDelay)

	var status [1]byte
	if err := d.link.Read(status[:]); err != nil {
		return &LinkError{Op: op, Err: err}
	}
	return protocol.CheckCompletion(op, status[0])
}

// copyScratchpad transmits the authorization MAC and commits the scratchpad.
func (d *Device) copyScratchpad(address uint16, es byte, mac protocol.MAC) error {
	const op = "copy scratchpad"
	if err := d.link.ResetSelect(); err != nil {
		return &LinkError{Op: op, Err: err}
	}
	if err := d.link.Write(protocol.BuildCopyScratchpadCmd(address, es)); err != nil {
		return &LinkError{Op: op, Err: err}
	}

	// Give the chip time to compute its own MAC over the staged scratchpad.
	d.link.Sleep(protocol.ComputeDelay)

	wire := mac.Serialize()
	if err := d.link.Write(wire[:]); err != nil {
		return &LinkError{Op: op, Err: err}
	}

	// MAC comparison plus EEPROM programming on match.
	d.link.Sleep(protocol.ProgramDelay)

	var status [1]byte
	if err := d.link.Read(status[:]); err != nil {
		return &LinkError{Op: op, Err: err}
	}
	return protocol.CheckDisposition(op, status[0])
}

// writeBlock runs the full authenticated write sequence for one 8-byte block:
// read the current page (its first 28 bytes feed the MAC), stage the data,
// read it back and verify address, ES flag and content, compute the MAC, and
// commit.
func (d *Device) writeBlock(address uint16, data [protocol.BlockSize]byte) error {
	var page [protocol.PageSize]byte
	if err := d.readMemory(address/protocol.PageSize*protocol.PageSize, page[:]); err != nil {
		return err
	}

	if err := d.writeScratchpad(address, data); err != nil {
		return err
	}

	spAddress, es, scratch, err := d.readScratchpad()
	if err != nil {
		return err
	}
	if spAddress != address {
		return &AddressMismatchError{Got: spAddress, Want: address}
	}
	if es&protocol.ESPartialByteFlag != 0 {
		return &PartialByteError{ES: es}
	}
	if scratch != data {
		return &DataMismatchError{Got: scratch, Want: data}
	}

	var pageData [28]byte
	copy(pageData[:], page[:28])

	mac := protocol.GenerateMAC(d.Secret(), scratch, address, pageData, d.serial)

	d.logDebug("committing block", "address", fmt.Sprintf("0x%04X", address), "es", fmt.Sprintf("0x%02X", es))
	return d.copyScratchpad(spAddress, es, mac)
}

// installSecret stages the candidate secret at the secret register address
// and issues Load First Secret with the authorization pattern read back from
// the scratchpad.
func (d *Device) installSecret(secret [protocol.SecretSize]byte) error {
	if err := d.writeScratchpad(protocol.SecretAddr, secret); err != nil {
		return err
	}

	address, es, _, err := d.readScratchpad()
	if err != nil {
		return err
	}
	if address != protocol.SecretAddr {
		return &AddressMismatchError{Got: address, Want: protocol.SecretAddr}
	}
	if es&protocol.ESPartialByteFlag != 0 {
		return &PartialByteError{ES: es}
	}

	return d.loadFirstSecret(address, es)
}

// readAll fills each buffer in turn from the link.
func (d *Device) readAll(op string, bufs ...[]byte) error {
	for _, buf := range bufs {
		if err := d.link.Read(buf); err != nil {
			return &LinkError{Op: op, Err: err}
		}
	}
	return nil
}

// clampCount bounds a region access the way the original sysfs attributes
// did: offsets past the end read or write nothing, and counts are cut to the
// region size.
func clampCount(off, count, size int) int {
	if off < 0 || off >= size {
		return 0
	}
	if off+count > size {
		return size - off
	}
	return count
}

// reportProgress calls the progress callback if configured.
func (d *Device) reportProgress(progress Progress) {
	if d.config.ProgressCallback != nil {
		d.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (d *Device) logDebug(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (d *Device) logError(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Error(msg, keysAndValues...)
	}
}
