package eeprom

import (
	"fmt"

	"github.com/onewiretools/go-ds2432/protocol"
)

// RegisterPage reads the whole 16-byte register/configuration page.
func (d *Device) RegisterPage() ([protocol.RegisterPageSize]byte, error) {
	var page [protocol.RegisterPageSize]byte

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.readMemory(protocol.RegisterPageAddr, page[:]); err != nil {
		return page, err
	}
	return page, nil
}

// WriteProtectSecret reports whether the secret register is write-protected.
func (d *Device) WriteProtectSecret() (bool, error) {
	return d.readProtectionFlag(protocol.RegWriteProtectSecret)
}

// SetWriteProtectSecret permanently write-protects the secret register.
// Irreversible on real hardware.
func (d *Device) SetWriteProtectSecret() error {
	return d.writeRegisterByte(protocol.RegWriteProtectSecret, protocol.DispositionSuccess)
}

// WriteProtectPages reports whether data pages 0 to 3 are write-protected.
func (d *Device) WriteProtectPages() (bool, error) {
	return d.readProtectionFlag(protocol.RegWriteProtectPages)
}

// SetWriteProtectPages permanently write-protects data pages 0 to 3.
// Irreversible on real hardware.
func (d *Device) SetWriteProtectPages() error {
	return d.writeRegisterByte(protocol.RegWriteProtectPages, protocol.DispositionSuccess)
}

// UserByte reads the self-protecting user byte.
func (d *Device) UserByte() (byte, error) {
	return d.readRegisterByte(protocol.RegUserByte)
}

// SetUserByte writes the user byte. Writing an activation code locks the
// byte against further writes.
func (d *Device) SetUserByte(b byte) error {
	return d.writeRegisterByte(protocol.RegUserByte, b)
}

// FactoryByte reads the factory byte. Read only; the chip reports either
// 0xAA or 0x55.
func (d *Device) FactoryByte() (byte, error) {
	return d.readRegisterByte(protocol.RegFactoryByte)
}

// EPROMModePage1 reports whether EPROM emulation mode is active for page 1.
func (d *Device) EPROMModePage1() (bool, error) {
	return d.readProtectionFlag(protocol.RegEPROMModePage1)
}

// SetEPROMModePage1 activates EPROM emulation mode for page 1 (bits can then
// only be cleared, never set). Irreversible on real hardware.
func (d *Device) SetEPROMModePage1() error {
	return d.writeRegisterByte(protocol.RegEPROMModePage1, protocol.DispositionSuccess)
}

// WriteProtectPage0 reports whether data page 0 alone is write-protected.
func (d *Device) WriteProtectPage0() (bool, error) {
	return d.readProtectionFlag(protocol.RegWriteProtectPage0)
}

// SetWriteProtectPage0 permanently write-protects data page 0 only.
// Irreversible on real hardware.
func (d *Device) SetWriteProtectPage0() error {
	return d.writeRegisterByte(protocol.RegWriteProtectPage0, protocol.DispositionSuccess)
}

// ManufacturerID reads the 2-byte user bytes / manufacturer ID field. Its
// meaning depends on the factory byte.
func (d *Device) ManufacturerID() ([2]byte, error) {
	var id [2]byte

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.readMemory(protocol.RegisterPageAddr+protocol.RegManufacturerID, id[:]); err != nil {
		return id, err
	}
	return id, nil
}

// RegistrationNumber reads the 8-byte alternate registration number from the
// register page. On a healthy chip it matches the ROM code used to address
// the device.
func (d *Device) RegistrationNumber() ([8]byte, error) {
	var rn [8]byte

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.readMemory(protocol.RegisterPageAddr+protocol.RegRegistrationNumber, rn[:]); err != nil {
		return rn, err
	}
	return rn, nil
}

// readProtectionFlag reads one register byte and decodes the 0xAA/0x55
// activation sentinel.
func (d *Device) readProtectionFlag(offset int) (bool, error) {
	b, err := d.readRegisterByte(offset)
	if err != nil {
		return false, err
	}
	return protocol.IsActivationCode(b), nil
}

// readRegisterByte reads a single register page byte.
func (d *Device) readRegisterByte(offset int) (byte, error) {
	var buf [1]byte

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.readMemory(uint16(protocol.RegisterPageAddr+offset), buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// writeRegisterByte updates one register page byte through the authenticated
// write path: the containing 8-byte block is read, patched and committed via
// the scratchpad with a MAC, like any other protected write.
func (d *Device) writeRegisterByte(offset int, value byte) error {
	if offset < 0 || offset >= protocol.BlockSize {
		return fmt.Errorf("register offset %d is outside the writable register block", offset)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	const address = protocol.RegisterPageAddr // block-aligned start of the register page
	var block [protocol.BlockSize]byte
	if err := d.readMemory(address, block[:]); err != nil {
		return err
	}
	block[offset] = value

	return d.writeBlock(address, block)
}
