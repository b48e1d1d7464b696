// Package eeprom provides a high-level driver for the DS2432 / DS1961S
// secure 1-Wire EEPROM.
//
// # Overview
//
// The chip holds 128 bytes of page-organized data memory, a write-only
// 8-byte secret and a 16-byte register page. Reads are plain; every write
// commits through a staged scratchpad and only after the host transmits a
// MAC proving knowledge of the secret. This package sequences the full
// authenticated write protocol:
//
//   - read the current page contents (they feed the MAC)
//   - stage 8 bytes in the scratchpad and verify the CRC-checked readback
//   - compute the MAC over secret, page, scratchpad, address and serial
//   - commit with Copy Scratchpad and classify the chip's answer
//
// # Basic Usage
//
//	// User provides the 1-Wire link (see the onewire package for Linux).
//	link, err := onewire.Open(masterID, rom)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	dev := eeprom.New(link, rom.Bytes())
//	dev.SetSecret(secret) // the secret already installed on the chip
//
//	n, err := dev.Write(0x00, data)
//	if err != nil {
//	    log.Printf("only %d bytes committed: %v", n, err)
//	}
//
// # Secrets
//
// The chip never discloses its secret; the Device keeps a host-side shadow
// (all-zero until set) that feeds every MAC computation. InstallSecret
// performs the Load First Secret transaction and updates the shadow on
// success; SetSecret plus SyncSecret is the split variant matching the
// original sysfs attributes.
//
// # Error Classification
//
// Failures carry their class: LinkError (bus unreachable), integrity errors
// (CRC, address echo, ES flag, readback mismatch; see IsIntegrityError),
// protocol.AuthError (wrong secret, permanent), protocol.WriteProtectError
// (region locked, permanent) and protocol.DispositionError (wire anomaly,
// whole-block retry is safe). A failed multi-block Write additionally
// reports how many bytes committed before the failure.
//
// # Concurrency
//
// All operations are synchronous and hold a bus mutex for their full
// duration. Share one mutex between Devices on the same bus with
// WithBusMutex. Operations are not cancellable once started; the fixed 2ms
// and 10ms chip-internal waits are mandated by the datasheet.
package eeprom
