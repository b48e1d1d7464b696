// Package onewire provides 1-Wire registration number handling and, on
// Linux, a bus transport over the kernel w1 subsystem's netlink connector.
//
// An Address is the 64-bit ROM code of a slave: family code, 48-bit serial
// and a Dallas/Maxim CRC-8 seal. Addresses parse from and format to the same
// "b3-0000153d8a6f" form the w1 sysfs tree uses for device directories.
//
// Bus wraps one slave on one bus master. Every exchange travels as a
// w1_netlink_msg over the netlink connector, so no kernel slave driver needs
// to be bound to the device; the eeprom package layers the DS2432 protocol on
// top of it:
//
//	masters, err := onewire.ListMasters()
//	rom, err := onewire.ParseAddress("b3-000000fbc90a")
//	link, err := onewire.Open(masters[0], rom)
//	defer link.Close()
package onewire
