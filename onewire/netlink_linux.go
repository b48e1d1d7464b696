//go:build linux

package onewire

import (
	"fmt"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// matchROM is the 1-Wire command that addresses one slave by its full
// registration number after a bus reset.
const matchROM = 0x55

// receiveTimeout bounds how long a round trip waits for the kernel. The bus
// itself is slow (a full page read takes tens of milliseconds) but never this
// slow unless the master is gone.
const receiveTimeout = 2 * time.Second

// Bus drives one slave on a Linux w1 bus master through the netlink
// connector. It satisfies the transport contract of the eeprom package: reads
// and writes are raw bus bytes, ResetSelect issues a bus reset followed by
// Match ROM.
//
// Bus is not safe for concurrent use; the eeprom package serializes access
// with its bus mutex.
type Bus struct {
	fd       int
	masterID uint32
	rom      Address
	seq      uint32
}

// Open connects to the w1 netlink connector and returns a Bus addressing the
// given slave on the given bus master. Master IDs come from ListMasters.
func Open(masterID uint32, rom Address) (*Bus, error) {
	fd, err := openConnector()
	if err != nil {
		return nil, err
	}
	return &Bus{fd: fd, masterID: masterID, rom: rom}, nil
}

// Close releases the netlink socket.
func (b *Bus) Close() error {
	return unix.Close(b.fd)
}

// ResetSelect resets the bus and addresses the slave with Match ROM. Both
// steps travel in one netlink datagram so no other client's traffic can
// interleave between them.
func (b *Bus) ResetSelect() error {
	rom := b.rom.Bytes()
	sel := append([]byte{matchROM}, rom[:]...)
	_, err := b.roundTrip([]w1Cmd{
		{cmd: cmdReset},
		{cmd: cmdWrite, data: sel},
	})
	if err != nil {
		return fmt.Errorf("onewire: reset and select %s: %w", b.rom, err)
	}
	return nil
}

// Write transmits raw bytes on the bus.
func (b *Bus) Write(p []byte) error {
	_, err := b.roundTrip([]w1Cmd{{cmd: cmdWrite, data: p}})
	if err != nil {
		return fmt.Errorf("onewire: write %d bytes: %w", len(p), err)
	}
	return nil
}

// Read fills p with bytes sampled from the bus.
func (b *Bus) Read(p []byte) error {
	// The read command carries a buffer of the requested size; the kernel
	// returns it filled.
	data, err := b.roundTrip([]w1Cmd{{cmd: cmdRead, data: make([]byte, len(p))}})
	if err != nil {
		return fmt.Errorf("onewire: read %d bytes: %w", len(p), err)
	}
	if len(data) < len(p) {
		return fmt.Errorf("onewire: short read: %d of %d bytes", len(data), len(p))
	}
	copy(p, data)
	return nil
}

// Sleep blocks for the chip-internal operation time.
func (b *Bus) Sleep(d time.Duration) {
	time.Sleep(d)
}

// roundTrip sends the commands to the bus master and collects the kernel's
// per-command acknowledgements, returning any read data.
func (b *Bus) roundTrip(cmds []w1Cmd) ([]byte, error) {
	b.seq++
	req := marshalRequest(b.seq, w1Request{
		msgType:  msgMasterCmd,
		masterID: b.masterID,
		cmds:     cmds,
	})
	if err := unix.Sendto(b.fd, req, 0, &unix.SockaddrNetlink{Family: unix.AF_NETLINK}); err != nil {
		return nil, fmt.Errorf("sending w1 request: %w", err)
	}

	var data []byte
	acked := 0
	for acked < len(cmds) {
		replies, err := receiveReplies(b.fd, b.seq)
		if err != nil {
			return nil, err
		}
		for _, r := range replies {
			if r.status != 0 {
				return nil, fmt.Errorf("bus master: %w", syscall.Errno(r.status))
			}
			for _, c := range r.cmds {
				if c.cmd == cmdRead {
					data = append(data, c.data...)
				}
				acked++
			}
		}
	}
	return data, nil
}

// ListMasters asks the kernel for the numeric IDs of all registered w1 bus
// masters.
func ListMasters() ([]uint32, error) {
	fd, err := openConnector()
	if err != nil {
		return nil, err
	}
	defer unix.Close(fd)

	const seq = 1
	req := marshalRequest(seq, w1Request{msgType: msgListMasters})
	if err := unix.Sendto(fd, req, 0, &unix.SockaddrNetlink{Family: unix.AF_NETLINK}); err != nil {
		return nil, fmt.Errorf("onewire: sending list request: %w", err)
	}

	for {
		replies, err := receiveReplies(fd, seq)
		if err != nil {
			return nil, fmt.Errorf("onewire: listing masters: %w", err)
		}
		for _, r := range replies {
			if r.msgType == msgListMasters {
				return masterIDs(r.data), nil
			}
		}
	}
}

// openConnector opens a netlink connector socket subscribed to the w1 group.
func openConnector() (int, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_DGRAM, unix.NETLINK_CONNECTOR)
	if err != nil {
		return -1, fmt.Errorf("onewire: opening netlink connector: %w", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrNetlink{Family: unix.AF_NETLINK}); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("onewire: binding netlink socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_NETLINK, unix.NETLINK_ADD_MEMBERSHIP, cnW1Index); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("onewire: joining w1 connector group: %w", err)
	}
	tv := unix.NsecToTimeval(receiveTimeout.Nanoseconds())
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("onewire: setting receive timeout: %w", err)
	}
	return fd, nil
}

// receiveReplies reads one datagram and returns the w1 replies matching the
// given sequence number. Unrelated bus events (slave arrival announcements
// and other clients' replies) are dropped.
func receiveReplies(fd int, seq uint32) ([]w1Reply, error) {
	buf := make([]byte, 4096)
	n, _, err := unix.Recvfrom(fd, buf, 0)
	if err != nil {
		return nil, fmt.Errorf("receiving w1 reply: %w", err)
	}

	all, err := parseReplies(buf[:n])
	if err != nil {
		return nil, err
	}
	matched := all[:0]
	for _, r := range all {
		if r.seq == seq {
			matched = append(matched, r)
		}
	}
	return matched, nil
}
