//go:build !linux

package onewire

import (
	"errors"
	"time"
)

var errUnsupported = errors.New("onewire: the w1 netlink transport requires Linux")

// Bus is only functional on Linux, where the kernel w1 subsystem exposes bus
// masters over the netlink connector.
type Bus struct{}

// Open fails on non-Linux platforms.
func Open(masterID uint32, rom Address) (*Bus, error) {
	return nil, errUnsupported
}

// ListMasters fails on non-Linux platforms.
func ListMasters() ([]uint32, error) {
	return nil, errUnsupported
}

func (b *Bus) Close() error          { return errUnsupported }
func (b *Bus) ResetSelect() error    { return errUnsupported }
func (b *Bus) Write(p []byte) error  { return errUnsupported }
func (b *Bus) Read(p []byte) error   { return errUnsupported }
func (b *Bus) Sleep(d time.Duration) { time.Sleep(d) }
