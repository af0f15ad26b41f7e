//go:build linux

/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// i2cSlave is the i2c-dev ioctl selecting the target address.
const i2cSlave = 0x0703

// i2cBus is an I2C adapter exposed by the i2c-dev kernel module.
type i2cBus struct {
	mu   sync.Mutex
	f    *os.File
	addr uint16
}

func openI2C(path string) (*i2cBus, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus: %w", err)
	}
	return &i2cBus{f: f}, nil
}

// Tx writes w and then reads len(r) bytes from the device at addr.
func (b *i2cBus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if addr != b.addr {
		if err := unix.IoctlSetInt(int(b.f.Fd()), i2cSlave, int(addr)); err != nil {
			return fmt.Errorf("select i2c device %#x: %w", addr, err)
		}
		b.addr = addr
	}

	if len(w) > 0 {
		if _, err := b.f.Write(w); err != nil {
			return fmt.Errorf("i2c write to %#x: %w", addr, err)
		}
	}

	if len(r) > 0 {
		if _, err := b.f.Read(r); err != nil {
			return fmt.Errorf("i2c read from %#x: %w", addr, err)
		}
	}

	return nil
}

func (b *i2cBus) Close() error {
	return b.f.Close()
}
