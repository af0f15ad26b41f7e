//go:build !linux

/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import "fmt"

type i2cBus struct{}

func openI2C(path string) (*i2cBus, error) {
	return nil, fmt.Errorf("%w: i2c-dev bus %s needs linux", ErrUnsupportedSensor, path)
}

func (b *i2cBus) Tx(addr uint16, w, r []byte) error {
	return ErrUnsupportedSensor
}

func (b *i2cBus) Close() error {
	return nil
}
