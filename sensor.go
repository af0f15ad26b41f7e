/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/adxl345"
	"tinygo.org/x/drivers/mpu6886"
)

// Sensor backends.
const (
	sensorSim     = "sim"
	sensorMPU6886 = "mpu6886"
	sensorADXL345 = "adxl345"
	sensorSerial  = "serial"
)

// ErrUnsupportedSensor is returned for sensor backends this build cannot open.
var ErrUnsupportedSensor = errors.New("unsupported sensor")

// Accelerometer reads acceleration in µg on three axes. The mpu6886 driver
// implements it as is.
type Accelerometer interface {
	ReadAcceleration() (x, y, z int32, err error)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openSensor opens the configured accelerometer. The returned closer releases
// the underlying bus or port.
func openSensor(cfg *Config, log zerolog.Logger) (Accelerometer, io.Closer, error) {
	switch cfg.sensor {
	case sensorSim:
		return newSimSensor(cfg.seed), nopCloser{}, nil
	case sensorMPU6886, sensorADXL345:
		bus, err := openI2C(cfg.i2cBus)
		if err != nil {
			return nil, nil, err
		}

		var acc Accelerometer
		if cfg.sensor == sensorMPU6886 {
			acc, err = newMPU6886(bus, uint16(cfg.i2cAddr))
		} else {
			acc = newADXL345(bus, uint16(cfg.i2cAddr))
		}
		if err != nil {
			_ = bus.Close()
			return nil, nil, err
		}

		return acc, bus, nil
	case sensorSerial:
		s, err := openSerialSensor(cfg.serialPort, cfg.serialBaud, log)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedSensor, cfg.sensor)
	}
}

func newMPU6886(bus drivers.I2C, addr uint16) (Accelerometer, error) {
	dev := mpu6886.New(bus)
	if addr != 0 {
		dev.Address = addr
	}

	if err := dev.Configure(mpu6886.Config{
		AccelRange: mpu6886.AFS_RANGE_8_G,
		GyroRange:  mpu6886.GFS_RANGE_2000,
	}); err != nil {
		return nil, fmt.Errorf("configure mpu6886 at %#x: %w", dev.Address, err)
	}

	return dev, nil
}

// adxl345Sensor scales the driver's readings from mg to µg.
type adxl345Sensor struct {
	dev adxl345.Device
}

func newADXL345(bus drivers.I2C, addr uint16) Accelerometer {
	s := &adxl345Sensor{dev: adxl345.New(bus)}
	if addr != 0 {
		s.dev.Address = addr
	}

	s.dev.Configure()
	s.dev.SetRate(adxl345.RATE_100HZ)
	s.dev.SetRange(adxl345.RANGE_16G)

	return s
}

func (s *adxl345Sensor) ReadAcceleration() (x, y, z int32, err error) {
	x, y, z, err = s.dev.ReadAcceleration()
	return x * 1000, y * 1000, z * 1000, err
}

// SimSensor fakes a device lying flat on a table. While shaking it swings the
// horizontal axis between two extremes on every read.
type SimSensor struct {
	intensity atomic.Uint64

	mu    sync.Mutex
	rng   *rand.Rand
	swing bool
}

func newSimSensor(seed uint64) *SimSensor {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &SimSensor{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// SetIntensity sets the peak to peak swing of the horizontal axis, in g.
func (s *SimSensor) SetIntensity(g float64) {
	s.intensity.Store(math.Float64bits(math.Max(g, 0)))
}

// Intensity returns the current peak to peak swing in g.
func (s *SimSensor) Intensity() float64 {
	return math.Float64frombits(s.intensity.Load())
}

func (s *SimSensor) ReadAcceleration() (x, y, z int32, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	amp := s.Intensity() / 2
	s.swing = !s.swing
	if !s.swing {
		amp = -amp
	}

	noise := func() float64 { return (s.rng.Float64() - 0.5) * 0.02 }

	x = int32((amp + noise()) * 1e6)
	y = int32(noise() * 1e6)
	z = int32((1 + noise()) * 1e6)

	return x, y, z, nil
}
