/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"tinygo.org/x/drivers/adxl345"
	"tinygo.org/x/drivers/mpu6886"
)

func TestSimSensorSwings(t *testing.T) {
	s := newSimSensor(3)

	x0, _, z0, err := s.ReadAcceleration()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(float64(x0)) > 2e4 || math.Abs(float64(z0)-1e6) > 2e4 {
		t.Fatalf("at rest read x=%d z=%d, want about 0 and 1 g", x0, z0)
	}

	s.SetIntensity(4)
	prev, _, _, _ := s.ReadAcceleration()
	for i := 0; i < 10; i++ {
		x, _, _, _ := s.ReadAcceleration()
		if swing := math.Abs(float64(x-prev)) / 1e6; math.Abs(swing-4) > 0.03 {
			t.Fatalf("read %d swung %g g, want about 4", i, swing)
		}
		prev = x
	}

	s.SetIntensity(-2)
	if got := s.Intensity(); got != 0 {
		t.Fatalf("negative intensity stored as %g", got)
	}
}

func TestSimSensorDrivesDetector(t *testing.T) {
	s := newSimSensor(9)
	det := newShakeDetector(s, clockwork.NewFakeClock(), 0, defaultShakeWindow, AxisX, zerolog.Nop())

	s.SetIntensity(keyboardShake)
	var avg float64
	for i := 0; i < 30; i++ {
		avg = det.Sample()
	}
	if avg <= 3.0 {
		t.Fatalf("shaking at %g g averaged %g, want above the start threshold", keyboardShake, avg)
	}

	s.SetIntensity(0)
	for i := 0; i < 60; i++ {
		avg = det.Sample()
	}
	if avg >= 1.0 {
		t.Fatalf("resting averaged %g, want below the stop threshold", avg)
	}
}

func TestOpenSensor(t *testing.T) {
	cfg := validConfig()

	acc, closer, err := openSensor(&cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open sim: %v", err)
	}
	if _, ok := acc.(*SimSensor); !ok {
		t.Fatalf("sim backend is %T", acc)
	}
	if err := closer.Close(); err != nil {
		t.Fatalf("close sim: %v", err)
	}

	cfg.sensor = "bmi160"
	if _, _, err := openSensor(&cfg, zerolog.Nop()); !errors.Is(err, ErrUnsupportedSensor) {
		t.Fatalf("unknown sensor = %v, want ErrUnsupportedSensor", err)
	}
}

func TestParseSample(t *testing.T) {
	for _, tc := range []struct {
		line string
		want [3]int32
		ok   bool
	}{
		{"0.5,-0.25,1", [3]int32{500000, -250000, 1000000}, true},
		{" 0 , 0 , 0.98 \r", [3]int32{0, 0, 980000}, true},
		{"1,2", [3]int32{}, false},
		{"1,2,3,4", [3]int32{}, false},
		{"a,b,c", [3]int32{}, false},
		{"", [3]int32{}, false},
		{"NaN,0,1", [3]int32{}, false},
		{"0,+Inf,1", [3]int32{}, false},
		{"0,0,-Inf", [3]int32{}, false},
		{"3000,0,1", [3]int32{}, false},
		{"0,-1e10,1", [3]int32{}, false},
		{"2000,-2000,1", [3]int32{2000000000, -2000000000, 1000000}, true},
	} {
		got, err := parseSample(tc.line)
		if (err == nil) != tc.ok {
			t.Errorf("parseSample(%q) error = %v, want ok=%t", tc.line, err, tc.ok)
			continue
		}
		if tc.ok && got != tc.want {
			t.Errorf("parseSample(%q) = %v, want %v", tc.line, got, tc.want)
		}
	}
}

func TestSerialSensor(t *testing.T) {
	pr, pw := io.Pipe()
	s := newSerialSensor(pr, zerolog.Nop())

	if _, _, _, err := s.ReadAcceleration(); !errors.Is(err, errNoSample) {
		t.Fatalf("read before any line = %v, want errNoSample", err)
	}

	if _, err := io.WriteString(pw, "garbage\n0.5,-0.25,1\n"); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		x, y, z, err := s.ReadAcceleration()
		if err == nil {
			if x != 500000 || y != -250000 || z != 1000000 {
				t.Fatalf("read %d,%d,%d", x, y, z)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("no sample parsed: %v", err)
		}
		time.Sleep(time.Millisecond)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := io.WriteString(pw, "1,1,1\n"); err == nil {
		t.Fatal("port still readable after close")
	}
}

// fakeI2C answers register reads from a table. Each read of a register
// returns its next value, cycling.
type fakeI2C struct {
	mu     sync.Mutex
	regs   map[uint8][][]byte
	reads  map[uint8]int
	addrs  map[uint16]bool
	writes [][]byte
}

func newFakeI2C(regs map[uint8][][]byte) *fakeI2C {
	return &fakeI2C{regs: regs, reads: map[uint8]int{}, addrs: map[uint16]bool{}}
}

func (b *fakeI2C) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.addrs[addr] = true
	if len(r) == 0 {
		b.writes = append(b.writes, append([]byte(nil), w...))
		return nil
	}

	reg := w[0]
	if vals := b.regs[reg]; len(vals) > 0 {
		copy(r, vals[b.reads[reg]%len(vals)])
	}
	b.reads[reg]++
	return nil
}

func (b *fakeI2C) wrote(w ...byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, got := range b.writes {
		if string(got) == string(w) {
			return true
		}
	}
	return false
}

// axes encodes three raw samples in the given byte order.
func axes(order binary.ByteOrder, x, y, z int16) []byte {
	b := make([]byte, 6)
	order.PutUint16(b[0:], uint16(x))
	order.PutUint16(b[2:], uint16(y))
	order.PutUint16(b[4:], uint16(z))
	return b
}

func TestMPU6886Backend(t *testing.T) {
	const whoAmI, accelXOutH = 0x75, 0x3b

	// 4096 counts per g at the 8 g range.
	bus := newFakeI2C(map[uint8][][]byte{
		whoAmI:     {{mpu6886.WhoAmI}},
		accelXOutH: {axes(binary.BigEndian, 4096, 0, -4096), axes(binary.BigEndian, -4096, 0, -4096)},
	})

	acc, err := newMPU6886(bus, 0)
	if err != nil {
		t.Fatalf("configure: %v", err)
	}
	if !bus.addrs[mpu6886.DefaultAddress] || len(bus.addrs) != 1 {
		t.Fatalf("talked to %v, want only the default address", bus.addrs)
	}
	if !bus.wrote(0x1c, mpu6886.AFS_RANGE_8_G<<3) {
		t.Fatal("accelerometer range was not set to 8 g")
	}

	x, y, z, err := acc.ReadAcceleration()
	if err != nil || x != 1000000 || y != 0 || z != -1000000 {
		t.Fatalf("read %d,%d,%d, %v; want 1 g on x and -1 g on z", x, y, z, err)
	}

	det := newShakeDetector(acc, clockwork.NewFakeClock(), 0, 1, AxisX, zerolog.Nop())
	if got := det.Sample(); math.Abs(got-2) > 1e-9 {
		t.Fatalf("a 2 g swing sampled as %g", got)
	}
}

func TestMPU6886CustomAddress(t *testing.T) {
	bus := newFakeI2C(map[uint8][][]byte{0x75: {{mpu6886.WhoAmI}}})

	if _, err := newMPU6886(bus, 0x69); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if !bus.addrs[0x69] || bus.addrs[mpu6886.DefaultAddress] {
		t.Fatalf("talked to %v, want only 0x69", bus.addrs)
	}
}

func TestMPU6886Missing(t *testing.T) {
	if _, err := newMPU6886(newFakeI2C(nil), 0); err == nil {
		t.Fatal("configured an mpu6886 that never answered")
	}
}

func TestADXL345Backend(t *testing.T) {
	// 32 counts per g at the 16 g range.
	bus := newFakeI2C(map[uint8][][]byte{
		adxl345.REG_DATAX0: {axes(binary.LittleEndian, 32, 0, 32), axes(binary.LittleEndian, -32, 0, 32)},
	})

	acc := newADXL345(bus, 0)
	if !bus.addrs[adxl345.AddressLow] || len(bus.addrs) != 1 {
		t.Fatalf("talked to %v, want only the default address", bus.addrs)
	}
	if !bus.wrote(adxl345.REG_DATA_FORMAT, byte(adxl345.RANGE_16G)) {
		t.Fatal("accelerometer range was not set to 16 g")
	}

	x, _, z, err := acc.ReadAcceleration()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(float64(x)-1e6) > 5e4 || math.Abs(float64(z)-1e6) > 5e4 {
		t.Fatalf("read x=%d z=%d µg, want about 1 g each", x, z)
	}

	det := newShakeDetector(acc, clockwork.NewFakeClock(), 0, 1, AxisX, zerolog.Nop())
	if got := det.Sample(); math.Abs(got-2) > 0.1 {
		t.Fatalf("a 2 g swing sampled as %g, want about 2", got)
	}
}

func TestADXL345CustomAddress(t *testing.T) {
	bus := newFakeI2C(nil)

	newADXL345(bus, adxl345.AddressHigh)
	if !bus.addrs[adxl345.AddressHigh] || bus.addrs[adxl345.AddressLow] {
		t.Fatalf("talked to %v, want only %#x", bus.addrs, adxl345.AddressHigh)
	}
}
