/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/tarm/serial"
)

var errNoSample = errors.New("no sample received yet")

// SerialSensor reads an IMU bridge that prints one "ax,ay,az" line per sample,
// in g. The latest line wins.
type SerialSensor struct {
	port   io.ReadCloser
	latest atomic.Pointer[[3]int32]
	log    zerolog.Logger
	closed atomic.Bool
	done   chan struct{}
}

func openSerialSensor(name string, baud int, log zerolog.Logger) (*SerialSensor, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        name,
		Baud:        baud,
		ReadTimeout: 500 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}

	return newSerialSensor(port, log), nil
}

func newSerialSensor(port io.ReadCloser, log zerolog.Logger) *SerialSensor {
	s := &SerialSensor{
		port: port,
		log:  log,
		done: make(chan struct{}),
	}

	go s.readLoop()

	return s
}

func (s *SerialSensor) readLoop() {
	defer close(s.done)

	scanner := bufio.NewScanner(readerFunc(s.read))
	for scanner.Scan() {
		sample, err := parseSample(scanner.Text())
		if err != nil {
			s.log.Debug().Err(err).Msg("skipping serial line")
			continue
		}
		s.latest.Store(&sample)
	}

	if err := scanner.Err(); err != nil {
		s.log.Warn().Err(err).Msg("serial sensor stopped")
	}
}

// read blocks until the port yields data. A read timeout surfaces as io.EOF
// and is retried until the sensor is closed.
func (s *SerialSensor) read(p []byte) (int, error) {
	for {
		n, err := s.port.Read(p)
		if n == 0 && errors.Is(err, io.EOF) && !s.closed.Load() {
			continue
		}
		return n, err
	}
}

type readerFunc func(p []byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }

// parseSample turns "ax,ay,az" in g into µg.
func parseSample(line string) ([3]int32, error) {
	var out [3]int32

	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != 3 {
		return out, fmt.Errorf("want 3 fields, got %d in %q", len(fields), line)
	}

	for i, f := range fields {
		g, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return out, fmt.Errorf("axis %d: %w", i, err)
		}
		ug := g * 1e6
		if math.IsNaN(ug) || math.Abs(ug) > math.MaxInt32 {
			return out, fmt.Errorf("axis %d: %q g is out of range", i, f)
		}
		out[i] = int32(ug)
	}

	return out, nil
}

func (s *SerialSensor) ReadAcceleration() (x, y, z int32, err error) {
	sample := s.latest.Load()
	if sample == nil {
		return 0, 0, 0, errNoSample
	}
	return sample[0], sample[1], sample[2], nil
}

// Close closes the port and waits for the reader to stop.
func (s *SerialSensor) Close() error {
	s.closed.Store(true)
	err := s.port.Close()
	<-s.done
	return err
}
