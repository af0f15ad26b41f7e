/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"math"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const (
	defaultShakeWindow    = 10
	defaultSampleInterval = 100 * time.Millisecond
)

// Axis selects the accelerometer axis treated as horizontal.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// ShakeDetector turns pairs of accelerometer readings into a smoothed
// horizontal jerk signal.
//
// A larger window filters out knocks on the case but reacts later. A window
// of 1 responds immediately and will trigger on sharp taps.
type ShakeDetector struct {
	sensor   Accelerometer
	clock    clockwork.Clock
	interval time.Duration
	window   float64
	axis     Axis
	log      zerolog.Logger

	avg  float64
	last float64
}

func newShakeDetector(sensor Accelerometer, clock clockwork.Clock, interval time.Duration, window int, axis Axis, log zerolog.Logger) *ShakeDetector {
	if window < 1 {
		window = 1
	}
	return &ShakeDetector{
		sensor:   sensor,
		clock:    clock,
		interval: interval,
		window:   float64(window),
		axis:     axis,
		log:      log,
	}
}

// Sample reads the horizontal axis twice, interval apart, folds the absolute
// difference into the moving average and returns the new average. It blocks
// for the sampling interval.
func (d *ShakeDetector) Sample() float64 {
	first := d.read()
	d.clock.Sleep(d.interval)
	second := d.read()

	return d.fold(math.Abs(second - first))
}

// Average returns the current filter value without sampling.
func (d *ShakeDetector) Average() float64 {
	return d.avg
}

func (d *ShakeDetector) fold(delta float64) float64 {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		delta = 0
	}
	d.avg = (d.avg*(d.window-1) + delta) / d.window
	return d.avg
}

// read returns the horizontal acceleration in g. A failed read repeats the
// previous value so it adds no movement.
func (d *ShakeDetector) read() float64 {
	x, y, _, err := d.sensor.ReadAcceleration()
	if err != nil {
		d.log.Warn().Err(err).Msg("accelerometer read failed")
		return d.last
	}

	raw := x
	if d.axis == AxisY {
		raw = y
	}

	d.last = float64(raw) / 1e6
	return d.last
}
