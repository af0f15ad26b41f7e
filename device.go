/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Status is what the control loop publishes for other goroutines after every
// tick.
type Status struct {
	State       GameState
	Orientation Orientation
}

// Device is the control loop: it feeds button presses to the machine and
// lets the responder serve one client per tick.
type Device struct {
	clock     clockwork.Clock
	tick      time.Duration
	machine   *Machine
	responder *Responder
	panel     *Panel
	result    *DieResult
	sim       *SimSensor
	log       zerolog.Logger

	status atomic.Pointer[Status]
}

func newDevice(clock clockwork.Clock, tick time.Duration, machine *Machine, responder *Responder, panel *Panel, result *DieResult, log zerolog.Logger) *Device {
	d := &Device{
		clock:     clock,
		tick:      tick,
		machine:   machine,
		responder: responder,
		panel:     panel,
		result:    result,
		log:       log,
	}
	d.publish()
	return d
}

// Status returns the state published by the last tick.
func (d *Device) Status() Status {
	return *d.status.Load()
}

func (d *Device) publish() {
	d.status.Store(&Status{State: d.machine.State(), Orientation: d.machine.Orientation()})
}

// Run ticks until ctx is done.
func (d *Device) Run(ctx context.Context) error {
	ticker := d.clock.NewTicker(d.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			if err := d.step(ctx); err != nil {
				return err
			}
		}
	}
}

func (d *Device) step(ctx context.Context) error {
	// A reroll press only waits while the result is on screen.
	waiting := d.machine.State() == StateAwaitButton
	if d.machine.Advance(d.clock.Now(), d.panel.Take()) || !waiting {
		d.panel.DropReroll()
	}
	d.publish()

	if d.responder == nil {
		return nil
	}

	err := d.responder.Update(ctx)
	switch {
	case err == nil, ctx.Err() != nil:
		return nil
	case errors.Is(err, net.ErrClosed):
		return err
	default:
		d.log.Warn().Err(err).Msg("responder update failed")
		return nil
	}
}

func newRoller(seed uint64) (*rand.Rand, error) {
	var key [32]byte
	if seed == 0 {
		if _, err := crand.Read(key[:]); err != nil {
			return nil, fmt.Errorf("seed dice: %w", err)
		}
	} else {
		binary.LittleEndian.PutUint64(key[:], seed)
	}
	return rand.New(rand.NewChaCha8(key)), nil
}

// ServeDevice wires the device together and runs it until ctx is done.
func ServeDevice(ctx context.Context, cfg *Config, in io.Reader, out io.Writer) error {
	log := newLogger(cfg, os.Stderr)

	log.Info().Str("version", releaseVersion).Msg("starting dicebox")

	orientation, err := parseOrientation(cfg.orientation)
	if err != nil {
		return err
	}
	axis, err := parseAxis(cfg.axis)
	if err != nil {
		return err
	}

	sensor, closer, err := openSensor(cfg, component(log, "sensor"))
	if err != nil {
		return err
	}
	defer closer.Close()

	roller, err := newRoller(cfg.seed)
	if err != nil {
		return err
	}

	clock := clockwork.NewRealClock()
	result := newDieResult()
	panel := &Panel{}

	display := newConsoleDisplay(out, orientation, cfg.brightness, component(log, "display"))
	display.SetBrightness(cfg.brightness)
	display.ShowTitle("Digital DICE")

	detector := newShakeDetector(sensor, clock, cfg.sampleInterval, cfg.window, axis, component(log, "shake"))

	machine := newMachine(cfg.machineConfig(), detector, roller, display, result, orientation)
	gameLog := component(log, "game")
	machine.onTransition = func(t Transition) {
		gameLog.Debug().
			Stringer("from", t.From).
			Stringer("to", t.To).
			Dur("dwell", t.Deadline.Sub(t.At)).
			Msg("transition")
	}

	resources, err := loadResources(assets)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port)))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	responder := newResponder(ln, result, resources, cfg.connTimeout, component(log, "responder"))
	defer responder.Close()

	if err := announceNetwork(out, cfg.ssid, cfg.passphrase, responder.Addr().String()); err != nil {
		return err
	}

	device := newDevice(clock, cfg.tick, machine, responder, panel, result, component(log, "loop"))
	if sim, ok := sensor.(*SimSensor); ok {
		device.sim = sim
	}

	if cfg.companionPort != 0 {
		stop, err := serveCompanion(ctx, cfg, device, component(log, "companion"))
		if err != nil {
			return err
		}
		defer stop()
	}

	if cfg.keyboard {
		var sim shaker
		if device.sim != nil {
			sim = device.sim
		}
		go readKeys(ctx, in, panel, sim, component(log, "keys"))
	}

	return device.Run(ctx)
}
