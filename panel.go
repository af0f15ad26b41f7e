/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Panel latches presses of the two device buttons until the loop takes them.
//
// Button A rolls again, button B flips the screen orientation.
type Panel struct {
	reroll      atomic.Bool
	orientation atomic.Bool
}

// PressReroll latches a press of button A.
func (p *Panel) PressReroll() { p.reroll.Store(true) }

// PressOrientation latches a press of button B.
func (p *Panel) PressOrientation() { p.orientation.Store(true) }

// Take returns the presses since the last call. The orientation press is
// cleared; a reroll press stays latched until DropReroll.
func (p *Panel) Take() Buttons {
	return Buttons{
		Reroll:      p.reroll.Load(),
		Orientation: p.orientation.Swap(false),
	}
}

// DropReroll clears a latched press of button A.
func (p *Panel) DropReroll() { p.reroll.Store(false) }

// shaker is a sensor whose shaking can be switched from the keyboard.
type shaker interface {
	SetIntensity(g float64)
}

const keyboardShake = 8.0

// readKeys maps lines typed on in to button presses until in is exhausted or
// ctx is done. "s" and "q" start and stop shaking a simulated sensor.
func readKeys(ctx context.Context, in io.Reader, panel *Panel, sim shaker, log zerolog.Logger) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		switch key := strings.ToLower(strings.TrimSpace(scanner.Text())); key {
		case "a":
			panel.PressReroll()
		case "b":
			panel.PressOrientation()
		case "s", "q":
			if sim == nil {
				log.Info().Msg("shaking from the keyboard needs --sensor=sim")
				continue
			}
			if key == "s" {
				sim.SetIntensity(keyboardShake)
			} else {
				sim.SetIntensity(0)
			}
		case "":
		default:
			log.Info().Str("key", key).Msg("keys: a = roll again, b = rotate, s = shake, q = stop shaking")
		}
	}
}
