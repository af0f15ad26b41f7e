/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type recordingShaker struct {
	levels []float64
}

func (s *recordingShaker) SetIntensity(g float64) { s.levels = append(s.levels, g) }

func TestPanelLatches(t *testing.T) {
	var p Panel

	if got := p.Take(); got != (Buttons{}) {
		t.Fatalf("fresh panel = %+v", got)
	}

	p.PressReroll()
	p.PressReroll()
	p.PressOrientation()

	if got := p.Take(); got != (Buttons{Reroll: true, Orientation: true}) {
		t.Fatalf("take = %+v, want both presses", got)
	}
	if got := p.Take(); got != (Buttons{Reroll: true}) {
		t.Fatalf("second take = %+v, want the reroll still latched", got)
	}

	p.DropReroll()
	if got := p.Take(); got != (Buttons{}) {
		t.Fatalf("take after drop = %+v, want nothing", got)
	}
}

func TestReadKeys(t *testing.T) {
	var (
		p   Panel
		sim recordingShaker
	)

	readKeys(context.Background(), strings.NewReader("a\n B \n\ns\nhelp\nq\n"), &p, &sim, zerolog.Nop())

	if got := p.Take(); got != (Buttons{Reroll: true, Orientation: true}) {
		t.Fatalf("presses = %+v", got)
	}
	if len(sim.levels) != 2 || sim.levels[0] != keyboardShake || sim.levels[1] != 0 {
		t.Fatalf("shake levels = %v, want [%g 0]", sim.levels, keyboardShake)
	}
}

func TestReadKeysWithoutSim(t *testing.T) {
	var p Panel

	readKeys(context.Background(), strings.NewReader("s\na\n"), &p, nil, zerolog.Nop())

	if got := p.Take(); !got.Reroll {
		t.Fatal("keys after an unavailable shake were dropped")
	}
}

func TestReadKeysStopsWhenCancelled(t *testing.T) {
	var p Panel

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	readKeys(ctx, strings.NewReader("a\n"), &p, nil, zerolog.Nop())

	if got := p.Take(); got.Reroll {
		t.Fatal("key read after cancellation")
	}
}
