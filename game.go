/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"time"
)

// Die anchors on the 240x135 screen, in pixels from the top left corner.
const (
	die1X = 12
	die1Y = 9
	die2X = 125
	die2Y = 9
)

// MachineConfig holds the timings and thresholds of the dice sequence.
type MachineConfig struct {
	PromptDwell    time.Duration
	ShakeSettle    time.Duration
	Die1Dwell      time.Duration
	Die2Dwell      time.Duration
	RerollDelay    time.Duration
	StartThreshold float64
	StopThreshold  float64
}

func defaultMachineConfig() MachineConfig {
	return MachineConfig{
		PromptDwell:    500 * time.Millisecond,
		ShakeSettle:    200 * time.Millisecond,
		Die1Dwell:      500 * time.Millisecond,
		Die2Dwell:      1000 * time.Millisecond,
		RerollDelay:    100 * time.Millisecond,
		StartThreshold: 3.0,
		StopThreshold:  1.0,
	}
}

// Buttons is the button state seen by one tick.
type Buttons struct {
	Reroll      bool
	Orientation bool
}

// Sampler produces the smoothed shake signal.
type Sampler interface {
	Sample() float64
}

// Roller draws uniform integers in [0, n). *rand.Rand satisfies it.
type Roller interface {
	IntN(n int) int
}

// Transition describes one state change, for observers.
type Transition struct {
	From     GameState
	To       GameState
	At       time.Time
	Deadline time.Time
}

// Machine runs the dice sequence. It is not safe for concurrent use; the
// device loop owns it.
type Machine struct {
	cfg     MachineConfig
	shake   Sampler
	roll    Roller
	display Display
	result  *DieResult

	state       GameState
	deadline    time.Time
	orientation Orientation
	die1, die2  int

	onTransition func(Transition)
}

func newMachine(cfg MachineConfig, shake Sampler, roll Roller, display Display, result *DieResult, orientation Orientation) *Machine {
	return &Machine{
		cfg:         cfg,
		shake:       shake,
		roll:        roll,
		display:     display,
		result:      result,
		state:       StateStart,
		orientation: orientation,
	}
}

// State returns the current state.
func (m *Machine) State() GameState { return m.state }

// Deadline returns the time the current state may transition at.
func (m *Machine) Deadline() time.Time { return m.deadline }

// Orientation returns the current screen orientation.
func (m *Machine) Orientation() Orientation { return m.orientation }

// Dice returns the values last rolled, zero before the first roll.
func (m *Machine) Dice() (int, int) { return m.die1, m.die2 }

// Advance runs one step of the sequence at time now. It reports whether the
// reroll press was consumed.
func (m *Machine) Advance(now time.Time, in Buttons) bool {
	if in.Orientation {
		m.orientation = m.orientation.Toggle()
		m.display.SetOrientation(m.orientation)
		m.transition(now, StateStart, now)
	}

	if now.Before(m.deadline) {
		return false
	}

	switch m.state {
	case StateStart:
		m.start(now)
	case StateWaitForShake:
		m.waitForShake(now)
	case StateShaking:
		m.shaking(now)
	case StateShowDie1:
		m.showDie1(now)
	case StateShowDie2:
		m.showDie2(now)
	case StateAwaitButton:
		return m.awaitButton(now, in.Reroll)
	}
	return false
}

func (m *Machine) start(now time.Time) {
	m.display.ShowPrompt()
	m.transition(now, StateWaitForShake, now.Add(m.cfg.PromptDwell))
}

func (m *Machine) waitForShake(now time.Time) {
	if m.shake.Sample() <= m.cfg.StartThreshold {
		return
	}
	m.display.Clear()
	m.transition(now, StateShaking, now.Add(m.cfg.ShakeSettle))
}

// shaking rolls on every due tick while the device moves, so the dice keep
// changing until the shake stops.
func (m *Machine) shaking(now time.Time) {
	m.die1 = m.roll.IntN(6) + 1
	m.die2 = m.roll.IntN(6) + 1
	m.result.Set(m.die1, m.die2)

	if m.shake.Sample() >= m.cfg.StopThreshold {
		return
	}
	m.transition(now, StateShowDie1, now.Add(m.cfg.ShakeSettle))
}

func (m *Machine) showDie1(now time.Time) {
	m.display.Clear()
	m.display.DrawDie(die1X, die1Y, m.die1)
	m.transition(now, StateShowDie2, now.Add(m.cfg.Die1Dwell))
}

func (m *Machine) showDie2(now time.Time) {
	m.display.DrawDie(die2X, die2Y, m.die2)
	m.transition(now, StateAwaitButton, now.Add(m.cfg.Die2Dwell))
}

func (m *Machine) awaitButton(now time.Time, reroll bool) bool {
	if !reroll {
		return false
	}
	m.result.Clear()
	m.transition(now, StateStart, now.Add(m.cfg.RerollDelay))
	return true
}

func (m *Machine) transition(now time.Time, to GameState, deadline time.Time) {
	if deadline.Before(now) {
		deadline = now
	}

	t := Transition{From: m.state, To: to, At: now, Deadline: deadline}
	m.state = to
	m.deadline = deadline

	if m.onTransition != nil {
		m.onTransition(t)
	}
}
