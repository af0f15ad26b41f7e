/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import "sync/atomic"

// Face is a die value as shown to network clients.
type Face byte

const (
	FaceUnset   Face = '-'
	FaceCleared Face = 'X'
)

// faceOf returns the character form of a rolled value.
func faceOf(value int) Face {
	return Face('0' + value)
}

// Value returns the rolled value, or 0 for the sentinel faces.
func (f Face) Value() int {
	if f >= '1' && f <= '6' {
		return int(f - '0')
	}
	return 0
}

// IsSet reports whether the face holds a rolled value.
func (f Face) IsSet() bool {
	return f.Value() != 0
}

func (f Face) String() string {
	return string(rune(f))
}

// DiceValues is one published view of the two dice.
type DiceValues struct {
	Die1 Face
	Die2 Face
	Seq  uint64
}

// DieResult holds the latest dice values. The machine is the only writer;
// any goroutine may call Load.
type DieResult struct {
	v atomic.Pointer[DiceValues]
}

func newDieResult() *DieResult {
	r := &DieResult{}
	r.v.Store(&DiceValues{Die1: FaceUnset, Die2: FaceUnset})
	return r
}

// Load returns the current snapshot. It never returns nil.
func (r *DieResult) Load() DiceValues {
	return *r.v.Load()
}

func (r *DieResult) publish(d1, d2 Face) {
	prev := r.v.Load()
	r.v.Store(&DiceValues{Die1: d1, Die2: d2, Seq: prev.Seq + 1})
}

// Set publishes two rolled values.
func (r *DieResult) Set(die1, die2 int) {
	r.publish(faceOf(die1), faceOf(die2))
}

// Clear marks both dice as cleared for a new roll.
func (r *DieResult) Clear() {
	r.publish(FaceCleared, FaceCleared)
}
