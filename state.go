/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import "fmt"

// GameState is the step of the dice sequence the machine is in.
type GameState int

const (
	StateStart GameState = iota
	StateWaitForShake
	StateShaking
	StateShowDie1
	StateShowDie2
	StateAwaitButton
)

func (s GameState) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateWaitForShake:
		return "wait-for-shake"
	case StateShaking:
		return "shaking"
	case StateShowDie1:
		return "show-die-1"
	case StateShowDie2:
		return "show-die-2"
	case StateAwaitButton:
		return "await-button"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Orientation is the screen rotation, picked for right or left handed use.
type Orientation int

const (
	OrientationRight Orientation = 1
	OrientationLeft  Orientation = 3
)

func (o Orientation) String() string {
	switch o {
	case OrientationRight:
		return "right"
	case OrientationLeft:
		return "left"
	default:
		return fmt.Sprintf("rotation(%d)", int(o))
	}
}

// Toggle flips between right and left handed.
func (o Orientation) Toggle() Orientation {
	if o == OrientationRight {
		return OrientationLeft
	}
	return OrientationRight
}

func parseOrientation(s string) (Orientation, error) {
	switch s {
	case "right", "1":
		return OrientationRight, nil
	case "left", "3":
		return OrientationLeft, nil
	default:
		return 0, fmt.Errorf("invalid orientation (must be left or right): %q", s)
	}
}
