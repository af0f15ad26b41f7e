/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

const (
	minBright  = 7
	maxBright  = 15
	pipColumns = 3
)

// pipPositions holds the pip centres of each face, relative to the top left
// corner of a 110x110 die.
var pipPositions = [7][][2]int{
	{},
	{{55, 55}},
	{{25, 25}, {85, 85}},
	{{25, 25}, {55, 55}, {85, 85}},
	{{25, 25}, {85, 25}, {25, 85}, {85, 85}},
	{{25, 25}, {85, 25}, {55, 55}, {25, 85}, {85, 85}},
	{{25, 25}, {25, 55}, {25, 85}, {85, 25}, {85, 55}, {85, 85}},
}

// Display is the screen the machine draws on.
type Display interface {
	ShowPrompt()
	Clear()
	DrawDie(x, y, face int)
	SetOrientation(o Orientation)
	SetBrightness(level int)
}

// pipGrid lays a face out on a 3x3 grid of pip slots.
func pipGrid(face int) [pipColumns][pipColumns]bool {
	var grid [pipColumns][pipColumns]bool
	if face < 1 || face > 6 {
		return grid
	}
	for _, p := range pipPositions[face] {
		col := (p[0] - 25) / 30
		row := (p[1] - 25) / 30
		grid[row][col] = true
	}
	return grid
}

// renderDie draws a face as five lines of text. Upside down faces are used
// for the left handed orientation.
func renderDie(face int, upsideDown bool) []string {
	grid := pipGrid(face)
	lines := make([]string, 0, pipColumns+2)
	lines = append(lines, "+-------+")
	for r := 0; r < pipColumns; r++ {
		row := r
		if upsideDown {
			row = pipColumns - 1 - r
		}
		var b strings.Builder
		b.WriteString("|")
		for c := 0; c < pipColumns; c++ {
			col := c
			if upsideDown {
				col = pipColumns - 1 - c
			}
			if grid[row][col] {
				b.WriteString(" o")
			} else {
				b.WriteString("  ")
			}
		}
		b.WriteString(" |")
		lines = append(lines, b.String())
	}
	lines = append(lines, "+-------+")
	return lines
}

type placedDie struct {
	x, y, face int
}

// ConsoleDisplay prints the screen contents as text.
type ConsoleDisplay struct {
	mu          sync.Mutex
	out         io.Writer
	log         zerolog.Logger
	orientation Orientation
	brightness  int
	dice        []placedDie
}

func newConsoleDisplay(out io.Writer, orientation Orientation, brightness int, log zerolog.Logger) *ConsoleDisplay {
	return &ConsoleDisplay{
		out:         out,
		log:         log,
		orientation: orientation,
		brightness:  brightness,
	}
}

// ShowTitle prints the splash line shown while the device boots.
func (d *ConsoleDisplay) ShowTitle(title string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	fmt.Fprintf(d.out, "\n    %s\n\n", title)
}

func (d *ConsoleDisplay) ShowPrompt() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dice = d.dice[:0]
	fmt.Fprintln(d.out, "\n    ~~ SHAKE ME ~~")
}

func (d *ConsoleDisplay) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dice = d.dice[:0]
	d.log.Debug().Msg("screen cleared")
}

func (d *ConsoleDisplay) DrawDie(x, y, face int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dice = append(d.dice, placedDie{x: x, y: y, face: face})
	d.flush()
}

func (d *ConsoleDisplay) SetOrientation(o Orientation) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.orientation = o
	d.log.Info().Stringer("orientation", o).Msg("screen rotated")
}

func (d *ConsoleDisplay) SetBrightness(level int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.brightness = min(max(level, minBright), maxBright)
	d.log.Debug().Int("brightness", d.brightness).Msg("backlight set")
}

// flush prints every die drawn since the last clear, ordered by position.
// The caller must hold d.mu.
func (d *ConsoleDisplay) flush() {
	upsideDown := d.orientation == OrientationLeft

	placed := append([]placedDie(nil), d.dice...)
	sort.SliceStable(placed, func(i, j int) bool {
		if upsideDown {
			return placed[i].x > placed[j].x
		}
		return placed[i].x < placed[j].x
	})

	rows := make([]string, pipColumns+2)
	for i, p := range placed {
		for l, line := range renderDie(p.face, upsideDown) {
			if i > 0 {
				rows[l] += "  "
			}
			rows[l] += line
		}
	}

	var b strings.Builder
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString("    " + row + "\n")
	}
	_, _ = io.WriteString(d.out, b.String())
}
