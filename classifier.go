/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import "bytes"

// maxLineLength caps how much of one request line is kept for classification.
const maxLineLength = 1024

// requestIntent is the resource a request asks for.
type requestIntent int

const (
	intentUnknown requestIntent = iota
	intentIndex
	intentFavicon
	intentLogo
	intentRefreshImage
	intentDiceValue
)

func (i requestIntent) String() string {
	switch i {
	case intentIndex:
		return "index"
	case intentFavicon:
		return "favicon"
	case intentLogo:
		return "logo"
	case intentRefreshImage:
		return "refresh-image"
	case intentDiceValue:
		return "dicevalue"
	default:
		return "unknown"
	}
}

var requestPrefixes = []struct {
	prefix []byte
	intent requestIntent
}{
	{[]byte("GET / "), intentIndex},
	{[]byte("GET /electric-idea_50x50.jpg"), intentLogo},
	{[]byte("GET /favicon.ico"), intentFavicon},
	{[]byte("GET /dicevalue.js"), intentDiceValue},
	{[]byte("GET /refresh-40x30.png"), intentRefreshImage},
}

func classifyRequestLine(line []byte) requestIntent {
	for _, p := range requestPrefixes {
		if bytes.HasPrefix(line, p.prefix) {
			return p.intent
		}
	}
	return intentUnknown
}

// classifier reads a request one byte at a time. Only the request line is
// classified; header lines are skipped until the blank line that ends them.
type classifier struct {
	line   []byte
	lines  int
	intent requestIntent
}

// feed consumes one byte and reports whether the request is complete.
func (c *classifier) feed(b byte) bool {
	switch b {
	case '\r':
		return false
	case '\n':
		if len(c.line) == 0 {
			return true
		}
		if c.lines == 0 {
			c.intent = classifyRequestLine(c.line)
		}
		c.lines++
		c.line = c.line[:0]
		return false
	default:
		if len(c.line) < maxLineLength {
			c.line = append(c.line, b)
		}
		return false
	}
}

// write feeds p and returns how many bytes were consumed before the request
// completed, and whether it did.
func (c *classifier) write(p []byte) (int, bool) {
	for i, b := range p {
		if c.feed(b) {
			return i + 1, true
		}
	}
	return len(p), false
}
