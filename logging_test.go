/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLoggerLevels(t *testing.T) {
	var out bytes.Buffer

	log := newLogger(&Config{}, &out)
	if log.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("level = %s, want info", log.GetLevel())
	}
	log.Debug().Msg("hidden")
	if out.Len() != 0 {
		t.Fatalf("debug line written without --verbose: %q", out.String())
	}

	verbose := newLogger(&Config{verbose: true}, &out)
	sensorLog := component(verbose, "sensor")
	sensorLog.Debug().Msg("shown")

	text := out.String()
	if !strings.Contains(text, "shown") || !strings.Contains(text, "component=") || !strings.Contains(text, "sensor") {
		t.Fatalf("debug line = %q", text)
	}
}

func TestNewPage(t *testing.T) {
	page := newPage("dicebox", "Die 1: 4")

	for _, want := range []string{"<title>dicebox</title>", "Die 1: 4", `href="/favicon.ico"`} {
		if !strings.Contains(page, want) {
			t.Errorf("page lacks %q: %s", want, page)
		}
	}
}
