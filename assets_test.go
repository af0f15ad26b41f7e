/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"testing"
	"testing/fstest"
)

func TestLoadResources(t *testing.T) {
	resources, err := loadResources(assets)
	if err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		intent requestIntent
		magic  string
	}{
		{intentIndex, "<!DOCTYPE html>"},
		{intentFavicon, "\x00\x00\x01\x00"},
		{intentLogo, "\xff\xd8\xff"},
		{intentRefreshImage, "\x89PNG"},
	} {
		res, ok := resources[tc.intent]
		if !ok {
			t.Fatalf("no resource for %s", tc.intent)
		}
		if res.status != "200 OK" || !bytes.HasPrefix(res.body, []byte(tc.magic)) {
			t.Errorf("%s: status %q, body starts %q", tc.intent, res.status, res.body[:min(len(res.body), 16)])
		}
	}

	if _, ok := resources[intentDiceValue]; ok {
		t.Fatal("dice values must not be a static resource")
	}
}

func TestLoadResourcesMissingFile(t *testing.T) {
	fsys := fstest.MapFS{
		"assets/index.html": {Data: []byte("<!DOCTYPE html>")},
	}

	if _, err := loadResources(fsys); err == nil {
		t.Fatal("loaded resources with files missing")
	}
}
