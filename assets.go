/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed assets/*
var assets embed.FS

var staticAssets = []struct {
	intent      requestIntent
	name        string
	contentType string
}{
	{intentIndex, "assets/index.html", "text/html"},
	{intentFavicon, "assets/favicon.ico", "image/x-icon"},
	{intentLogo, "assets/electric-idea_50x50.jpg", "image/jpeg"},
	{intentRefreshImage, "assets/refresh-40x30.png", "image/png"},
}

// loadResources reads the static pages served by the responder.
func loadResources(fsys fs.FS) (map[requestIntent]resource, error) {
	resources := make(map[requestIntent]resource, len(staticAssets))

	for _, a := range staticAssets {
		data, err := fs.ReadFile(fsys, a.name)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", a.name, err)
		}

		resources[a.intent] = resource{
			status:      "200 OK",
			contentType: a.contentType,
			body:        data,
		}
	}

	return resources, nil
}
