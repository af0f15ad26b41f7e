/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"html"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
)

func serveHomePage(d *Device, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		s := snapshotOf(d)

		body := fmt.Sprintf("Die 1: %s &middot; Die 2: %s &middot; %s",
			html.EscapeString(s.Dice1),
			html.EscapeString(s.Dice2),
			html.EscapeString(s.State),
		)
		page := newPage("dicebox", body)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(page)))
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(w)

		_, err := w.Write([]byte(page))
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveHealthCheck(errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(w)

		_, err := w.Write([]byte("Ok\n"))
		if err != nil {
			errs <- err

			return
		}
	}
}
