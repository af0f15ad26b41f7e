/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

const timeout time.Duration = 10 * time.Second

func securityHeaders(w http.ResponseWriter) {
	w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
	w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'self'")
}

// diceSnapshot is the JSON view of the device.
type diceSnapshot struct {
	State       string `json:"state"`
	Dice1       string `json:"dice1"`
	Dice2       string `json:"dice2"`
	Seq         uint64 `json:"seq"`
	Orientation string `json:"orientation"`
}

func snapshotOf(d *Device) diceSnapshot {
	v := d.result.Load()
	st := d.Status()

	return diceSnapshot{
		State:       st.State.String(),
		Dice1:       v.Die1.String(),
		Dice2:       v.Die2.String(),
		Seq:         v.Seq,
		Orientation: st.Orientation.String(),
	}
}

func serveVersion(errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(w)
		w.WriteHeader(http.StatusOK)

		_, err := w.Write([]byte("dicebox v" + releaseVersion + "\n"))
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveDice(d *Device, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(w)

		if err := json.NewEncoder(w).Encode(snapshotOf(d)); err != nil {
			errs <- err

			return
		}
	}
}

func pressButton(d *Device, log zerolog.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		securityHeaders(w)

		switch button := p.ByName("button"); button {
		case "reroll", "a":
			d.panel.PressReroll()
		case "orientation", "b":
			d.panel.PressOrientation()
		default:
			http.Error(w, "unknown button", http.StatusNotFound)
			return
		}

		log.Debug().Str("button", p.ByName("button")).Str("client", r.RemoteAddr).Msg("button pressed")

		w.WriteHeader(http.StatusNoContent)
	}
}

func setShake(d *Device) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		securityHeaders(w)

		if d.sim == nil {
			http.Error(w, "sensor is not simulated", http.StatusConflict)
			return
		}

		g, err := strconv.ParseFloat(r.URL.Query().Get("intensity"), 64)
		if err != nil || g < 0 {
			http.Error(w, "intensity must be a non-negative number", http.StatusBadRequest)
			return
		}

		d.sim.SetIntensity(g)

		w.WriteHeader(http.StatusNoContent)
	}
}

func serveQR(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		png, err := wifiQRCode(cfg.ssid, cfg.passphrase, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(png)))
		securityHeaders(w)

		if _, err := w.Write(png); err != nil {
			errs <- err
		}
	}
}

func newCompanionRouter(cfg *Config, d *Device, log zerolog.Logger, errs chan<- error) *httprouter.Router {
	mux := httprouter.New()

	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, i any) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(w)
		w.WriteHeader(http.StatusInternalServerError)

		io.WriteString(w, newPage("Server Error", "An error has occurred. Please try again."))
	}

	mux.GET("/", serveHomePage(d, errs))
	mux.GET("/healthz", serveHealthCheck(errs))
	mux.GET("/version", serveVersion(errs))
	mux.GET("/qr", serveQR(cfg, errs))
	mux.GET("/ws", serveFeed(newFeed(d, log)))
	mux.GET("/api/dice", serveDice(d, errs))
	mux.POST("/api/buttons/:button", pressButton(d, log))
	mux.POST("/api/sim/shake", setShake(d))

	if cfg.profile {
		registerProfileHandlers(mux)
	}

	return mux
}

// serveCompanion starts the companion server. The returned func shuts it down.
func serveCompanion(ctx context.Context, cfg *Config, d *Device, log zerolog.Logger) (func(), error) {
	errs := make(chan error, 64)

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.companionPort)),
		Handler:           newCompanionRouter(cfg, d, log, errs),
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       timeout,
		ReadHeaderTimeout: timeout,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("companion listen: %w", err)
	}

	go func() {
		for {
			select {
			case err := <-errs:
				log.Debug().Err(err).Msg("response write failed")
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		log.Info().Msgf("listening on http://%s/", ln.Addr())

		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("companion server stopped")
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}, nil
}
