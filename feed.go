/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

const (
	feedPoll      = 100 * time.Millisecond
	feedWriteWait = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// feed pushes a snapshot to one websocket viewer whenever the dice or the
// game state change.
type feed struct {
	device *Device
	poll   time.Duration
	busy   atomic.Bool
	log    zerolog.Logger
}

func newFeed(d *Device, log zerolog.Logger) *feed {
	return &feed{device: d, poll: feedPoll, log: log}
}

func serveFeed(f *feed) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if !f.busy.CompareAndSwap(false, true) {
			http.Error(w, "another viewer is connected", http.StatusConflict)
			return
		}
		defer f.busy.Store(false)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			f.log.Debug().Err(err).Msg("upgrade error")
			return
		}
		defer conn.Close()

		f.log.Debug().Str("client", r.RemoteAddr).Msg("viewer connected")

		f.stream(conn)

		f.log.Debug().Str("client", r.RemoteAddr).Msg("viewer left")
	}
}

// stream writes snapshots until the viewer goes away.
func (f *feed) stream(conn *websocket.Conn) {
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(f.poll)
	defer ticker.Stop()

	var last diceSnapshot
	first := true
	for {
		if s := snapshotOf(f.device); first || s != last {
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteJSON(s); err != nil {
				return
			}
			last, first = s, false
		}

		select {
		case <-gone:
			return
		case <-ticker.C:
		}
	}
}
