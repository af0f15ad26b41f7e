/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultConnTimeout = 2 * time.Second
	acceptPoll         = 2 * time.Millisecond
)

// resource is a canned response.
type resource struct {
	status      string
	contentType string
	body        []byte
}

var notFound = resource{
	status:      "404 Not Found",
	contentType: "text/html",
	body:        []byte("404 Page not found.<br>"),
}

// Responder answers the device web page, one connection per Update.
type Responder struct {
	ln        net.Listener
	result    *DieResult
	resources map[requestIntent]resource
	timeout   time.Duration
	poll      time.Duration
	log       zerolog.Logger
}

func newResponder(ln net.Listener, result *DieResult, resources map[requestIntent]resource, timeout time.Duration, log zerolog.Logger) *Responder {
	return &Responder{
		ln:        ln,
		result:    result,
		resources: resources,
		timeout:   timeout,
		poll:      acceptPoll,
		log:       log,
	}
}

// Addr returns the address the responder listens on.
func (r *Responder) Addr() net.Addr {
	return r.ln.Addr()
}

// Close stops listening.
func (r *Responder) Close() error {
	return r.ln.Close()
}

type deadlineListener interface {
	SetDeadline(t time.Time) error
}

// Update serves at most one pending connection and returns. It does not wait
// for a client to connect.
func (r *Responder) Update(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if dl, ok := r.ln.(deadlineListener); ok {
		if err := dl.SetDeadline(time.Now().Add(r.poll)); err != nil {
			return fmt.Errorf("set accept deadline: %w", err)
		}
	}

	conn, err := r.ln.Accept()
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil
		}
		return fmt.Errorf("accept: %w", err)
	}

	r.serve(conn)

	return nil
}

func (r *Responder) serve(conn net.Conn) {
	defer conn.Close()

	start := time.Now()
	remote := conn.RemoteAddr().String()
	log := r.log.With().Str("client", remote).Logger()

	log.Debug().Msg("new client")

	// Network deadlines run on the wall clock.
	if err := conn.SetDeadline(start.Add(r.timeout)); err != nil {
		log.Warn().Err(err).Msg("cannot bound client, dropping it")
		return
	}

	var (
		c   classifier
		buf = make([]byte, 512)
	)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			log.Trace().Bytes("data", buf[:n]).Msg("request bytes")

			if _, done := c.write(buf[:n]); done {
				break
			}
		}
		if err != nil {
			switch {
			case errors.Is(err, os.ErrDeadlineExceeded):
				log.Warn().Dur("budget", r.timeout).Msg("forcing client stop")
			case errors.Is(err, io.EOF):
				log.Debug().Msg("client left before end of request")
			default:
				log.Warn().Err(err).Msg("read failed")
			}
			return
		}
	}

	res := r.respond(c.intent)

	written, err := conn.Write(encodeResponse(res))
	if err != nil {
		log.Warn().Err(err).Msg("write failed")
		return
	}

	log.Debug().
		Stringer("intent", c.intent).
		Str("status", res.status).
		Str("size", byteCount(written)).
		Dur("took", time.Since(start).Round(time.Microsecond)).
		Msg("client served")
}

func (r *Responder) respond(intent requestIntent) resource {
	if intent == intentDiceValue {
		return resource{
			status:      "200 OK",
			contentType: "application/javascript",
			body:        diceScript(r.result.Load()),
		}
	}

	if res, ok := r.resources[intent]; ok {
		return res
	}

	return notFound
}

// diceScript renders the dice as the script the index page includes.
func diceScript(v DiceValues) []byte {
	b := fmt.Appendf(nil, "var dice1value = \"%c\";\n", byte(v.Die1))
	return fmt.Appendf(b, "var dice2value = \"%c\";\n", byte(v.Die2))
}

func encodeResponse(res resource) []byte {
	b := make([]byte, 0, len(res.body)+64)
	b = fmt.Appendf(b, "HTTP/1.1 %s\r\nContent-type:%s\r\n\r\n", res.status, res.contentType)
	return append(b, res.body...)
}

// byteCount formats n with a decimal unit, for log lines.
func byteCount(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d B", n)
	}

	v, units := float64(n)/1000, "kMG"
	for len(units) > 1 && v >= 1000 {
		v /= 1000
		units = units[1:]
	}
	return fmt.Sprintf("%.1f %cB", v, units[0])
}
