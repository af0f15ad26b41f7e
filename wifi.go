/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/skip2/go-qrcode"
)

const qrSize = 320

var wifiEscaper = strings.NewReplacer(`\`, `\\`, `;`, `\;`, `,`, `\,`, `:`, `\:`, `"`, `\"`)

// wifiJoinString is the payload phones understand as "join this network".
func wifiJoinString(ssid, passphrase string) string {
	if passphrase == "" {
		return fmt.Sprintf("WIFI:T:nopass;S:%s;;", wifiEscaper.Replace(ssid))
	}
	return fmt.Sprintf("WIFI:T:WPA;S:%s;P:%s;;", wifiEscaper.Replace(ssid), wifiEscaper.Replace(passphrase))
}

// wifiQRCode renders the join string as a PNG.
func wifiQRCode(ssid, passphrase string, size int) ([]byte, error) {
	return qrcode.Encode(wifiJoinString(ssid, passphrase), qrcode.Medium, size)
}

// announceNetwork prints how to reach the dice page: network name,
// passphrase, address and a QR code to join the network.
func announceNetwork(w io.Writer, ssid, passphrase, addr string) error {
	q, err := qrcode.New(wifiJoinString(ssid, passphrase), qrcode.Medium)
	if err != nil {
		return fmt.Errorf("wifi qr code: %w", err)
	}

	_, err = fmt.Fprintf(w, "SSID: %s\nPassword: %s\nIP address: %s\n%s\n", ssid, passphrase, addr, q.ToSmallString(false))
	return err
}
