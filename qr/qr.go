// Package qr renders ticket payloads as QR codes for the terminal.
package qr

import (
	"errors"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

var ErrEmptyPayload = errors.New("qr payload is empty")

type Renderer interface {
	Render(payload string) (string, error)
}

// Terminal draws codes with half-block characters, two modules per line.
type Terminal struct {
	Level   qrcode.RecoveryLevel
	Inverse bool
}

func NewTerminal() Terminal {
	return Terminal{Level: qrcode.Medium}
}

func (t Terminal) Render(payload string) (string, error) {
	if strings.TrimSpace(payload) == "" {
		return "", ErrEmptyPayload
	}
	code, err := qrcode.New(payload, t.Level)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(code.ToSmallString(t.Inverse), "\n"), nil
}

// PNG encodes payload as a PNG image of the given pixel size.
func PNG(payload string, size int) ([]byte, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, ErrEmptyPayload
	}
	return qrcode.Encode(payload, qrcode.Medium, size)
}
