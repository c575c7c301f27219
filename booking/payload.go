package booking

import (
	"encoding/json"
	"strings"
)

type qrPayload struct {
	BookingCode string `json:"bookingCode"`
}

// EncodePayload builds the string carried by a ticket QR code.
func EncodePayload(code string) string {
	data, err := json.Marshal(qrPayload{BookingCode: code})
	if err != nil {
		return code
	}
	return string(data)
}

// ParsePayload extracts a booking code from a decoded scan. Structured
// payloads are JSON objects with a bookingCode, booking_code or code field;
// anything else is taken as the raw code. A recognised field that is blank
// yields "".
func ParsePayload(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "{") {
		return raw
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return raw
	}
	recognised := false
	for _, key := range []string{"bookingCode", "booking_code", "code"} {
		v, ok := fields[key]
		if !ok {
			continue
		}
		recognised = true
		if code, _ := v.(string); strings.TrimSpace(code) != "" {
			return strings.TrimSpace(code)
		}
	}
	if recognised {
		return ""
	}
	return raw
}
