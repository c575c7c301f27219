package model

import "time"

// Seat is a snapshot of one seat as reported by the server. Available can be
// stale by the time a booking is submitted.
type Seat struct {
	ID         int64     `json:"id"`
	StudioID   int64     `json:"studio_id"`
	Label      string    `json:"seat_number"`
	Available  bool      `json:"is_available"`
	StudioName string    `json:"studio_name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SeatRow is one display row of a studio seat map.
type SeatRow struct {
	Row   string
	Seats []Seat
}
