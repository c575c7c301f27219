package model

import "time"

type BookingType string

const (
	BookingOnline  BookingType = "online"
	BookingOffline BookingType = "offline"
)

func (t BookingType) Valid() bool {
	return t == BookingOnline || t == BookingOffline
}

type BookingStatus string

const (
	BookingActive    BookingStatus = "active"
	BookingUsed      BookingStatus = "used"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingActive, BookingUsed, BookingCancelled:
		return true
	}
	return false
}

type Booking struct {
	ID        int64         `json:"id"`
	Code      string        `json:"booking_code"`
	UserID    *int64        `json:"user_id"`
	UserName  string        `json:"user_name"`
	UserEmail string        `json:"user_email"`
	StudioID  int64         `json:"studio_id"`
	SeatIDs   []int64       `json:"seat_ids"`
	QRCode    string        `json:"qr_code"`
	Type      BookingType   `json:"booking_type"`
	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type BookingResponse struct {
	Booking Booking `json:"booking"`
	QRCode  string  `json:"qrCode"`
}

type OnlineBookingRequest struct {
	StudioID int64   `json:"studioId"`
	SeatIDs  []int64 `json:"seatIds"`
}

type OfflineBookingRequest struct {
	StudioID      int64   `json:"studioId" validate:"required,gt=0"`
	SeatIDs       []int64 `json:"seatIds" validate:"required,min=1"`
	CustomerName  string  `json:"customerName" validate:"required"`
	CustomerEmail string  `json:"customerEmail" validate:"required,email"`
}

type ValidateRequest struct {
	BookingCode string `json:"bookingCode"`
}

// ValidatedBooking is the public-safe view of a booking returned to the gate.
type ValidatedBooking struct {
	BookingCode  string        `json:"bookingCode"`
	BookingType  BookingType   `json:"bookingType"`
	CustomerName string        `json:"customerName"`
	SeatIDs      []int64       `json:"seatIds"`
	StudioID     int64         `json:"studioId"`
	Status       BookingStatus `json:"status,omitempty"`
}

type ValidationResult struct {
	Valid   bool             `json:"valid"`
	Booking ValidatedBooking `json:"booking"`
}
