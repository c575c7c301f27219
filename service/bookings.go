package service

import (
	"context"
	"fmt"
	"strings"

	"studio-booking-cli/model"
)

// CreateOnlineBooking reserves seats on behalf of the token's owner.
func (c *Client) CreateOnlineBooking(ctx context.Context, token string, req model.OnlineBookingRequest) (model.BookingResponse, error) {
	if strings.TrimSpace(token) == "" {
		return model.BookingResponse{}, &AuthError{Reason: "missing identity token"}
	}
	endpoint := fmt.Sprintf("%s/booking/online", c.baseURL)

	var out model.BookingResponse
	if err := c.postJSON(ctx, endpoint, token, req, &out); err != nil {
		return model.BookingResponse{}, err
	}
	return out, nil
}

// CreateOfflineBooking reserves seats for a walk-in customer.
func (c *Client) CreateOfflineBooking(ctx context.Context, req model.OfflineBookingRequest) (model.BookingResponse, error) {
	endpoint := fmt.Sprintf("%s/booking/offline", c.baseURL)

	var out model.BookingResponse
	if err := c.postJSON(ctx, endpoint, "", req, &out); err != nil {
		return model.BookingResponse{}, err
	}
	return out, nil
}

// ValidateBooking asks the backend whether code is a live booking.
func (c *Client) ValidateBooking(ctx context.Context, code string) (model.ValidationResult, error) {
	endpoint := fmt.Sprintf("%s/booking/validate", c.baseURL)

	var out model.ValidationResult
	if err := c.postJSON(ctx, endpoint, "", model.ValidateRequest{BookingCode: code}, &out); err != nil {
		return model.ValidationResult{}, err
	}
	return out, nil
}

// MyBookings lists the bookings owned by the token's user.
func (c *Client) MyBookings(ctx context.Context, token string) ([]model.Booking, error) {
	if strings.TrimSpace(token) == "" {
		return nil, &AuthError{Reason: "missing identity token"}
	}
	endpoint := fmt.Sprintf("%s/booking/my-bookings", c.baseURL)

	var out []model.Booking
	if err := c.getJSON(ctx, endpoint, token, &out); err != nil {
		return nil, err
	}
	return out, nil
}
