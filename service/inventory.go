package service

import (
	"context"
	"errors"
	"fmt"

	"studio-booking-cli/model"
)

// ListStudios fetches every studio known to the backend.
func (c *Client) ListStudios(ctx context.Context) ([]model.Studio, error) {
	endpoint := fmt.Sprintf("%s/cinema/studios", c.baseURL)

	var studios []model.Studio
	if err := c.getJSON(ctx, endpoint, "", &studios); err != nil {
		return nil, err
	}
	return studios, nil
}

// ListSeats fetches the seats of a studio with their current availability.
// An error means availability is unknown; callers must not treat it as an
// empty studio.
func (c *Client) ListSeats(ctx context.Context, studioID int64) ([]model.Seat, error) {
	if studioID <= 0 {
		return nil, errors.New("studio id is required")
	}
	endpoint := fmt.Sprintf("%s/cinema/studios/%d/seats", c.baseURL, studioID)

	var seats []model.Seat
	if err := c.getJSON(ctx, endpoint, "", &seats); err != nil {
		return nil, err
	}
	return seats, nil
}
