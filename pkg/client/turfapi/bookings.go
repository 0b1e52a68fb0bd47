package turfapi

import (
	"context"
	"fmt"
	"net/http"
)

// Bookings lists the player's bookings, newest first.
func (c *Client) Bookings(ctx context.Context) ([]Booking, error) {
	var payload listPayload
	if err := c.do(ctx, http.MethodGet, pathBookings, nil, nil, &payload); err != nil {
		return nil, err
	}
	var out []Booking
	if err := payload.decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateBooking books the given slots as one booking and returns its id.
// The slot ids must form a contiguous block; the server re-validates.
func (c *Client) CreateBooking(ctx context.Context, slotIDs []int64) (int64, error) {
	body := map[string]any{"slot_ids": slotIDs}
	var out struct {
		ID   int64 `json:"id"`
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, pathBookings, nil, body, &out); err != nil {
		return 0, err
	}
	if out.ID != 0 {
		return out.ID, nil
	}
	return out.Data.ID, nil
}

// CancelBooking cancels a confirmed booking.
func (c *Client) CancelBooking(ctx context.Context, id int64) error {
	path := fmt.Sprintf("%s/%d/cancel", pathBookings, id)
	return c.do(ctx, http.MethodPost, path, nil, nil, nil)
}
