package turfapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// AvailableSlots returns the raw slot records for one turf and date
// (YYYY-MM-DD). An empty list is a valid response.
func (c *Client) AvailableSlots(ctx context.Context, turfID int64, date string) ([]SlotRecord, error) {
	query := url.Values{
		"turf_id": {strconv.FormatInt(turfID, 10)},
		"date":    {date},
	}
	var payload listPayload
	if err := c.do(ctx, http.MethodGet, pathAvailableSlots, query, nil, &payload); err != nil {
		return nil, err
	}
	var out []SlotRecord
	if err := payload.decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateSlots asks the API to populate slots for a date that has none
// yet. Idempotent server-side.
func (c *Client) GenerateSlots(ctx context.Context, turfID int64, date string) error {
	body := map[string]any{"turf_id": turfID, "date": date}
	return c.do(ctx, http.MethodPost, pathGenerateSlots, nil, body, nil)
}
