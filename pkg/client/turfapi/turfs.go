package turfapi

import (
	"context"
	"fmt"
	"net/http"
)

// Turfs lists all turfs visible to the player.
func (c *Client) Turfs(ctx context.Context) ([]Turf, error) {
	var payload listPayload
	if err := c.do(ctx, http.MethodGet, pathTurfs, nil, nil, &payload); err != nil {
		return nil, err
	}
	var out []Turf
	if err := payload.decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// FeaturedTurfs lists turfs flagged for the home screen.
func (c *Client) FeaturedTurfs(ctx context.Context) ([]Turf, error) {
	var payload listPayload
	if err := c.do(ctx, http.MethodGet, pathFeaturedTurfs, nil, nil, &payload); err != nil {
		return nil, err
	}
	var out []Turf
	if err := payload.decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// Turf returns one turf by id.
func (c *Client) Turf(ctx context.Context, id int64) (*Turf, error) {
	var out Turf
	path := fmt.Sprintf("%s/%d", pathTurfs, id)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
