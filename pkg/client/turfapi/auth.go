package turfapi

import (
	"context"
	"net/http"
)

// AuthResult is the verify-otp response: the session token plus the
// player profile it belongs to.
type AuthResult struct {
	Token  string `json:"token"`
	Player Player `json:"player"`
}

// SendOTP asks the API to text a one-time code to the phone number.
func (c *Client) SendOTP(ctx context.Context, phone string) error {
	body := map[string]string{"phone": phone}
	return c.do(ctx, http.MethodPost, pathSendOTP, nil, body, nil)
}

// VerifyOTP exchanges phone+code for a session token.
func (c *Client) VerifyOTP(ctx context.Context, phone, otp string) (*AuthResult, error) {
	body := map[string]string{"phone": phone, "otp": otp}
	var out AuthResult
	if err := c.do(ctx, http.MethodPost, pathVerifyOTP, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout invalidates the bound session token server-side.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, pathLogout, nil, nil, nil)
}

// Me returns the profile for the bound token.
func (c *Client) Me(ctx context.Context) (*Player, error) {
	var out Player
	if err := c.do(ctx, http.MethodGet, pathMe, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile changes the player's name and email.
func (c *Client) UpdateProfile(ctx context.Context, name, email string) (*Player, error) {
	body := map[string]string{"name": name, "email": email}
	var out Player
	if err := c.do(ctx, http.MethodPut, pathUpdateProfile, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
