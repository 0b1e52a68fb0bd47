// Package turfapi is a typed client for the player-facing turf booking
// REST API. Endpoints are rooted at <base>/api/v1/player and authorized
// with a bearer token obtained from the OTP login flow.
package turfapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/turfhub/tg_turf_bot/pkg/utils/errs"
)

// API paths.
const (
	pathSendOTP       = "/auth/send-otp"
	pathVerifyOTP     = "/auth/verify-otp"
	pathLogout        = "/auth/logout"
	pathMe            = "/me"
	pathUpdateProfile = "/auth/profile"

	pathTurfs         = "/turfs"
	pathFeaturedTurfs = "/turfs/featured"

	pathAvailableSlots = "/slots/available"
	pathGenerateSlots  = "/slots/generate"

	pathBookings = "/bookings"
)

// APIError is a non-2xx response from the API. It carries enough shape
// for the booking engine to classify the failure without knowing
// anything about HTTP.
type APIError struct {
	Status  int                 `json:"-"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("turf api: %d %s", e.Status, e.Message)
}

func (e *APIError) HTTPStatus() int      { return e.Status }
func (e *APIError) APIMessage() string   { return e.Message }
func (e *APIError) HasFieldErrors() bool { return len(e.Errors) > 0 }

// Config for the client; BaseURL includes the /api/v1/player prefix.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Observer is called after every request for metrics collection.
type Observer func(method, path string, status int, elapsed time.Duration)

// Client talks to the turf API. The zero token means unauthenticated;
// use WithToken to bind a session credential. Clients are safe for
// concurrent use and WithToken copies are cheap.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
	observe Observer
	token   string
}

func New(cfg Config, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "turfapi").Logger(),
	}
}

// SetObserver installs a metrics hook for completed requests.
func (c *Client) SetObserver(o Observer) { c.observe = o }

// WithToken returns a copy of the client bound to a bearer token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return errs.New("encode request body").Arg("path", path).Wrap(err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return errs.New("build request").Arg("path", path).Wrap(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if c.observe != nil {
			c.observe(method, path, 0, time.Since(start))
		}
		// No status: the request never reached the service.
		return errs.New("request failed").Arg("path", path).Wrap(err)
	}
	defer resp.Body.Close()

	if c.observe != nil {
		c.observe(method, path, resp.StatusCode, time.Since(start))
	}
	c.logger.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("api call")

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errs.New("read response").Arg("path", path).Wrap(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errs.New("decode response").Arg("path", path).Wrap(err)
	}
	return nil
}

// listPayload tolerates both a bare JSON array and a {"data": [...]}
// envelope; the API uses both depending on the endpoint.
type listPayload struct {
	items json.RawMessage
}

func (l *listPayload) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		l.items = append(l.items[:0], trimmed...)
		return nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return err
	}
	l.items = envelope.Data
	return nil
}

func (l *listPayload) decode(out any) error {
	if len(l.items) == 0 {
		return nil
	}
	return json.Unmarshal(l.items, out)
}
