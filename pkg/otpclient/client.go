// Package otpclient is the caller-facing facade over the OTP service:
// thin wrappers around the send/verify/status/cleanup endpoints plus
// the pure code-format helpers the UI needs.
package otpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// defaultRateMax mirrors the service default of 3 issues per hour. The
// pre-flight check is advisory only; the authoritative limit is
// enforced server-side on every send.
const defaultRateMax = 3

// OTPRequest asks the service to issue a code.
type OTPRequest struct {
	Email  string  `json:"email"`
	Type   string  `json:"type"`
	UserID *string `json:"user_id,omitempty"`
	Phone  *string `json:"phone,omitempty"`
}

// OTPVerification submits a code for consumption.
type OTPVerification struct {
	Email   string `json:"email"`
	OTPCode string `json:"otp_code"`
	Type    string `json:"type"`
}

// OTPResponse is the send-otp reply.
type OTPResponse struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// VerifyOTPResponse is the verify-otp reply.
type VerifyOTPResponse struct {
	Valid        bool            `json:"valid"`
	Message      string          `json:"message"`
	Type         string          `json:"type,omitempty"`
	Email        string          `json:"email,omitempty"`
	ActionResult json.RawMessage `json:"action_result,omitempty"`
	VerifiedAt   *time.Time      `json:"verified_at,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// OTPStatus is the status reply.
type OTPStatus struct {
	HasValidOTP        bool       `json:"has_valid_otp"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	AttemptsInLastHour int        `json:"attempts_in_last_hour"`
}

type cleanupResponse struct {
	Deleted int    `json:"deleted"`
	Error   string `json:"error,omitempty"`
}

// Client talks to one OTP service instance.
type Client struct {
	baseURL    string
	adminKey   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAdminKey sets the key sent with CleanupExpired calls.
func WithAdminKey(key string) Option {
	return func(c *Client) { c.adminKey = key }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestOTP issues a new code. Non-2xx replies are returned as the
// decoded envelope, not as a Go error: the envelope's Success/Error
// fields carry the outcome, matching how the UI consumes them.
func (c *Client) RequestOTP(ctx context.Context, req OTPRequest) (*OTPResponse, error) {
	var res OTPResponse
	if err := c.post(ctx, "/v1/otp/send", req, &res, ""); err != nil {
		return nil, err
	}
	return &res, nil
}

// VerifyOTP submits a code. An invalid or expired code is not a Go
// error — the envelope comes back with Valid=false.
func (c *Client) VerifyOTP(ctx context.Context, v OTPVerification) (*VerifyOTPResponse, error) {
	var res VerifyOTPResponse
	if err := c.post(ctx, "/v1/otp/verify", v, &res, ""); err != nil {
		return nil, err
	}
	return &res, nil
}

// Status reports whether a live code exists and how many were issued in
// the current window.
func (c *Client) Status(ctx context.Context, email, otpType string) (*OTPStatus, error) {
	q := url.Values{"email": {email}, "type": {otpType}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/otp/status?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("otp status: unexpected status %d", resp.StatusCode)
	}
	var res OTPStatus
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CheckRateLimit is a pre-flight advisory: it reports whether another
// issue call would likely be allowed. It fails OPEN — any transport or
// decode error yields true, because the server enforces the real limit
// and a broken pre-flight must not lock out a legitimate user.
func (c *Client) CheckRateLimit(ctx context.Context, email, otpType string) bool {
	status, err := c.Status(ctx, email, otpType)
	if err != nil {
		return true
	}
	return status.AttemptsInLastHour < defaultRateMax
}

// CleanupExpired asks the service to delete expired records, returning
// the deleted count. Requires the admin key.
func (c *Client) CleanupExpired(ctx context.Context) (int, error) {
	var res cleanupResponse
	if err := c.post(ctx, "/v1/otp/cleanup", struct{}{}, &res, c.adminKey); err != nil {
		return 0, err
	}
	if res.Error != "" {
		return 0, fmt.Errorf("cleanup: %s", res.Error)
	}
	return res.Deleted, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}, adminKey string) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if adminKey != "" {
		req.Header.Set("X-Admin-Key", adminKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	// 4xx/5xx replies still carry a decodable envelope.
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response (status %d): %w", path, resp.StatusCode, err)
	}
	return nil
}
