package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrNotFound    = errors.New("not found")
	ErrRateLimited = errors.New("rate limit exceeded")
	ErrPersistence = errors.New("persistence failure")
	ErrDelivery    = errors.New("delivery failure")

	// ErrInvalidOTP is the single undifferentiated verification failure.
	// It covers: no such code, wrong code, wrong purpose, expired, and
	// already used. A caller able to tell those apart gains an
	// enumeration oracle, so the distinction stays internal.
	ErrInvalidOTP = errors.New("invalid or expired OTP code")
)
