package id

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs are lexicographically sortable
// by creation time, which the OTP store relies on for latest-first
// queries and creation-window counting.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// Floor returns the smallest ULID string carrying t's timestamp.
// Range conditions of the form `otp_id >= Floor(t)` select every record
// created at or after t without a separate created_at index.
func Floor(t time.Time) string {
	var u ulid.ULID
	_ = u.SetTime(ulid.Timestamp(t))
	return u.String()
}
