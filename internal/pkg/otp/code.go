package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// CodeLength is the fixed number of digits in an issued code.
const CodeLength = 6

// codeSpan covers [100000, 999999]: every draw renders to exactly six
// digits with no leading-zero truncation.
var codeSpan = big.NewInt(900000)

// GenerateCode produces a uniformly random 6-digit numeric code.
// The 6-digit space is brute-forceable by design; protection comes from
// expiry, single use, and rate limiting, not from entropy.
func GenerateCode() string {
	n, err := rand.Int(rand.Reader, codeSpan)
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken;
		// nothing sensible to degrade to at that point.
		panic("otp: read random: " + err.Error())
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}
