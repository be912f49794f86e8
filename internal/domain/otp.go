package domain

import "time"

// Purpose is the closed set of actions an OTP may authorize. Codes are
// scoped per purpose: a code issued for one purpose never satisfies a
// verification for another, even with identical email and digits.
type Purpose string

const (
	PurposeEmailChange        Purpose = "email_change"
	PurposePasswordReset      Purpose = "password_reset"
	PurposeSignupVerification Purpose = "signup_verification"
)

// Valid reports whether p is one of the three known purposes.
func (p Purpose) Valid() bool {
	switch p {
	case PurposeEmailChange, PurposePasswordReset, PurposeSignupVerification:
		return true
	}
	return false
}

// OTP is one issued one-time code.
// PK: otp_id (ULID — sorts by creation time, so descending queries are
// latest-first). GSI email-index: HASH email, RANGE otp_id.
// TTLEpoch mirrors ExpiresAt as Unix seconds for DynamoDB TTL.
type OTP struct {
	OTPID      string     `json:"id" dynamodbav:"otp_id"`
	Email      string     `json:"email" dynamodbav:"email"` // normalized lower-case
	Code       string     `json:"-" dynamodbav:"otp_code"`  // 6 ASCII digits
	Purpose    Purpose    `json:"type" dynamodbav:"purpose"`
	SubjectID  *string    `json:"user_id,omitempty" dynamodbav:"subject_id"`
	IsUsed     bool       `json:"is_used" dynamodbav:"is_used"`
	CreatedAt  time.Time  `json:"created_at" dynamodbav:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at" dynamodbav:"expires_at"`
	TTLEpoch   int64      `json:"-" dynamodbav:"ttl_epoch"`
	VerifiedAt *time.Time `json:"verified_at,omitempty" dynamodbav:"verified_at"`
}

// Live reports whether the record can still be consumed at the given instant.
func (o *OTP) Live(now time.Time) bool {
	return !o.IsUsed && now.Before(o.ExpiresAt)
}

// ActionResult reports the outcome of the purpose-specific side effect
// executed after a successful verification. A side-effect failure does
// not revert the code to unused; the code is spent either way.
type ActionResult struct {
	Success bool   `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Account is the slice of the identity store this core touches: the
// email_change side effect rewrites the stored address of the subject
// account.
type Account struct {
	AccountID      string    `json:"id" dynamodbav:"account_id"`
	Email          string    `json:"email" dynamodbav:"email"`
	EmailConfirmed bool      `json:"email_confirmed" dynamodbav:"email_confirmed"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updated" dynamodbav:"updated_at"`
}
