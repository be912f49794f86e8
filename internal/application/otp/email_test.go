package otp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techcreator/otp-service/internal/domain"
)

func TestRenderEmail_SubjectPerPurpose(t *testing.T) {
	cases := []struct {
		purpose domain.Purpose
		subject string
	}{
		{domain.PurposeEmailChange, "Email Change Verification - Your OTP Code"},
		{domain.PurposePasswordReset, "Password Reset - Your OTP Code"},
		{domain.PurposeSignupVerification, "Account Verification - Your OTP Code"},
	}
	for _, tc := range cases {
		t.Run(string(tc.purpose), func(t *testing.T) {
			subject, html, err := renderEmail(tc.purpose, "123456", "a@b.com", 10*time.Minute)
			require.NoError(t, err)
			assert.Equal(t, tc.subject, subject)
			assert.Contains(t, html, "123456")
			assert.Contains(t, html, "a@b.com")
			assert.Contains(t, html, "10 minutes")
		})
	}
}

func TestRenderEmail_TTLFromConfigNotHardcoded(t *testing.T) {
	_, html, err := renderEmail(domain.PurposePasswordReset, "654321", "a@b.com", 2*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, html, "2 minutes")
}
