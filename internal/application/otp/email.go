package otp

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/techcreator/otp-service/internal/domain"
)

// purposeLabel returns the fixed subject label for a purpose. The
// switch is exhaustive over the closed purpose set; adding a purpose
// without a label is caught by the default.
func purposeLabel(p domain.Purpose) string {
	switch p {
	case domain.PurposeEmailChange:
		return "Email Change Verification"
	case domain.PurposePasswordReset:
		return "Password Reset"
	case domain.PurposeSignupVerification:
		return "Account Verification"
	}
	return "Verification"
}

func purposeDescription(p domain.Purpose) string {
	switch p {
	case domain.PurposeEmailChange:
		return "You requested to change your email address. Please use the verification code below to confirm this change."
	case domain.PurposePasswordReset:
		return "You requested to reset your password. Please use the verification code below to proceed."
	case domain.PurposeSignupVerification:
		return "Welcome! Please use the verification code below to verify your email address and complete your account setup."
	}
	return "Please use the verification code below to proceed."
}

type emailData struct {
	Label       string
	Description string
	Code        string
	Email       string
	Minutes     int
	Year        int
}

var emailTmpl = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Label}} - Your OTP Code</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: linear-gradient(135deg, #3b82f6, #1d4ed8); color: white; padding: 30px; text-align: center; border-radius: 8px 8px 0 0; }
    .content { background: #ffffff; padding: 30px; border: 1px solid #e5e7eb; }
    .footer { background: #f9fafb; padding: 20px; text-align: center; border-radius: 0 0 8px 8px; border: 1px solid #e5e7eb; border-top: none; }
    .otp-box { background: #fef3c7; border: 2px solid #f59e0b; padding: 20px; border-radius: 8px; margin: 20px 0; text-align: center; }
    .otp-code { font-size: 32px; font-weight: bold; color: #d97706; letter-spacing: 8px; margin: 10px 0; font-family: monospace; }
    .security-notice { background: #fee2e2; border: 1px solid #ef4444; padding: 15px; border-radius: 6px; margin: 15px 0; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>{{.Label}}</h1>
      <p>Secure verification code</p>
    </div>
    <div class="content">
      <h2>Hello,</h2>
      <p>{{.Description}}</p>
      <div class="otp-box">
        <h3 style="color: #d97706; margin-top: 0;">Your Verification Code</h3>
        <div class="otp-code">{{.Code}}</div>
        <p style="margin: 0; color: #92400e;">Enter this code to verify your email</p>
      </div>
      <div class="security-notice">
        <h3 style="color: #dc2626; margin-top: 0;">Security Information</h3>
        <ul style="margin: 0; color: #991b1b;">
          <li><strong>Valid for:</strong> {{.Minutes}} minutes only</li>
          <li><strong>One-time use:</strong> Code expires after verification</li>
          <li><strong>Email:</strong> {{.Email}}</li>
        </ul>
      </div>
      <h3>Verification Steps:</h3>
      <ol>
        <li>Return to the verification page</li>
        <li>Enter the 6-digit code: <strong>{{.Code}}</strong></li>
        <li>Click "Verify Code" to complete the process</li>
      </ol>
      <p>Never share this code with anyone. If you didn't request this, please ignore this email.</p>
    </div>
    <div class="footer">
      <p>&copy; {{.Year}} TechCreator. All rights reserved.</p>
      <p>This is an automated security message. Please do not reply to this email.</p>
    </div>
  </div>
</body>
</html>
`))

// renderEmail produces the subject line and HTML body for one purpose.
func renderEmail(p domain.Purpose, code, email string, ttl time.Duration) (subject, html string, err error) {
	subject = purposeLabel(p) + " - Your OTP Code"
	var buf bytes.Buffer
	err = emailTmpl.Execute(&buf, emailData{
		Label:       purposeLabel(p),
		Description: purposeDescription(p),
		Code:        code,
		Email:       email,
		Minutes:     int(ttl.Minutes()),
		Year:        time.Now().Year(),
	})
	if err != nil {
		return "", "", fmt.Errorf("execute otp email template: %w", err)
	}
	return subject, buf.String(), nil
}
