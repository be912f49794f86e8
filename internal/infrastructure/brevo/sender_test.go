package brevo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techcreator/otp-service/internal/config"
)

func testSender(endpoint string) *Sender {
	return NewSender(&config.Config{
		BrevoAPIKey:      "key-123",
		BrevoSenderName:  "TechCreator",
		BrevoSenderEmail: "noreply@example.com",
	}).WithEndpoint(endpoint)
}

func TestSend_PayloadAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-123", r.Header.Get("api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var p emailPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, "TechCreator", p.Sender.Name)
		assert.Equal(t, "noreply@example.com", p.Sender.Email)
		require.Len(t, p.To, 1)
		assert.Equal(t, "user@example.com", p.To[0].Email)
		assert.Equal(t, "Password Reset - Your OTP Code", p.Subject)
		assert.Contains(t, p.HTMLContent, "123456")
		assert.Equal(t, []string{"otp", "verification", "password_reset"}, p.Tags)

		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := testSender(srv.URL)
	err := s.Send(context.Background(), "user@example.com",
		"Password Reset - Your OTP Code", "<b>123456</b>",
		[]string{"otp", "verification", "password_reset"})
	assert.NoError(t, err)
}

func TestSend_APIErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"unauthorized","message":"Key not found"}`))
	}))
	defer srv.Close()

	s := testSender(srv.URL)
	err := s.Send(context.Background(), "user@example.com", "subj", "<b>1</b>", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "Key not found")
}
