package otp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/techcreator/otp-service/internal/domain"
	"github.com/techcreator/otp-service/internal/pkg/id"
	pkgotp "github.com/techcreator/otp-service/internal/pkg/otp"
)

// SendRequest asks for a new code to be issued and delivered.
type SendRequest struct {
	Email  string         `json:"email" validate:"required,email"`
	Type   domain.Purpose `json:"type" validate:"required,oneof=email_change password_reset signup_verification"`
	UserID *string        `json:"user_id"`
	Phone  *string        `json:"phone"` // optional SMS copy of the code
}

// VerifyRequest submits a code for consumption.
type VerifyRequest struct {
	Email   string         `json:"email" validate:"required,email"`
	OTPCode string         `json:"otp_code" validate:"required"`
	Type    domain.Purpose `json:"type" validate:"required,oneof=email_change password_reset signup_verification"`
}

type SendResult struct {
	ExpiresAt time.Time
}

type VerifyResult struct {
	Purpose      domain.Purpose
	Email        string
	ActionResult *domain.ActionResult
	VerifiedAt   time.Time
}

type StatusResult struct {
	HasValidOTP        bool       `json:"has_valid_otp"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	AttemptsInLastHour int        `json:"attempts_in_last_hour"`
}

// Store is what the service requires from the OTP persistence layer.
type Store interface {
	Put(ctx context.Context, o *domain.OTP) error
	FindValid(ctx context.Context, email, code string, purpose domain.Purpose) (*domain.OTP, error)
	MarkUsed(ctx context.Context, otpID string) (bool, error)
	CountSince(ctx context.Context, email string, purpose domain.Purpose, since time.Time) (int, error)
	LatestLive(ctx context.Context, email string, purpose domain.Purpose) (*domain.OTP, error)
	DeleteExpired(ctx context.Context) (int, error)
}

// Mailer dispatches a rendered message to one recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string, tags []string) error
}

// SMSSender is the optional SMS delivery channel.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// Identity is the account capability consumed by the email_change side effect.
type Identity interface {
	SetEmail(ctx context.Context, accountID, email string) error
}

type Service interface {
	Send(ctx context.Context, req SendRequest) (*SendResult, error)
	Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error)
	Status(ctx context.Context, email string, purpose domain.Purpose) (*StatusResult, error)
	Cleanup(ctx context.Context) (int, error)
}

// ServiceDeps bundles the collaborators and tunables for NewService.
// TTL, RateWindow and RateMax come from config so tests can shrink them.
type ServiceDeps struct {
	Store      Store
	Mailer     Mailer
	SMSSender  SMSSender
	Identity   Identity
	TTL        time.Duration
	RateWindow time.Duration
	RateMax    int
}

type service struct {
	store      Store
	mailer     Mailer
	sms        SMSSender
	identity   Identity
	ttl        time.Duration
	rateWindow time.Duration
	rateMax    int
}

func NewService(deps ServiceDeps) Service {
	return &service{
		store:      deps.Store,
		mailer:     deps.Mailer,
		sms:        deps.SMSSender,
		identity:   deps.Identity,
		ttl:        deps.TTL,
		rateWindow: deps.RateWindow,
		rateMax:    deps.RateMax,
	}
}

// allowIssue recomputes the sliding-window count from stored history on
// every check. On a lookup failure the policy fails OPEN: blocking a
// legitimate user over a transient store error costs more than letting
// one extra code through. Deliberate availability-over-strictness
// choice; do not tighten it.
func (s *service) allowIssue(ctx context.Context, email string, purpose domain.Purpose) bool {
	n, err := s.store.CountSince(ctx, email, purpose, time.Now().UTC().Add(-s.rateWindow))
	if err != nil {
		slog.Warn("rate-limit lookup failed, allowing issuance", "email", email, "purpose", purpose, "err", err)
		return true
	}
	return n < s.rateMax
}

func (s *service) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	if req.Email == "" || !req.Type.Valid() {
		return nil, fmt.Errorf("email and type are required: %w", domain.ErrBadRequest)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if !s.allowIssue(ctx, email, req.Type) {
		return nil, fmt.Errorf("too many codes issued for %s: %w", email, domain.ErrRateLimited)
	}

	code := pkgotp.GenerateCode()
	now := time.Now().UTC()
	rec := &domain.OTP{
		Email:     email,
		Code:      code,
		Purpose:   req.Type,
		SubjectID: req.UserID,
		IsUsed:    false,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	rec.TTLEpoch = rec.ExpiresAt.Unix()
	rec.OTPID = id.New()

	if err := s.store.Put(ctx, rec); err != nil {
		slog.Error("failed to persist otp", "email", email, "purpose", req.Type, "err", err)
		return nil, fmt.Errorf("failed to store OTP: %w", domain.ErrPersistence)
	}

	subject, html, err := renderEmail(req.Type, code, email, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("render OTP email: %w", err)
	}
	tags := []string{"otp", "verification", string(req.Type)}
	if err := s.mailer.Send(ctx, email, subject, html, tags); err != nil {
		// The record stays persisted and rate-counted: a failed delivery
		// still consumes one issuance slot.
		slog.Error("failed to send otp email", "email", email, "purpose", req.Type, "err", err)
		return nil, fmt.Errorf("failed to send OTP email: %w", domain.ErrDelivery)
	}

	if s.sms != nil && req.Phone != nil {
		msg := fmt.Sprintf("Your verification code is %s. Valid for %d minutes.", code, int(s.ttl.Minutes()))
		if err := s.sms.SendSMS(ctx, *req.Phone, msg); err != nil {
			slog.Warn("sms copy failed", "purpose", req.Type, "err", err)
		}
	}

	return &SendResult{ExpiresAt: rec.ExpiresAt}, nil
}

func (s *service) Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	if req.Email == "" || req.OTPCode == "" || !req.Type.Valid() {
		return nil, fmt.Errorf("email, OTP code, and type are required: %w", domain.ErrBadRequest)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	rec, err := s.store.FindValid(ctx, email, req.OTPCode, req.Type)
	if err != nil {
		slog.Error("otp lookup failed", "email", email, "purpose", req.Type, "err", err)
		return nil, fmt.Errorf("failed to verify OTP: %w", domain.ErrPersistence)
	}
	if rec == nil {
		return nil, domain.ErrInvalidOTP
	}

	applied, err := s.store.MarkUsed(ctx, rec.OTPID)
	if err != nil {
		slog.Error("failed to mark otp used", "otp_id", rec.OTPID, "err", err)
		return nil, fmt.Errorf("failed to verify OTP: %w", domain.ErrPersistence)
	}
	if !applied {
		// Lost the race to a concurrent verification. Reported exactly
		// like not-found so "already used" is not distinguishable.
		return nil, domain.ErrInvalidOTP
	}

	return &VerifyResult{
		Purpose:      req.Type,
		Email:        email,
		ActionResult: s.applySideEffect(ctx, rec, email),
		VerifiedAt:   time.Now().UTC(),
	}, nil
}

// applySideEffect runs the purpose-specific follow-up. A failure here is
// reported in the result but never reverts the consumed code: retrying
// with a spent code would just invite spam against a flaky downstream.
func (s *service) applySideEffect(ctx context.Context, rec *domain.OTP, email string) *domain.ActionResult {
	switch rec.Purpose {
	case domain.PurposeEmailChange:
		if rec.SubjectID == nil {
			return nil
		}
		if err := s.identity.SetEmail(ctx, *rec.SubjectID, email); err != nil {
			slog.Error("failed to update account email", "account_id", *rec.SubjectID, "err", err)
			return &domain.ActionResult{Error: "Failed to update email"}
		}
		return &domain.ActionResult{Success: true, Message: "Email updated successfully"}
	case domain.PurposePasswordReset, domain.PurposeSignupVerification:
		// No automatic side effect: the caller proceeds with its own
		// follow-up action once it sees valid:true.
		return nil
	}
	return nil
}

func (s *service) Status(ctx context.Context, email string, purpose domain.Purpose) (*StatusResult, error) {
	if email == "" || !purpose.Valid() {
		return nil, fmt.Errorf("email and type are required: %w", domain.ErrBadRequest)
	}
	email = strings.ToLower(strings.TrimSpace(email))

	res := &StatusResult{}
	live, err := s.store.LatestLive(ctx, email, purpose)
	if err != nil {
		return nil, fmt.Errorf("otp status lookup: %w", domain.ErrPersistence)
	}
	if live != nil {
		res.HasValidOTP = true
		res.ExpiresAt = &live.ExpiresAt
	}

	n, err := s.store.CountSince(ctx, email, purpose, time.Now().UTC().Add(-s.rateWindow))
	if err != nil {
		return nil, fmt.Errorf("otp status lookup: %w", domain.ErrPersistence)
	}
	res.AttemptsInLastHour = n
	return res, nil
}

func (s *service) Cleanup(ctx context.Context) (int, error) {
	n, err := s.store.DeleteExpired(ctx)
	if err != nil {
		slog.Error("cleanup of expired otps failed", "err", err)
		return 0, fmt.Errorf("failed to delete expired OTPs: %w", domain.ErrPersistence)
	}
	slog.Info("deleted expired otps", "count", n)
	return n, nil
}
