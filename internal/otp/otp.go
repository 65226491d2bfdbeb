// Package otp implements phone-ownership verification: a 6-digit one-time
// code per user, delivered over SMS, valid for ten minutes.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/kavachhq/kavach-backend/internal/notify"
	"github.com/kavachhq/kavach-backend/internal/observability"
)

const (
	codeDigits = 6
	ttl        = 10 * time.Minute
)

var (
	ErrEmptyPhone    = errors.New("phone number is required")
	ErrNotConfigured = errors.New("sms service not configured")
	ErrSendFailed    = errors.New("failed to send verification code")
	ErrNotFound      = errors.New("no verification code found")
	ErrExpired       = errors.New("verification code expired")
	ErrMismatch      = errors.New("invalid verification code")
)

// Record is the per-user verification state. At most one live record exists
// per user; issuing a new code overwrites the previous one unconditionally.
type Record struct {
	Phone    string
	Code     string
	Expiry   time.Time
	Verified bool
}

// Status is the result of a pure status read.
type Status struct {
	Verified bool
	Phone    string
}

// Service is the OTP state machine. Expiry is a lazy check against the
// stored absolute timestamp, not a stored state; an expired record behaves
// like an absent one for subsequent issuance.
type Service struct {
	mu      sync.Mutex
	records map[string]*Record
	sms     notify.SMSSender
	metrics *observability.Metrics
	clock   clockwork.Clock
}

func NewService(sms notify.SMSSender, metrics *observability.Metrics, clock clockwork.Clock) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		records: make(map[string]*Record),
		sms:     sms,
		metrics: metrics,
		clock:   clock,
	}
}

// Issue generates a fresh code for the user, stores it, and attempts SMS
// delivery. The record is stored before the send is attempted, matching the
// overwrite-unconditionally contract.
func (s *Service) Issue(ctx context.Context, userID, phone string) error {
	if phone == "" {
		return ErrEmptyPhone
	}

	code, err := randomCode()
	if err != nil {
		return fmt.Errorf("generating code: %w", err)
	}

	s.mu.Lock()
	s.records[userID] = &Record{
		Phone:  phone,
		Code:   code,
		Expiry: s.clock.Now().Add(ttl),
	}
	s.mu.Unlock()
	s.metrics.OTPIssued.Inc()

	if s.sms == nil {
		slog.Warn("otp issued but sms provider unconfigured", "user", userID)
		return ErrNotConfigured
	}

	msg := fmt.Sprintf("Your KAVACH verification code is: %s\n\nThis code will expire in 10 minutes.\n\nDo not share this code with anyone.", code)
	if err := s.sms.SendSMS(ctx, phone, msg); err != nil {
		if errors.Is(err, notify.ErrNotConfigured) {
			return ErrNotConfigured
		}
		slog.Error("otp delivery failed", "user", userID, "error", err)
		return ErrSendFailed
	}

	slog.Info("otp sent", "user", userID)
	return nil
}

// Verify checks the submitted code by exact string equality. An expired
// record is deleted; a mismatch leaves the record untouched; a match marks
// it verified and keeps it, so re-verifying with the same code keeps
// succeeding until a new code is issued or the record expires.
func (s *Service) Verify(userID, code string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[userID]
	if !ok {
		s.metrics.OTPVerifications.WithLabelValues("not_found").Inc()
		return "", ErrNotFound
	}

	if s.clock.Now().After(rec.Expiry) {
		delete(s.records, userID)
		s.metrics.OTPVerifications.WithLabelValues("expired").Inc()
		return "", ErrExpired
	}

	if rec.Code != code {
		s.metrics.OTPVerifications.WithLabelValues("mismatch").Inc()
		return "", ErrMismatch
	}

	rec.Verified = true
	s.metrics.OTPVerifications.WithLabelValues("success").Inc()
	return rec.Phone, nil
}

// Status never errors; an absent record reads as unverified with no phone.
func (s *Service) Status(userID string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[userID]
	if !ok || !rec.Verified {
		return Status{}
	}
	return Status{Verified: true, Phone: rec.Phone}
}

// randomCode returns a uniformly random 6-digit numeric string, leading
// zeros allowed.
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n), nil
}
