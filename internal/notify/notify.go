// Package notify holds the delivery channels. Both channels share the same
// shape: take a destination and a structured alert, return an error that the
// alert path collapses to a boolean. Providers are swappable behind these
// interfaces.
package notify

import (
	"context"
	"errors"

	"github.com/kavachhq/kavach-backend/internal/models"
)

// ErrNotConfigured is returned by a provider whose credentials or endpoint
// are missing. The OTP path surfaces it as a typed error; the alert path
// records it as a plain delivery failure.
var ErrNotConfigured = errors.New("provider not configured")

// EmailSender delivers one alert to one address.
type EmailSender interface {
	SendAlert(ctx context.Context, to string, alert models.Alert) error
}

// SMSSender delivers a text message to one phone number.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}
