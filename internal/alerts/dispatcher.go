package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kavachhq/kavach-backend/internal/models"
	"github.com/kavachhq/kavach-backend/internal/notify"
	"github.com/kavachhq/kavach-backend/internal/observability"
)

const channelTimeout = 10 * time.Second

// Delivery reports per-channel success for one dispatch.
type Delivery struct {
	EmailOK bool
	SMSOK   bool
}

// Dispatcher fans one alert out to the enabled channels. Channel attempts
// are independent: a failure or panic in one path never prevents the other,
// and every failure mode collapses to a boolean false. The log is the only
// place raw failure detail survives.
type Dispatcher struct {
	email   notify.EmailSender
	sms     notify.SMSSender
	metrics *observability.Metrics
}

// NewDispatcher accepts nil senders; an unavailable provider just means that
// channel reports false.
func NewDispatcher(email notify.EmailSender, sms notify.SMSSender, metrics *observability.Metrics) *Dispatcher {
	return &Dispatcher{
		email:   email,
		sms:     sms,
		metrics: metrics,
	}
}

// Dispatch attempts delivery of one alert. A channel is attempted only when
// its enable flag is set and the contact field is non-empty.
func (d *Dispatcher) Dispatch(ctx context.Context, alert models.Alert, settings models.AlertSettings) Delivery {
	var del Delivery

	if settings.EnableEmail && settings.Email != "" {
		del.EmailOK = d.attempt(ctx, "email", func(ctx context.Context) error {
			if d.email == nil {
				return notify.ErrNotConfigured
			}
			return d.email.SendAlert(ctx, settings.Email, alert)
		})
	} else {
		d.metrics.NotificationSends.WithLabelValues("email", "skipped").Inc()
	}

	if settings.EnableSMS && settings.Phone != "" {
		del.SMSOK = d.attempt(ctx, "sms", func(ctx context.Context) error {
			if d.sms == nil {
				return notify.ErrNotConfigured
			}
			return d.sms.SendSMS(ctx, settings.Phone, smsText(alert))
		})
	} else {
		d.metrics.NotificationSends.WithLabelValues("sms", "skipped").Inc()
	}

	return del
}

// attempt runs one channel send under a timeout, containing errors and
// panics so the other channel still gets its try.
func (d *Dispatcher) attempt(ctx context.Context, channel string, send func(context.Context) error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("notification channel panicked", "channel", channel, "panic", r)
			d.metrics.NotificationSends.WithLabelValues(channel, "failed").Inc()
			ok = false
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, channelTimeout)
	defer cancel()

	if err := send(ctx); err != nil {
		slog.Warn("notification send failed", "channel", channel, "error", err)
		d.metrics.NotificationSends.WithLabelValues(channel, "failed").Inc()
		return false
	}

	d.metrics.NotificationSends.WithLabelValues(channel, "sent").Inc()
	return true
}

func smsText(alert models.Alert) string {
	return fmt.Sprintf("%s Alert: %s - %s at your Location. Stay safe!", alert.Level, alert.Type, alert.Message)
}
