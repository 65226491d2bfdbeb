package alerts

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/kavachhq/kavach-backend/internal/models"
	"github.com/kavachhq/kavach-backend/internal/observability"
	"github.com/kavachhq/kavach-backend/internal/risk"
)

const timestampLayout = "2006-01-02 15:04:05"

// Result is the outcome of one evaluation call. Configured is false when the
// user has never saved settings; that case returns an empty alert list and
// is distinct from "configured but below thresholds".
type Result struct {
	Configured bool
	Alerts     []models.Alert
	EmailSent  bool
	SMSSent    bool
}

// Evaluator checks current readings against a user's thresholds, appends the
// resulting alerts to history and fans them out to the enabled channels.
type Evaluator struct {
	store       *SettingsStore
	history     *History
	dispatcher  *Dispatcher
	broadcaster *Broadcaster
	metrics     *observability.Metrics
	clock       clockwork.Clock
}

func NewEvaluator(store *SettingsStore, history *History, dispatcher *Dispatcher, broadcaster *Broadcaster, metrics *observability.Metrics, clock clockwork.Clock) *Evaluator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Evaluator{
		store:       store,
		history:     history,
		dispatcher:  dispatcher,
		broadcaster: broadcaster,
		metrics:     metrics,
		clock:       clock,
	}
}

// Evaluate runs one alert check. The three metrics are evaluated
// independently, so a single call can emit zero to three alerts. The
// returned EmailSent/SMSSent flags are true if any alert in this call was
// delivered over that channel.
func (e *Evaluator) Evaluate(ctx context.Context, userID string, metrics models.Metrics) Result {
	settings, ok := e.store.Lookup(userID)
	if !ok {
		slog.Info("alert check for unconfigured user", "user", userID)
		e.metrics.EvaluateCalls.WithLabelValues("unconfigured").Inc()
		return Result{Configured: false}
	}

	location := metrics.Location
	if location == "" {
		location = "Unknown Location"
	}
	now := e.clock.Now().Format(timestampLayout)

	checks := []struct {
		alertType models.AlertType
		value     float64
		threshold float64
		unit      string
	}{
		{models.AlertTypeLandslide, metrics.LandslideRisk, settings.LandslideThreshold, "%"},
		{models.AlertTypeFlood, metrics.FloodRisk, settings.FloodThreshold, "%"},
		{models.AlertTypeRainfall, metrics.Rainfall, settings.RainfallThreshold, "mm"},
	}

	result := Result{Configured: true}
	for _, c := range checks {
		if c.value < c.threshold {
			continue
		}
		alert := e.history.Append(models.Alert{
			Type:      c.alertType,
			Level:     risk.Severity(c.alertType, c.value),
			Value:     c.value,
			Threshold: c.threshold,
			Message:   alertMessage(c.alertType, c.value, c.unit),
			Location:  location,
			Timestamp: now,
		})
		result.Alerts = append(result.Alerts, alert)
		e.metrics.AlertsTriggered.WithLabelValues(string(alert.Type), string(alert.Level)).Inc()
		if e.broadcaster != nil {
			e.broadcaster.Broadcast(alert)
		}
	}

	if len(result.Alerts) == 0 {
		e.metrics.EvaluateCalls.WithLabelValues("quiet").Inc()
		return result
	}
	e.metrics.EvaluateCalls.WithLabelValues("alerted").Inc()

	slog.Info("alerts triggered", "user", userID, "count", len(result.Alerts))
	for _, alert := range result.Alerts {
		del := e.dispatcher.Dispatch(ctx, alert, settings)
		result.EmailSent = result.EmailSent || del.EmailOK
		result.SMSSent = result.SMSSent || del.SMSOK
	}

	return result
}

func alertMessage(t models.AlertType, value float64, unit string) string {
	switch t {
	case models.AlertTypeLandslide:
		return fmt.Sprintf("Landslide risk at %g%s exceeds threshold", value, unit)
	case models.AlertTypeFlood:
		return fmt.Sprintf("Flood risk at %g%s exceeds threshold", value, unit)
	default:
		return fmt.Sprintf("Rainfall at %g%s exceeds threshold", value, unit)
	}
}
