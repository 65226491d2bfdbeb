// Package risk holds the fixed severity policy and the simulation scoring
// formulas. The severity bands are absolute cutoffs: a user's configured
// threshold only gates whether an alert fires at all, never which band the
// value lands in.
package risk

import (
	"math"

	"github.com/kavachhq/kavach-backend/internal/models"
)

// Band holds the fixed cutoffs for one alert type. Bands are closed on the
// lower edge: a value exactly at EmergencyAt classifies as EMERGENCY.
type Band struct {
	EmergencyAt float64
	WarningAt   float64
}

var bands = map[models.AlertType]Band{
	models.AlertTypeLandslide: {EmergencyAt: 85, WarningAt: 70},
	models.AlertTypeFlood:     {EmergencyAt: 80, WarningAt: 60},
	models.AlertTypeRainfall:  {EmergencyAt: 150, WarningAt: 100},
}

// BandFor returns the fixed band for an alert type.
func BandFor(t models.AlertType) Band {
	return bands[t]
}

// Classify maps a value into a severity using the given band.
func Classify(value float64, b Band) models.Severity {
	switch {
	case value >= b.EmergencyAt:
		return models.SeverityEmergency
	case value >= b.WarningAt:
		return models.SeverityWarning
	default:
		return models.SeverityWatch
	}
}

// Severity classifies a value against the fixed band for its alert type.
func Severity(t models.AlertType, value float64) models.Severity {
	return Classify(value, bands[t])
}

// LandslideScore estimates landslide risk (0-100) from terrain slope in
// degrees and rainfall intensity in mm/hr.
func LandslideScore(slopeDeg, rainfallIntensity float64) float64 {
	return math.Min(100, slopeDeg*2+rainfallIntensity/2)
}

// FloodScore estimates flood risk from rainfall intensity.
func FloodScore(rainfallIntensity float64) float64 {
	return rainfallIntensity * 0.4
}

// SimulationLevel maps a combined risk score onto the traffic-light scale
// used by the simulation endpoint.
func SimulationLevel(score float64) string {
	switch {
	case score > 70:
		return "RED"
	case score > 40:
		return "YELLOW"
	default:
		return "GREEN"
	}
}

// Recommendation returns the action advice for a simulation level.
func Recommendation(level string) string {
	if level == "RED" {
		return "Evacuate"
	}
	return "Stay Alert"
}
