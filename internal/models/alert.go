package models

type Severity string

const (
	SeverityWatch     Severity = "WATCH"
	SeverityWarning   Severity = "WARNING"
	SeverityEmergency Severity = "EMERGENCY"
)

type AlertType string

const (
	AlertTypeLandslide AlertType = "Landslide"
	AlertTypeFlood     AlertType = "Flood"
	AlertTypeRainfall  AlertType = "Heavy Rainfall"
)

// Alert is immutable once created. It lives in the history log for the
// lifetime of the process; the log is only ever cleared wholesale.
type Alert struct {
	ID        int       `json:"id"`
	Type      AlertType `json:"type"`
	Level     Severity  `json:"level"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
	Message   string    `json:"message"`
	Location  string    `json:"location"`
	Timestamp string    `json:"timestamp"` // "2006-01-02 15:04:05"
}

// Metrics are the current readings submitted for one evaluation call.
type Metrics struct {
	LandslideRisk float64 `json:"landslide_risk"`
	FloodRisk     float64 `json:"flood_risk"`
	Rainfall      float64 `json:"rainfall"`
	Location      string  `json:"location"`
}
