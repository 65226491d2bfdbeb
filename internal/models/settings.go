package models

// AlertSettings is the per-user alert configuration. Email and phone may be
// empty, which makes the corresponding channel unusable regardless of the
// enable flags. No format validation is performed anywhere; a malformed
// destination just fails at delivery time.
type AlertSettings struct {
	Email              string   `json:"email"`
	Phone              string   `json:"phone"`
	LandslideThreshold float64  `json:"landslide_threshold"`
	FloodThreshold     float64  `json:"flood_threshold"`
	RainfallThreshold  float64  `json:"rainfall_threshold"`
	EnableEmail        bool     `json:"enable_email"`
	EnableSMS          bool     `json:"enable_sms"`
	AlertLocation      string   `json:"alert_location"`
	AlertLat           *float64 `json:"alert_lat"`
	AlertLng           *float64 `json:"alert_lng"`
}

// DefaultAlertSettings returns the settings an unconfigured user is treated
// as having: default thresholds, both channels off.
func DefaultAlertSettings() AlertSettings {
	return AlertSettings{
		LandslideThreshold: 70,
		FloodThreshold:     60,
		RainfallThreshold:  100,
	}
}
