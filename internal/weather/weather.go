// Package weather wraps the open-meteo forecast API for the 24-hour
// rainfall outlook.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// HourPoint is one hour of the forecast.
type HourPoint struct {
	Hour        int     `json:"hour"`
	Time        string  `json:"time"`
	Rainfall    float64 `json:"rainfall"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
}

// Summary aggregates rainfall over the returned window.
type Summary struct {
	TotalRainfall float64 `json:"total_rainfall"`
	MaxRainfall   float64 `json:"max_rainfall"`
	AvgRainfall   float64 `json:"avg_rainfall"`
}

// Forecast is the 24-hour hourly outlook for one point.
type Forecast struct {
	Hours   []HourPoint `json:"forecast"`
	Summary Summary     `json:"summary"`
}

type forecastResponse struct {
	Hourly struct {
		Time          []string  `json:"time"`
		Precipitation []float64 `json:"precipitation"`
		Temperature   []float64 `json:"temperature_2m"`
		Humidity      []float64 `json:"relative_humidity_2m"`
		WindSpeed     []float64 `json:"wind_speed_10m"`
	} `json:"hourly"`
}

// Fetch returns up to 24 hourly points plus the rainfall summary.
func (c *Client) Fetch(ctx context.Context, lat, lon float64) (*Forecast, error) {
	params := url.Values{
		"latitude":      {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude":     {strconv.FormatFloat(lon, 'f', -1, 64)},
		"hourly":        {"precipitation,temperature_2m,relative_humidity_2m,wind_speed_10m"},
		"forecast_days": {"1"},
		"timezone":      {"auto"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	hours := len(data.Hourly.Time)
	if hours > 24 {
		hours = 24
	}

	fc := &Forecast{Hours: make([]HourPoint, 0, hours)}
	for i := 0; i < hours; i++ {
		fc.Hours = append(fc.Hours, HourPoint{
			Hour:        i,
			Time:        data.Hourly.Time[i],
			Rainfall:    at(data.Hourly.Precipitation, i),
			Temperature: at(data.Hourly.Temperature, i),
			Humidity:    at(data.Hourly.Humidity, i),
			WindSpeed:   at(data.Hourly.WindSpeed, i),
		})
	}

	for _, h := range fc.Hours {
		fc.Summary.TotalRainfall += h.Rainfall
		fc.Summary.MaxRainfall = math.Max(fc.Summary.MaxRainfall, h.Rainfall)
	}
	if len(fc.Hours) > 0 {
		fc.Summary.AvgRainfall = fc.Summary.TotalRainfall / float64(len(fc.Hours))
	}
	fc.Summary.TotalRainfall = round2(fc.Summary.TotalRainfall)
	fc.Summary.MaxRainfall = round2(fc.Summary.MaxRainfall)
	fc.Summary.AvgRainfall = round2(fc.Summary.AvgRainfall)

	return fc, nil
}

// MaxRainfall returns the peak hourly rainfall over the next 24 hours,
// used by the saved-location monitor as the rainfall intensity input.
func (c *Client) MaxRainfall(ctx context.Context, lat, lon float64) (float64, error) {
	fc, err := c.Fetch(ctx, lat, lon)
	if err != nil {
		return 0, err
	}
	return fc.Summary.MaxRainfall, nil
}

func at(vals []float64, i int) float64 {
	if i < len(vals) {
		return vals[i]
	}
	return 0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
