// Package terrain derives slope and elevation from the open-meteo elevation
// API by sampling points around the target coordinate.
package terrain

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	sampleDelta    = 0.0008 // degrees between the center and its 4 neighbors
	sampleSpacingM = 90.0   // ground distance the delta corresponds to
	profilePoints  = 10
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SlopeAndElevation fetches elevation for the center point and its four
// neighbors and derives the terrain slope in degrees from the gradients.
func (c *Client) SlopeAndElevation(ctx context.Context, lat, lon float64) (slopeDeg, elevation float64, err error) {
	lats := []float64{lat, lat + sampleDelta, lat - sampleDelta, lat, lat}
	lons := []float64{lon, lon, lon, lon + sampleDelta, lon - sampleDelta}

	elevs, err := c.fetch(ctx, lats, lons)
	if err != nil {
		return 0, 0, err
	}
	if len(elevs) != 5 {
		return 0, 0, fmt.Errorf("expected 5 elevation samples, got %d", len(elevs))
	}

	center, north, south, east, west := elevs[0], elevs[1], elevs[2], elevs[3], elevs[4]
	dzdx := (east - west) / (2 * sampleSpacingM)
	dzdy := (north - south) / (2 * sampleSpacingM)
	slope := math.Atan(math.Sqrt(dzdx*dzdx+dzdy*dzdy)) * 180 / math.Pi

	return math.Round(slope*100) / 100, center, nil
}

// Profile samples elevation at 10 points along a meridian through the
// target, for the terrain profile chart.
func (c *Client) Profile(ctx context.Context, lat, lon float64) ([]float64, error) {
	lats := make([]float64, 0, profilePoints)
	lons := make([]float64, 0, profilePoints)
	for i := -profilePoints / 2; i < profilePoints/2; i++ {
		lats = append(lats, lat+float64(i)*0.001)
		lons = append(lons, lon)
	}
	return c.fetch(ctx, lats, lons)
}

func (c *Client) fetch(ctx context.Context, lats, lons []float64) ([]float64, error) {
	params := url.Values{
		"latitude":  {joinFloats(lats)},
		"longitude": {joinFloats(lons)},
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

	var data struct {
		Elevation []float64 `json:"elevation"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	return data.Elevation, nil
}

func joinFloats(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}
