// Package geocode resolves coordinates to a human-readable place name via
// Nominatim reverse geocoding.
package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const userAgent = "Kavach-DisasterApp/1.0"

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

type nominatimResponse struct {
	Address struct {
		City          string `json:"city"`
		StateDistrict string `json:"state_district"`
		State         string `json:"state"`
		Country       string `json:"country"`
	} `json:"address"`
}

// PlaceName returns the most specific name available for the coordinate,
// falling back to "Selected Area" when the lookup fails. Never errors:
// the callers treat the name as decorative.
func (c *Client) PlaceName(ctx context.Context, lat, lon float64) string {
	params := url.Values{
		"lat":    {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":    {strconv.FormatFloat(lon, 'f', -1, 64)},
		"format": {"json"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "Selected Area"
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "Selected Area"
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "Selected Area"
	}

	var data nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "Selected Area"
	}

	for _, name := range []string{data.Address.City, data.Address.StateDistrict, data.Address.State, data.Address.Country} {
		if name != "" {
			return name
		}
	}
	return "Unknown Location"
}
