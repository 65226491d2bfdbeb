// Package pois finds safe facilities (hospitals, police, fire stations,
// shelters, assembly points) near a coordinate via the Overpass API.
package pois

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/kavachhq/kavach-backend/internal/geo"
)

const (
	maxResults = 15
	maxRetries = 3
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	retryDelay time.Duration
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		retryDelay: 2 * time.Second,
	}
}

// SafeZone is one facility, distance-annotated relative to the query point.
type SafeZone struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Icon     string  `json:"icon"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Distance float64 `json:"distance"`
	Address  string  `json:"address"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
	Tags map[string]string `json:"tags"`
}

// Nearby returns up to 15 facilities within radiusKm, closest first. The
// Overpass API is flaky under load, so requests retry with a growing delay.
func (c *Client) Nearby(ctx context.Context, lat, lon, radiusKm float64) ([]SafeZone, int, error) {
	query := buildQuery(lat, lon, radiusKm)

	var resp *http.Response
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		resp, err = c.post(ctx, query)
		if err == nil {
			break
		}
		slog.Warn("overpass request failed", "attempt", attempt, "error", err)
		if attempt == maxRetries {
			return nil, 0, fmt.Errorf("overpass unavailable: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		case <-time.After(c.retryDelay * time.Duration(attempt)):
		}
	}
	defer resp.Body.Close()

	var data overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, 0, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	zones := make([]SafeZone, 0, len(data.Elements))
	for _, elem := range data.Elements {
		category, icon := categorize(elem.Tags)
		name := elem.Tags["name"]
		if name == "" {
			name = "Unnamed " + strings.ToLower(category)
		}
		zones = append(zones, SafeZone{
			Name:     name,
			Category: category,
			Icon:     icon,
			Lat:      elem.Lat,
			Lon:      elem.Lon,
			Distance: math.Round(geo.Distance(lat, lon, elem.Lat, elem.Lon)*100) / 100,
			Address:  elem.Tags["addr:full"],
		})
	}

	sort.Slice(zones, func(i, j int) bool { return zones[i].Distance < zones[j].Distance })

	total := len(zones)
	if len(zones) > maxResults {
		zones = zones[:maxResults]
	}
	return zones, total, nil
}

func (c *Client) post(ctx context.Context, query string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}
	return resp, nil
}

func buildQuery(lat, lon, radiusKm float64) string {
	radiusM := radiusKm * 1000
	return fmt.Sprintf(`[out:json][timeout:45];
(
  node["amenity"="hospital"](around:%[1]f,%[2]f,%[3]f);
  node["amenity"="police"](around:%[1]f,%[2]f,%[3]f);
  node["amenity"="fire_station"](around:%[1]f,%[2]f,%[3]f);
  node["amenity"="shelter"](around:%[1]f,%[2]f,%[3]f);
  node["emergency"="assembly_point"](around:%[1]f,%[2]f,%[3]f);
);
out body;`, radiusM, lat, lon)
}

func categorize(tags map[string]string) (category, icon string) {
	amenity := tags["amenity"]
	if amenity == "" {
		amenity = tags["emergency"]
	}

	switch amenity {
	case "hospital":
		return "Hospital", "🏥"
	case "police":
		return "Police Station", "🚓"
	case "fire_station":
		return "Fire Station", "🚒"
	case "shelter":
		return "Shelter", "🏠"
	case "assembly_point":
		return "Assembly Point", "📍"
	default:
		return "Safe Zone", "🛡️"
	}
}
